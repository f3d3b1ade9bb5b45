package corpus

import (
	"fmt"
	"io"
)

// Record is one (sentence, expression) pair read from a corpus.
type Record struct {
	// Index is the zero-based position of the record in its source.
	Index      int
	Sentence   string
	Expression string

	// Fields holds the remaining attributes of a CLEVR question.
	// It is nil for text corpora.
	Fields map[string]any

	// Err is set when the record was read but its expression could not be
	// built. The driver handles it like a conversion failure.
	Err error
}

// Source yields records in order. Next returns io.EOF when exhausted.
type Source interface {
	Next() (Record, error)
}

// Result is a converted record.
type Result struct {
	Record
	Output string
}

// FormatError reports a corpus line that does not fit the expected layout.
type FormatError struct {
	Line   int
	Text   string
	Reason string
}

func (e *FormatError) Error() string {
	if e.Text == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Reason, e.Text)
}

// SliceSource serves records from memory.
type SliceSource struct {
	records []Record
	pos     int
}

// NewSliceSource creates a Source over records, assigning their indexes.
func NewSliceSource(records ...Record) *SliceSource {
	out := make([]Record, len(records))
	for i, r := range records {
		r.Index = i
		out[i] = r
	}
	return &SliceSource{records: out}
}

func (s *SliceSource) Next() (Record, error) {
	if s.pos >= len(s.records) {
		return Record{}, io.EOF
	}
	r := s.records[s.pos]
	s.pos++
	return r, nil
}
