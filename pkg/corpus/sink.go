package corpus

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Format selects how converted records are written.
type Format string

const (
	// FormatPlain writes the sentence, the expression and a blank line.
	FormatPlain Format = "plain"
	// FormatJSON writes one {"info", "questions"} document.
	FormatJSON Format = "json"
	// FormatYAML writes the same collection as YAML.
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatPlain, FormatJSON, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q (want plain, json or yaml)", s)
}

// Sink receives converted records. Close flushes buffered output; it does
// not close the underlying writer.
type Sink interface {
	Write(res Result) error
	Close() error
}

// NewSink creates a sink for format. info is the "info" block of
// collection formats and is ignored by plain output.
func NewSink(format Format, w io.Writer, info any) (Sink, error) {
	switch format {
	case FormatPlain:
		return &PlainSink{w: bufio.NewWriter(w)}, nil
	case FormatJSON, FormatYAML:
		return &CollectionSink{w: w, format: format, info: info}, nil
	}
	return nil, fmt.Errorf("unknown output format %q", format)
}

// PlainSink writes sentence/expression pairs.
type PlainSink struct {
	w *bufio.Writer
}

func (s *PlainSink) Write(res Result) error {
	_, err := fmt.Fprintf(s.w, "%s\n%s\n\n", res.Sentence, res.Output)
	return err
}

func (s *PlainSink) Close() error {
	return s.w.Flush()
}

// Collection is the structured output document.
type Collection struct {
	Info      any              `json:"info" yaml:"info"`
	Questions []map[string]any `json:"questions" yaml:"questions"`
}

// CollectionSink buffers records and writes them as one document on Close.
type CollectionSink struct {
	w         io.Writer
	format    Format
	info      any
	questions []map[string]any
}

// Write stores the question: its passthrough fields, the normalized
// sentence and the converted program under "program_sexpr".
func (s *CollectionSink) Write(res Result) error {
	q := make(map[string]any, len(res.Fields)+2)
	for k, v := range res.Fields {
		q[k] = v
	}
	q["question"] = res.Sentence
	q["program_sexpr"] = res.Output
	s.questions = append(s.questions, q)
	return nil
}

// Collection returns the document written on Close.
func (s *CollectionSink) Collection() Collection {
	questions := s.questions
	if questions == nil {
		questions = []map[string]any{}
	}
	return Collection{Info: s.info, Questions: questions}
}

func (s *CollectionSink) Close() error {
	doc := s.Collection()
	if s.format == FormatYAML {
		enc := yaml.NewEncoder(s.w)
		enc.SetIndent(2)
		if err := enc.Encode(plainValue(doc.asMap())); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(s.w)
	enc.SetEscapeHTML(false)
	return enc.Encode(doc)
}

func (c Collection) asMap() map[string]any {
	questions := make([]any, len(c.Questions))
	for i, q := range c.Questions {
		questions[i] = q
	}
	return map[string]any{"info": c.Info, "questions": questions}
}

// plainValue replaces json.Number values so YAML renders them as numbers.
func plainValue(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return string(t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = plainValue(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = plainValue(e)
		}
		return out
	}
	return v
}
