package corpus

import (
	"bufio"
	"io"
	"strings"
)

// TextReader reads sentence/expression pairs from a text corpus.
//
// A record is a sentence line followed by a line starting with "(".
// Blank lines are skipped. Sentences are normalized as they are read.
type TextReader struct {
	scanner *bufio.Scanner
	line    int
	index   int
}

// NewTextReader creates a TextReader over r.
func NewTextReader(r io.Reader) *TextReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return &TextReader{scanner: sc}
}

// Next returns the next record, io.EOF at the end of input, or a
// *FormatError when the layout is broken.
func (r *TextReader) Next() (Record, error) {
	var sentence string
	var sentenceLine int
	pending := false

	for r.scanner.Scan() {
		r.line++
		text := strings.TrimSpace(r.scanner.Text())

		switch {
		case pending && strings.HasPrefix(text, "("):
			rec := Record{Index: r.index, Sentence: sentence, Expression: text}
			r.index++
			return rec, nil
		case !pending && text != "":
			sentence = NormalizeSentence(text)
			sentenceLine = r.line
			pending = true
		case text == "":
			continue
		default:
			return Record{}, &FormatError{Line: r.line, Text: text, Reason: "expected an expression line"}
		}
	}
	if err := r.scanner.Err(); err != nil {
		return Record{}, err
	}
	if pending {
		return Record{}, &FormatError{Line: sentenceLine, Text: sentence, Reason: "sentence without expression"}
	}
	return Record{}, io.EOF
}
