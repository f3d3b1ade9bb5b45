package corpus

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// ProgramStep is one function application of a CLEVR program. Inputs
// index earlier steps of the same program.
type ProgramStep struct {
	Function    string   `mapstructure:"function"`
	Type        string   `mapstructure:"type"`
	Inputs      []int    `mapstructure:"inputs"`
	ValueInputs []string `mapstructure:"value_inputs"`
}

// Name returns the step's function name. Newer CLEVR releases store it
// under "type" instead of "function".
func (s ProgramStep) Name() string {
	if s.Function != "" {
		return s.Function
	}
	return s.Type
}

// ProgramError reports a program that cannot be turned into an expression.
type ProgramError struct {
	Step   int
	Reason string
}

func (e *ProgramError) Error() string {
	return fmt.Sprintf("program step %d: %s", e.Step, e.Reason)
}

// DecodeProgram decodes a raw JSON program (a list of step objects).
func DecodeProgram(raw any) ([]ProgramStep, error) {
	var steps []ProgramStep
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &steps,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("decode program: %w", err)
	}
	return steps, nil
}

// ProgramToSexpr renders a program as an expression line rooted at its
// last step. "scene" becomes a bare symbol, "exist" is written "exist_"
// and value inputs follow the program inputs.
func ProgramToSexpr(program []ProgramStep) (string, error) {
	if len(program) == 0 {
		return "", &ProgramError{Step: 0, Reason: "empty program"}
	}
	var sb strings.Builder
	if err := writeStep(&sb, program, len(program)-1); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func writeStep(sb *strings.Builder, program []ProgramStep, i int) error {
	step := program[i]
	name := step.Name()
	switch name {
	case "":
		return &ProgramError{Step: i, Reason: "missing function name"}
	case "scene":
		sb.WriteString("scene")
		return nil
	case "exist":
		name = "exist_"
	}

	if len(step.Inputs) == 0 && len(step.ValueInputs) == 0 {
		return &ProgramError{Step: i, Reason: fmt.Sprintf("%s has no arguments", name)}
	}

	sb.WriteByte('(')
	sb.WriteString(name)
	for _, in := range step.Inputs {
		// Steps only reference earlier steps, which also rules out cycles.
		if in < 0 || in >= i {
			return &ProgramError{Step: i, Reason: fmt.Sprintf("input %d out of range", in)}
		}
		sb.WriteByte(' ')
		if err := writeStep(sb, program, in); err != nil {
			return err
		}
	}
	for _, v := range step.ValueInputs {
		sb.WriteByte(' ')
		sb.WriteString(v)
	}
	sb.WriteByte(')')
	return nil
}

// CLEVRReader serves the questions of a CLEVR questions file.
type CLEVRReader struct {
	info      any
	questions []map[string]any
	pos       int
}

// NewCLEVRReader decodes a CLEVR questions document from r.
func NewCLEVRReader(r io.Reader) (*CLEVRReader, error) {
	var doc struct {
		Info      any              `json:"info"`
		Questions []map[string]any `json:"questions"`
	}
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	return &CLEVRReader{info: doc.Info, questions: doc.Questions}, nil
}

// Info returns the document's "info" block.
func (r *CLEVRReader) Info() any {
	return r.info
}

// Len returns the number of questions in the document.
func (r *CLEVRReader) Len() int {
	return len(r.questions)
}

// Next returns the next question. A question whose program cannot be
// converted is returned with Err set.
func (r *CLEVRReader) Next() (Record, error) {
	if r.pos >= len(r.questions) {
		return Record{}, io.EOF
	}
	i := r.pos
	r.pos++
	q := r.questions[i]

	rec := Record{Index: i, Fields: make(map[string]any, len(q))}
	for k, v := range q {
		if k != "program" {
			rec.Fields[k] = v
		}
	}

	text, ok := q["question"].(string)
	if !ok {
		rec.Err = fmt.Errorf("question %d: missing question text", i)
		return rec, nil
	}
	rec.Sentence = NormalizeSentence(text)

	steps, err := DecodeProgram(q["program"])
	if err == nil {
		rec.Expression, err = ProgramToSexpr(steps)
	}
	if err != nil {
		rec.Err = fmt.Errorf("question %d: %w", i, err)
	}
	return rec, nil
}
