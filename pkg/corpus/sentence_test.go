package corpus_test

import (
	"testing"

	"github.com/aretw0/clevrprog/pkg/corpus"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeSentence(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Is there a red cube?", "is there a red cube"},
		{"There is a cube; what color is it?", "there is a cube SEMI what color is it"},
		{"already normal", "already normal"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, corpus.NormalizeSentence(tt.in))
		})
	}
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 0, corpus.WordCount("  "))
	assert.Equal(t, 7, corpus.WordCount(corpus.NormalizeSentence("There is a cube; what color?")))
}
