package pipeline

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinePrompter(t *testing.T) {
	var out bytes.Buffer
	p := NewLinePrompter(strings.NewReader("  https://h/o/m \r\nq5_k_m"), &out)

	v, err := p.Prompt("url: ")
	require.NoError(t, err)
	assert.Equal(t, "https://h/o/m", v)

	v, err = p.Prompt("method: ")
	require.NoError(t, err, "final unterminated line")
	assert.Equal(t, "q5_k_m", v)

	_, err = p.Prompt("again: ")
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, "url: method: again: ", out.String())
}

func TestParsePolicy(t *testing.T) {
	cases := []struct {
		in   string
		want Policy
		err  bool
	}{
		{"", PolicyContinue, false},
		{"continue", PolicyContinue, false},
		{"STOP", PolicyStop, false},
		{"retry", PolicyContinue, true},
	}
	for _, c := range cases {
		got, err := ParsePolicy(c.in)
		if c.err {
			assert.Error(t, err, c.in)
		} else {
			assert.NoError(t, err, c.in)
		}
		assert.Equal(t, c.want, got, c.in)
	}
	assert.Equal(t, "stop", PolicyStop.String())
	assert.Equal(t, "continue", PolicyContinue.String())
}
