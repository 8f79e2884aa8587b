package pipeline

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Prompter asks the user for a value.
type Prompter interface {
	Prompt(label string) (string, error)
}

// LinePrompter reads one line per prompt.
type LinePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewLinePrompter prompts on out and reads answers from in.
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{in: bufio.NewReader(in), out: out}
}

// Prompt prints label and returns the trimmed answer. A final line without
// a newline is accepted; EOF with nothing typed is an error.
func (p *LinePrompter) Prompt(label string) (string, error) {
	fmt.Fprint(p.out, label)
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
