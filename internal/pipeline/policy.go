package pipeline

import (
	"fmt"
	"strings"
)

// Policy decides what happens after a gating stage (acquire, convert,
// quantize) fails. Authentication never gates.
type Policy int

const (
	// PolicyContinue runs every stage regardless of earlier failures.
	PolicyContinue Policy = iota
	// PolicyStop skips all stages after the first failure.
	PolicyStop
)

func (p Policy) String() string {
	switch p {
	case PolicyStop:
		return "stop"
	default:
		return "continue"
	}
}

// ParsePolicy accepts "continue" (or empty) and "stop".
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "continue":
		return PolicyContinue, nil
	case "stop":
		return PolicyStop, nil
	default:
		return PolicyContinue, fmt.Errorf("unknown failure policy %q", s)
	}
}
