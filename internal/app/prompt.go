package app

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Prompter asks the user to approve remediation steps and to pick versions.
type Prompter interface {
	// Confirm asks a yes/no question.
	Confirm(question string) (bool, error)
	// Choose asks for one of options. The boolean is false when the user
	// picked nothing.
	Choose(question string, options []string) (string, bool, error)
}

// TerminalPrompter asks on a line-oriented terminal.
type TerminalPrompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewTerminalPrompter reads answers from in and writes questions to out.
func NewTerminalPrompter(in io.Reader, out io.Writer) *TerminalPrompter {
	return &TerminalPrompter{in: bufio.NewReader(in), out: out}
}

func (p *TerminalPrompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (p *TerminalPrompter) Confirm(question string) (bool, error) {
	fmt.Fprintf(p.out, "%s [y/N]: ", question)
	answer, err := p.readLine()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

func (p *TerminalPrompter) Choose(question string, options []string) (string, bool, error) {
	if len(options) == 0 {
		return "", false, nil
	}
	fmt.Fprintln(p.out, question)
	for i, opt := range options {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, opt)
	}
	for {
		fmt.Fprintf(p.out, "Enter a number (empty to cancel): ")
		answer, err := p.readLine()
		if err != nil || answer == "" {
			return "", false, err
		}
		n, err := strconv.Atoi(answer)
		if err == nil && n >= 1 && n <= len(options) {
			return options[n-1], true, nil
		}
		fmt.Fprintf(p.out, "'%s' is not one of the listed numbers.\n", answer)
	}
}

// AutoPrompter approves everything and picks the first option. It backs the
// --yes flag.
type AutoPrompter struct{}

func (AutoPrompter) Confirm(string) (bool, error) { return true, nil }

func (AutoPrompter) Choose(_ string, options []string) (string, bool, error) {
	if len(options) == 0 {
		return "", false, nil
	}
	return options[0], true, nil
}
