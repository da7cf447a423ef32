package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
)

func stdinIsTerminal() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// prompter issues sequential questions on a shared reader so buffered input
// is never lost between prompts.
type prompter struct {
	out io.Writer
	in  *bufio.Reader
}

func newPrompter(out io.Writer, in io.Reader) *prompter {
	return &prompter{out: out, in: bufio.NewReader(in)}
}

func (p *prompter) readLine() string {
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return ""
	}
	return strings.TrimSpace(line)
}

// confirm asks a yes/no question and returns the default on empty or
// unparseable input.
func (p *prompter) confirm(question string, defaultYes bool) bool {
	suffix := "[y/N]"
	if defaultYes {
		suffix = "[Y/n]"
	}
	fmt.Fprintf(p.out, "%s %s ", question, suffix)
	switch strings.ToLower(p.readLine()) {
	case "y", "yes":
		return true
	case "n", "no":
		return false
	default:
		return defaultYes
	}
}

// choose prints a numbered menu and reads a selection until it gets a valid
// one. Empty input picks the default option.
func (p *prompter) choose(question string, options []string, defaultIndex int) int {
	if defaultIndex < 0 || defaultIndex >= len(options) {
		defaultIndex = 0
	}
	fmt.Fprintln(p.out, question)
	for i, option := range options {
		fmt.Fprintf(p.out, "  %d. %s\n", i+1, option)
	}
	for {
		fmt.Fprintf(p.out, "Select (1-%d) [default: %d]: ", len(options), defaultIndex+1)
		input := p.readLine()
		if input == "" {
			return defaultIndex
		}
		choice, err := strconv.Atoi(input)
		if err == nil && choice >= 1 && choice <= len(options) {
			return choice - 1
		}
		fmt.Fprintf(p.out, "Invalid choice, enter 1-%d.\n", len(options))
	}
}

// line asks for free-form input; empty input keeps the default.
func (p *prompter) line(question, defaultValue string) string {
	fmt.Fprintf(p.out, "%s [default: %q]: ", question, defaultValue)
	if input := p.readLine(); input != "" {
		return input
	}
	return defaultValue
}
