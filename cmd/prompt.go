package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// errQuit is returned when the learner types q at a prompt.
var errQuit = errors.New("quit")

// prompter reads answers line by line from the command's input.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

// line prints label and returns the trimmed reply. EOF with no input is
// io.EOF.
func (p *prompter) line(label string) (string, error) {
	fmt.Fprint(p.out, label)
	s, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || s == "") {
		return "", err
	}
	return strings.TrimSpace(s), nil
}

// choice asks for a number in 1..n until one is given and returns it
// zero-based. q quits.
func (p *prompter) choice(label string, n int) (int, error) {
	for {
		s, err := p.line(label)
		if err != nil {
			return 0, err
		}
		if strings.EqualFold(s, "q") {
			return 0, errQuit
		}
		i, err := strconv.Atoi(s)
		if err == nil && i >= 1 && i <= n {
			return i - 1, nil
		}
		fmt.Fprintf(p.out, "Enter a number from 1 to %d, or q to quit.\n", n)
	}
}

// confirm asks a yes/no question; anything but y or yes is no.
func (p *prompter) confirm(label string) (bool, error) {
	s, err := p.line(label + " [y/N] ")
	if err != nil {
		return false, err
	}
	s = strings.ToLower(s)
	return s == "y" || s == "yes", nil
}
