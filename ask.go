package photosite

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Asker answers yes/no questions that come up during a build, such as whether
// a never-before-seen tag may be displayed. Ask blocks until an answer is
// available; tests substitute a scripted implementation.
type Asker interface {
	Ask(question string) (bool, error)
}

// ConsoleAsker asks questions interactively, reading y/n answers line by line.
type ConsoleAsker struct {
	out io.Writer
	in  *bufio.Reader
}

// NewConsoleAsker returns an Asker that prompts on out and reads from in.
func NewConsoleAsker(in io.Reader, out io.Writer) *ConsoleAsker {
	return &ConsoleAsker{out: out, in: bufio.NewReader(in)}
}

// Ask prompts with the question and keeps prompting until the answer is
// exactly "y" or "n".
func (a *ConsoleAsker) Ask(question string) (bool, error) {
	for {
		fmt.Fprintf(a.out, "%s y/n\n", question)
		line, err := a.in.ReadString('\n')
		if err != nil {
			return false, fmt.Errorf("photosite: read answer: %w", err)
		}
		switch strings.TrimSpace(line) {
		case "y":
			return true, nil
		case "n":
			return false, nil
		}
		fmt.Fprintln(a.out, "please type 'y' or 'n'")
	}
}

// AskFunc adapts a plain function to the Asker interface.
type AskFunc func(question string) (bool, error)

func (f AskFunc) Ask(question string) (bool, error) {
	return f(question)
}
