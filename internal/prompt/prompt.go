// Package prompt reads the answers ama needs from an interactive terminal.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Decision is the user's answer for a source file that maki.yml does not list.
type Decision int

const (
	Keep Decision = iota + 1
	Delete
	// KeepAll keeps the current file and every remaining one.
	KeepAll
	// DeleteAll deletes the current file and every remaining one.
	DeleteAll
)

var decisionTokens = map[Decision]string{
	Keep:      "k",
	Delete:    "d",
	KeepAll:   "kA",
	DeleteAll: "dA",
}

// String returns the token a user types for d.
func (d Decision) String() string {
	if tok, ok := decisionTokens[d]; ok {
		return tok
	}
	return fmt.Sprintf("Decision(%d)", int(d))
}

// Valid reports whether d is one of the four known decisions.
func (d Decision) Valid() bool {
	_, ok := decisionTokens[d]
	return ok
}

// Terminal reports whether d ends the prompting loop.
func (d Decision) Terminal() bool {
	return d == KeepAll || d == DeleteAll
}

// Deletes reports whether d removes the file it answers for.
func (d Decision) Deletes() bool {
	return d == Delete || d == DeleteAll
}

// ParseDecision maps a trimmed, case-sensitive token to a Decision.
func ParseDecision(s string) (Decision, bool) {
	s = strings.TrimSpace(s)
	for d, tok := range decisionTokens {
		if tok == s {
			return d, true
		}
	}
	return 0, false
}

// Decider chooses what happens to a source file missing from the manifest.
type Decider interface {
	Decide(name string) (Decision, error)
}

// Fixed answers every question with the same decision.
type Fixed Decision

func (f Fixed) Decide(string) (Decision, error) { return Decision(f), nil }

// ErrNoInput is returned when input ends before an answer is read.
var ErrNoInput = errors.New("no input: answer required")

const decisionPrompt = "%q is in src/ but not in maki.yml. Keep (k), delete (d), keep all (kA), delete all (dA)? "

// Prompter asks questions on out and reads one line per answer from in.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// New returns a Prompter reading from in and writing prompts to out.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Decide asks about name until a valid token is entered.
func (p *Prompter) Decide(name string) (Decision, error) {
	for {
		fmt.Fprintf(p.out, decisionPrompt, name)
		line, err := p.readLine()
		if err != nil {
			return 0, err
		}
		if d, ok := ParseDecision(line); ok {
			return d, nil
		}
	}
}

// AskDefault shows "label [def]: " and returns the trimmed answer, or def
// when the answer is empty.
func (p *Prompter) AskDefault(label, def string) (string, error) {
	fmt.Fprintf(p.out, "%s [%s]: ", label, def)
	line, err := p.readLine()
	if err != nil {
		return "", err
	}
	if line == "" {
		return def, nil
	}
	return line, nil
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(p.out)
			return "", ErrNoInput
		}
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
