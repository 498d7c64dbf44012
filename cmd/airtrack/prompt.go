package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/dori/airtrack/internal/app"
)

var (
	errAborted         = errors.New("aborted")
	errPasswordsDiffer = errors.New("passwords do not match")
)

// prompter reads passwords and answers from the terminal
type prompter struct {
	rl *readline.Instance
}

func newPrompter() (*prompter, error) {
	rl, err := readline.NewEx(&readline.Config{
		InterruptPrompt:     "^C",
		EOFPrompt:           "exit",
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open terminal: %w", err)
	}
	return &prompter{rl: rl}, nil
}

func withPrompter(fn func(p *prompter) error) error {
	p, err := newPrompter()
	if err != nil {
		return err
	}
	defer p.Close()
	return fn(p)
}

func (p *prompter) Close() error {
	return p.rl.Close()
}

func (p *prompter) password(prompt string) (string, error) {
	b, err := p.rl.ReadPassword(prompt)
	if err != nil {
		if isAbort(err) {
			return "", errAborted
		}
		return "", err
	}
	return string(b), nil
}

// newPassword asks twice and returns the password when both match
func (p *prompter) newPassword() (string, error) {
	first, err := p.password("New password: ")
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(first) == "" {
		return "", errors.New("password cannot be empty")
	}
	second, err := p.password("Confirm password: ")
	if err != nil {
		return "", err
	}
	if first != second {
		return "", errPasswordsDiffer
	}
	return first, nil
}

func (p *prompter) line(prompt string) (string, error) {
	p.rl.SetPrompt(prompt)
	line, err := p.rl.Readline()
	if err != nil {
		if isAbort(err) {
			return "", errAborted
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (p *prompter) confirm(prompt string) (bool, error) {
	answer, err := p.line(prompt + " [y/N] ")
	if err != nil {
		return false, err
	}
	return isYes(answer), nil
}

func isYes(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes":
		return true
	}
	return false
}

func filterInput(r rune) (rune, bool) {
	switch r {
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func isAbort(err error) bool {
	return err == io.EOF || err == readline.ErrInterrupt
}

// authenticate sets the password on first run and verifies it afterwards.
// A wrong password ends the command.
func authenticate(a *app.App, p *prompter) error {
	if !a.Gate.IsSet() {
		fmt.Println("No password has been set. Choose one to protect your data.")
		pw, err := p.newPassword()
		if err != nil {
			return err
		}
		if _, err := a.Gate.SetOrVerify(pw); err != nil {
			return err
		}
		fmt.Println("Password saved. Run 'airtrack recovery setup' to add a security question.")
		return nil
	}

	pw, err := p.password("Password: ")
	if err != nil {
		return err
	}
	return a.Unlock(pw)
}
