package views

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dori/airtrack/internal/app"
	"github.com/dori/airtrack/internal/security"
	"github.com/dori/airtrack/internal/ui/theme"
)

// LockMode is the step of the lock screen
type LockMode int

const (
	LockModePassword LockMode = iota
	LockModeAnswer
	LockModeNewPassword
	LockModeVerifying
)

// UnlockedMsg is sent once the password (or a recovery reset) succeeded
type UnlockedMsg struct{}

// WrongPasswordMsg is sent when the unlock password did not match. The
// root model quits on it.
type WrongPasswordMsg struct{}

type unlockResultMsg struct {
	err      error
	recovery bool
}

// LockView asks for the password after the idle timeout
type LockView struct {
	app    *app.App
	width  int
	height int

	mode     LockMode
	input    textinput.Model
	question string
	answer   string
	errMsg   string
}

// NewLockView creates the lock screen
func NewLockView(a *app.App) LockView {
	ti := textinput.New()
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'
	ti.CharLimit = 256
	ti.Prompt = "› "
	return LockView{app: a, input: ti}
}

// Reset prepares the screen for a fresh lock
func (v LockView) Reset() (LockView, tea.Cmd) {
	v.mode = LockModePassword
	v.answer = ""
	v.errMsg = ""
	v.input.EchoMode = textinput.EchoPassword
	v.input.Placeholder = "Password"
	v.input.SetValue("")
	return v, v.input.Focus()
}

// SetSize sets the view dimensions
func (v LockView) SetSize(width, height int) LockView {
	v.width = width
	v.height = height
	v.input.Width = min(width-10, 40)
	return v
}

// Update handles messages
func (v LockView) Update(msg tea.Msg) (LockView, tea.Cmd) {
	switch msg := msg.(type) {
	case unlockResultMsg:
		return v.handleResult(msg)

	case tea.KeyMsg:
		if v.mode == LockModeVerifying {
			return v, nil
		}
		switch msg.String() {
		case "enter":
			return v.submit()
		case "ctrl+r":
			if v.mode == LockModePassword {
				return v.startRecovery()
			}
		case "esc":
			if v.mode != LockModePassword {
				return v.Reset()
			}
		}
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v LockView) startRecovery() (LockView, tea.Cmd) {
	if !v.app.Recovery.Has() {
		v.errMsg = "No security question has been set up"
		return v, nil
	}
	q, err := v.app.Recovery.Question()
	if err != nil {
		v.errMsg = err.Error()
		return v, nil
	}
	v.question = q
	v.mode = LockModeAnswer
	v.errMsg = ""
	v.input.EchoMode = textinput.EchoNormal
	v.input.Placeholder = "Answer"
	v.input.SetValue("")
	return v, nil
}

func (v LockView) submit() (LockView, tea.Cmd) {
	value := v.input.Value()
	a := v.app

	switch v.mode {
	case LockModePassword:
		v.mode = LockModeVerifying
		return v, func() tea.Msg {
			return unlockResultMsg{err: a.Unlock(value)}
		}

	case LockModeAnswer:
		if err := a.Recovery.Check(value); err != nil {
			v.errMsg = err.Error()
			v.input.SetValue("")
			return v, nil
		}
		v.answer = value
		v.mode = LockModeNewPassword
		v.input.EchoMode = textinput.EchoPassword
		v.input.Placeholder = "New password"
		v.input.SetValue("")
		return v, nil

	case LockModeNewPassword:
		if strings.TrimSpace(value) == "" {
			v.errMsg = security.ErrEmptyPassword.Error()
			return v, nil
		}
		answer := v.answer
		v.mode = LockModeVerifying
		return v, func() tea.Msg {
			if err := a.ResetPassword(answer, value); err != nil {
				return unlockResultMsg{err: err, recovery: true}
			}
			return unlockResultMsg{err: a.Unlock(value), recovery: true}
		}
	}
	return v, nil
}

func (v LockView) handleResult(msg unlockResultMsg) (LockView, tea.Cmd) {
	switch {
	case msg.err == nil:
		v.input.SetValue("")
		v.input.Blur()
		return v, func() tea.Msg { return UnlockedMsg{} }
	case !msg.recovery && errors.Is(msg.err, security.ErrIncorrectPassword):
		return v, func() tea.Msg { return WrongPasswordMsg{} }
	default:
		v.mode = LockModePassword
		v.errMsg = fmt.Sprintf("Could not unlock: %v", msg.err)
		v.input.EchoMode = textinput.EchoPassword
		v.input.Placeholder = "Password"
		v.input.SetValue("")
		return v, nil
	}
}

// View renders the lock screen centered in the terminal
func (v LockView) View() string {
	t := theme.Current.Theme
	styles := theme.Current.Styles

	var b strings.Builder
	b.WriteString(styles.Title.Render("airtrack is locked"))
	b.WriteString("\n")

	switch v.mode {
	case LockModeAnswer:
		b.WriteString(styles.Label.Render("Security question:"))
		b.WriteString("\n")
		b.WriteString(v.question)
		b.WriteString("\n\n")
	case LockModeNewPassword:
		b.WriteString(styles.Label.Render("Choose a new password"))
		b.WriteString("\n\n")
	case LockModeVerifying:
		b.WriteString(styles.Label.Render("Checking..."))
		b.WriteString("\n\n")
	default:
		b.WriteString(styles.Label.Render("Enter your password to continue"))
		b.WriteString("\n\n")
	}

	b.WriteString(v.input.View())
	b.WriteString("\n\n")
	if v.errMsg != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(t.Error).Render(v.errMsg))
		b.WriteString("\n")
	}
	if v.mode == LockModePassword {
		b.WriteString(hint("enter", "unlock", "ctrl+r", "forgot password"))
	} else {
		b.WriteString(hint("enter", "continue", "esc", "back"))
	}

	panel := styles.Panel.BorderForeground(t.Primary).Render(b.String())
	return lipgloss.Place(v.width, v.height, lipgloss.Center, lipgloss.Center, panel)
}
