package tui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrCancelled is returned when the user leaves the prompt with esc or ctrl+c.
var ErrCancelled = errors.New("tui: prompt cancelled")

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	inputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)
)

type step int

const (
	stepUsername step = iota
	stepPassword
	stepDone
)

// Credentials collected by the prompt.
type Credentials struct {
	Username string
	Password string
}

// credentialsModel asks for a username and then a masked password.
type credentialsModel struct {
	title     string
	step      step
	username  string
	password  string
	input     string
	message   string
	cancelled bool
}

func newCredentialsModel(title, username string) credentialsModel {
	m := credentialsModel{title: title}
	if username != "" {
		m.username = username
		m.step = stepPassword
	}
	return m
}

func (m credentialsModel) Init() tea.Cmd {
	return nil
}

func (m credentialsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.cancelled = true
		return m, tea.Quit
	case tea.KeyEnter:
		value := strings.TrimSpace(m.input)
		if m.step == stepPassword {
			value = m.input
		}
		if value == "" {
			m.message = "value required"
			return m, nil
		}
		m.message = ""
		m.input = ""
		if m.step == stepUsername {
			m.username = value
			m.step = stepPassword
			return m, nil
		}
		m.password = value
		m.step = stepDone
		return m, tea.Quit
	case tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
	case tea.KeyRunes, tea.KeySpace:
		m.input += string(key.Runes)
		if key.Type == tea.KeySpace && len(key.Runes) == 0 {
			m.input += " "
		}
	}
	return m, nil
}

func (m credentialsModel) View() string {
	if m.step == stepDone || m.cancelled {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")

	switch m.step {
	case stepUsername:
		b.WriteString(promptStyle.Render("Username: "))
		b.WriteString(inputStyle.Render(m.input))
	case stepPassword:
		b.WriteString(hintStyle.Render("user " + m.username))
		b.WriteString("\n")
		b.WriteString(promptStyle.Render("Password: "))
		b.WriteString(inputStyle.Render(strings.Repeat("•", len([]rune(m.input)))))
	}
	b.WriteString("\n")
	if m.message != "" {
		b.WriteString(errorStyle.Render(m.message))
		b.WriteString("\n")
	}
	b.WriteString(hintStyle.Render("enter to confirm • esc to cancel"))
	b.WriteString("\n")
	return b.String()
}

// PromptCredentials runs the interactive prompt. A non-empty username skips
// straight to the password.
func PromptCredentials(in io.Reader, out io.Writer, title, username string) (Credentials, error) {
	p := tea.NewProgram(newCredentialsModel(title, username), tea.WithInput(in), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return Credentials{}, fmt.Errorf("tui: run prompt: %w", err)
	}
	m, ok := final.(credentialsModel)
	if !ok || m.cancelled || m.step != stepDone {
		return Credentials{}, ErrCancelled
	}
	return Credentials{Username: m.username, Password: m.password}, nil
}
