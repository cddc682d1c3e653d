package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.design/x/clipboard"
)

// Color taxonomy for terminal output.
type Color string

const (
	ColorStatus  Color = "status"
	ColorSuccess Color = "success"
	ColorWarning Color = "warning"
	ColorFailure Color = "failure"
	ColorCode    Color = "code"
	ColorDefault Color = "default"
)

var styles = map[Color]lipgloss.Style{
	ColorStatus:  lipgloss.NewStyle().Foreground(lipgloss.Color("39")),  // blue
	ColorSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),  // green
	ColorWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")), // orange
	ColorFailure: lipgloss.NewStyle().Foreground(lipgloss.Color("196")), // red
	ColorCode:    lipgloss.NewStyle().Foreground(lipgloss.Color("170")), // purple
	ColorDefault: lipgloss.NewStyle(),
}

type UI struct{}

func New() *UI {
	return &UI{}
}

func (u *UI) Print(msg string) {
	fmt.Println(msg)
}

// PrettyPrint writes a line styled by the given color class.
func (u *UI) PrettyPrint(msg string, color Color) {
	style, ok := styles[color]
	if !ok {
		style = styles[ColorDefault]
	}
	fmt.Println(style.Render(msg))
}

// Input handling

type inputModel struct {
	textInput textinput.Model
	output    string
	canceled  bool
}

func initialInputModel(prompt string) inputModel {
	ti := textinput.New()
	ti.Placeholder = "Ask anything..."
	ti.Focus()
	ti.CharLimit = 0
	ti.Width = 80
	ti.Prompt = prompt

	return inputModel{textInput: ti}
}

func (m inputModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEnter:
			m.output = m.textInput.Value()
			return m, tea.Quit
		case tea.KeyCtrlC, tea.KeyEsc:
			m.canceled = true
			return m, tea.Quit
		case tea.KeyCtrlV:
			if err := clipboard.Init(); err == nil {
				if text := clipboard.Read(clipboard.FmtText); len(text) > 0 {
					m.textInput.SetValue(m.textInput.Value() + string(text))
					m.textInput.SetCursor(len(m.textInput.Value()))
				}
			}
		}
	}

	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m inputModel) View() string {
	return m.textInput.View() + "\n"
}

// Prompt reads one line of user input. A canceled prompt (ctrl+c / esc)
// returns "exit" so the caller's exit-word handling applies.
func (u *UI) Prompt(prompt string) string {
	p := tea.NewProgram(initialInputModel(prompt))
	m, err := p.Run()
	if err != nil {
		fmt.Printf("Input error: %v\n", err)
		return ""
	}

	if model, ok := m.(inputModel); ok {
		if model.canceled {
			return "exit"
		}
		return strings.TrimSpace(model.output)
	}
	return ""
}

// Stream handling

type streamModel struct {
	sub      <-chan string
	content  string
	showing  bool
	finished bool
}

type tokenMsg string
type finishMsg struct{}

func waitForToken(sub <-chan string) tea.Cmd {
	return func() tea.Msg {
		token, ok := <-sub
		if !ok {
			return finishMsg{}
		}
		return tokenMsg(token)
	}
}

func (m streamModel) Init() tea.Cmd {
	return waitForToken(m.sub)
}

func (m streamModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+o" {
			m.showing = !m.showing
			return m, nil
		}
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
	case tokenMsg:
		m.content += string(msg)
		return m, waitForToken(m.sub)
	case finishMsg:
		m.finished = true
		m.showing = true
		return m, tea.Quit
	}
	return m, nil
}

func (m streamModel) View() string {
	if !m.showing {
		return "Thinking... (Press Ctrl+O to show stream)"
	}
	return m.content
}

// DisplayStream renders a token channel live, then reprints the final
// content once bubbletea has released the screen.
func (u *UI) DisplayStream(outputChan <-chan string) {
	m := streamModel{
		sub:     outputChan,
		showing: true,
	}
	p := tea.NewProgram(m)
	finalModel, err := p.Run()
	if err != nil {
		fmt.Printf("Error in stream display: %v\n", err)
	}

	if sm, ok := finalModel.(streamModel); ok && sm.content != "" {
		fmt.Println(sm.content)
	}
}
