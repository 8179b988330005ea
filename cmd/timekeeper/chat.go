package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"timekeeper/internal/core"
)

// chatCmd starts the TUI explicitly; the root command does the same.
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start the interactive chat interface",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractiveChat(cmd.Context())
	},
}

// chatBackend is the slice of *core.Assistant the TUI uses.
type chatBackend interface {
	Handle(ctx context.Context, message string) string
	WantsDownload(message string) bool
	TimesheetFile(ctx context.Context) (string, error)
}

var _ chatBackend = (*core.Assistant)(nil)

type chatMessage struct {
	role    string // "user" or "assistant"
	content string
}

// replyMsg carries the assistant's answer back into Update.
type replyMsg struct {
	text     string
	download string
}

type chatStyles struct {
	header    lipgloss.Style
	user      lipgloss.Style
	assistant lipgloss.Style
	hint      lipgloss.Style
	prompt    lipgloss.Style
	spinner   lipgloss.Style
}

func defaultChatStyles() chatStyles {
	return chatStyles{
		header:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BC34A")).Padding(0, 1),
		user:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2196F3")),
		assistant: lipgloss.NewStyle().Foreground(lipgloss.Color("#8BC34A")),
		hint:      lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		prompt:    lipgloss.NewStyle().Foreground(lipgloss.Color("#8BC34A")),
		spinner:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FFC107")),
	}
}

// chatModel is the main model for the interactive chat interface
type chatModel struct {
	// UI Components
	textinput textinput.Model
	viewport  viewport.Model
	spinner   spinner.Model
	styles    chatStyles
	renderer  *glamour.TermRenderer

	// State
	history   []chatMessage
	isLoading bool
	width     int
	height    int
	ready     bool

	// Backend
	ctx     context.Context
	backend chatBackend
}

func newChatModel(ctx context.Context, backend chatBackend) chatModel {
	styles := defaultChatStyles()

	ti := textinput.New()
	ti.Placeholder = "Tell me what you worked on or ask for your timesheet... (Enter to send, Esc to exit)"
	ti.Focus()
	ti.Prompt = "│ "
	ti.CharLimit = 4096
	ti.Width = 80
	ti.PromptStyle = styles.prompt

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.spinner

	vp := viewport.New(80, 20)

	renderer, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)

	m := chatModel{
		textinput: ti,
		viewport:  vp,
		spinner:   sp,
		styles:    styles,
		renderer:  renderer,
		history:   []chatMessage{{role: "assistant", content: core.WelcomeMessage}},
		ctx:       ctx,
		backend:   backend,
	}
	m.viewport.SetContent(m.renderHistory())
	return m
}

func (m chatModel) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
	)
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		spCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if !m.isLoading {
				return m.handleSubmit()
			}
		}
		if !m.isLoading {
			m.textinput, tiCmd = m.textinput.Update(msg)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 2
		inputHeight := 3
		vpHeight := msg.Height - headerHeight - inputHeight
		if vpHeight < 3 {
			vpHeight = 3
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width-2, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 2
			m.viewport.Height = vpHeight
		}
		m.textinput.Width = msg.Width - 4

		if wrap := msg.Width - 6; wrap > 20 {
			m.renderer, _ = glamour.NewTermRenderer(
				glamour.WithAutoStyle(),
				glamour.WithWordWrap(wrap),
			)
		}
		m.viewport.SetContent(m.renderHistory())
		m.viewport.GotoBottom()

	case replyMsg:
		m.isLoading = false
		content := msg.text
		if msg.download != "" {
			content += "\n\n📥 Timesheet file: " + msg.download
		}
		m.history = append(m.history, chatMessage{role: "assistant", content: content})
		m.viewport.SetContent(m.renderHistory())
		m.viewport.GotoBottom()
		m.textinput.Focus()

	case spinner.TickMsg:
		m.spinner, spCmd = m.spinner.Update(msg)
	}

	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(tiCmd, vpCmd, spCmd)
}

// handleSubmit records the user's message and asks the backend off the UI loop.
func (m chatModel) handleSubmit() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.textinput.Value())
	if input == "" {
		return m, nil
	}
	m.textinput.Reset()
	m.history = append(m.history, chatMessage{role: "user", content: input})
	m.isLoading = true
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()

	return m, tea.Batch(m.spinner.Tick, m.ask(input))
}

func (m chatModel) ask(input string) tea.Cmd {
	ctx, backend := m.ctx, m.backend
	return func() tea.Msg {
		reply := replyMsg{text: backend.Handle(ctx, input)}
		if backend.WantsDownload(input) {
			if path, err := backend.TimesheetFile(ctx); err == nil {
				reply.download = path
			}
		}
		return reply
	}
}

func (m chatModel) renderHistory() string {
	var b strings.Builder
	for _, msg := range m.history {
		if msg.role == "user" {
			b.WriteString(m.styles.user.Render("You: "))
			b.WriteString(msg.content)
			b.WriteString("\n\n")
			continue
		}
		b.WriteString(m.styles.assistant.Render("Assistant:"))
		b.WriteString("\n")
		b.WriteString(m.renderMarkdown(msg.content))
		b.WriteString("\n")
	}
	return b.String()
}

// renderMarkdown keeps line breaks of multi-line replies and falls back to
// plain text when no renderer is available.
func (m chatModel) renderMarkdown(s string) string {
	if m.renderer == nil {
		return s + "\n"
	}
	out, err := m.renderer.Render(strings.ReplaceAll(s, "\n", "  \n"))
	if err != nil {
		return s + "\n"
	}
	return out
}

func (m chatModel) View() string {
	header := m.styles.header.Render("⏱  timekeeper · attendance assistant")

	footer := m.textinput.View()
	if m.isLoading {
		footer = fmt.Sprintf("%s %s", m.spinner.View(), m.styles.hint.Render("Thinking..."))
	}

	return fmt.Sprintf("%s\n%s\n%s", header, m.viewport.View(), footer)
}

// runInteractiveChat starts the interactive chat interface
func runInteractiveChat(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	p := tea.NewProgram(
		newChatModel(ctx, a.assistant),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	_, err = p.Run()
	return err
}
