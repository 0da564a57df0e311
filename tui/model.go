// Package tui is a terminal client for a single debate session.
package tui

import (
	"context"

	"debatearena/internal/debate"
	"debatearena/locale"
	"debatearena/models"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

type focus int

const (
	focusList focus = iota
	focusCustom
)

// sessionChangedMsg is sent when the machine reports a change.
type sessionChangedMsg struct{}

// callDoneMsg carries the result of a model call.
type callDoneMsg struct{ err error }

// Model is the bubbletea model. It renders the machine's snapshot and turns keys
// into transitions.
type Model struct {
	ctx     context.Context
	machine *debate.Machine
	changes chan struct{}
	session models.Session

	cursor   int
	focus    focus
	custom   textinput.Model
	composer textinput.Model
	chat     viewport.Model
	spinner  spinner.Model
	gauge    progress.Model

	width  int
	height int
}

func New(ctx context.Context, machine *debate.Machine) Model {
	custom := textinput.New()
	custom.CharLimit = 200

	composer := textinput.New()
	composer.CharLimit = 2000

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = selectedStyle

	m := Model{
		ctx:      ctx,
		machine:  machine,
		changes:  make(chan struct{}, 1),
		custom:   custom,
		composer: composer,
		chat:     viewport.New(80, 15),
		spinner:  sp,
		gauge:    progress.New(progress.WithDefaultGradient(), progress.WithWidth(30)),
		width:    80,
		height:   24,
	}
	machine.Subscribe(func(models.Session) {
		select {
		case m.changes <- struct{}{}:
		default:
		}
	})
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.waitForChange(), m.spinner.Tick)
}

func (m Model) waitForChange() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.changes:
			return sessionChangedMsg{}
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m Model) run(call *debate.Call) tea.Cmd {
	if call == nil {
		return nil
	}
	return func() tea.Msg {
		return callDoneMsg{err: call.Run(m.ctx)}
	}
}

func (m Model) ui() locale.Strings {
	return locale.For(locale.Lang(m.session.Lang))
}

// topicCount is the predefined topics plus the custom entry.
func (m Model) topicCount() int {
	return len(m.ui().Topics) + 1
}

func (m *Model) refresh() {
	m.session = m.machine.Snapshot()
	m.custom.Placeholder = m.ui().CustomTopicHint
	m.composer.Placeholder = m.ui().ArgumentHint
	m.chat.SetContent(m.renderMessages())
	m.chat.GotoBottom()

	if m.session.Screen == models.ScreenDebate && !m.session.IsLoading {
		m.composer.Focus()
	} else {
		m.composer.Blur()
	}
}

func (m *Model) resize() {
	m.chat.Width = m.width
	h := m.height - 10
	if h < 5 {
		h = 5
	}
	m.chat.Height = h
	m.composer.Width = m.width - 4
	m.custom.Width = m.width - 4
	m.chat.SetContent(m.renderMessages())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case sessionChangedMsg:
		m.refresh()
		return m, m.waitForChange()

	case callDoneMsg:
		// Failures are already on the session; the snapshot shows them.
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		var cmd tea.Cmd
		switch m.session.Screen {
		case models.ScreenTopic:
			m, cmd = m.updateTopic(msg)
		case models.ScreenDebate:
			m, cmd = m.updateDebate(msg)
		case models.ScreenReport:
			m, cmd = m.updateReport(msg)
		}
		m.refresh()
		return m, cmd
	}
	return m, nil
}

func (m Model) updateTopic(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.focus == focusCustom {
		switch msg.Type {
		case tea.KeyEnter, tea.KeyEsc:
			_ = m.machine.SetCustomTopic(m.custom.Value())
			m.custom.Blur()
			m.focus = focusList
			return m, nil
		}
		var cmd tea.Cmd
		m.custom, cmd = m.custom.Update(msg)
		return m, cmd
	}

	topics := m.ui().Topics
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < m.topicCount()-1 {
			m.cursor++
		}
	case "enter", " ":
		if m.cursor < len(topics) {
			_ = m.machine.SelectTopic(topics[m.cursor].Value)
			return m, nil
		}
		_ = m.machine.SelectTopic(models.CustomTopic)
		m.focus = focusCustom
		m.custom.SetValue(m.session.CustomTopic)
		return m, m.custom.Focus()
	case "p":
		_ = m.machine.SelectStance(models.StancePro)
	case "c":
		_ = m.machine.SelectStance(models.StanceCon)
	case "l":
		next := locale.English
		if m.session.Lang == string(locale.English) {
			next = locale.Turkish
		}
		_ = m.machine.SelectLanguage(next)
	case "s":
		_ = m.machine.StartDebate()
	}
	return m, nil
}

func (m Model) updateDebate(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlE:
		call, err := m.machine.EndDebate()
		if err != nil {
			return m, nil
		}
		return m, m.run(call)
	case tea.KeyCtrlN:
		m.machine.NewDebate()
		return m, nil
	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(msg)
		return m, cmd
	case tea.KeyEnter:
		if m.session.IsLoading {
			return m, nil
		}
		call, err := m.machine.SendMessage(m.composer.Value())
		if err != nil {
			return m, nil
		}
		m.composer.Reset()
		return m, m.run(call)
	}
	if m.session.IsLoading {
		return m, nil
	}
	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(msg)
	return m, cmd
}

func (m Model) updateReport(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "m":
		call, err := m.machine.BuildArgumentMap()
		if err != nil {
			return m, nil
		}
		return m, m.run(call)
	case "n":
		m.machine.NewDebate()
		m.cursor = 0
	}
	return m, nil
}

// Run starts the terminal client and blocks until the user quits or ctx ends.
func Run(ctx context.Context, machine *debate.Machine) error {
	p := tea.NewProgram(New(ctx, machine), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
