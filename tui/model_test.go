package tui

import (
	"context"
	"testing"

	"debatearena/internal/debate"
	"debatearena/locale"
	"debatearena/models"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedGenerator struct {
	replies []string
}

func (g *scriptedGenerator) Generate(ctx context.Context, prompt string, structured bool) (string, error) {
	if len(g.replies) == 0 {
		return "", nil
	}
	r := g.replies[0]
	g.replies = g.replies[1:]
	return r, nil
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, m Model, msgs ...tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		next, c := m.Update(msg)
		m = next.(Model)
		cmd = c
	}
	return m, cmd
}

// runCall executes a command returned for a model call and feeds its result back.
func runCall(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	require.NotNil(t, cmd)
	msg := cmd()
	done, ok := msg.(callDoneMsg)
	require.True(t, ok, "unexpected message %T", msg)
	require.NoError(t, done.err)
	m, _ = send(t, m, done)
	return m
}

func newModel(replies ...string) (Model, *debate.Machine) {
	machine := debate.NewMachine("tui", locale.Turkish, &scriptedGenerator{replies: replies}, nil)
	return New(context.Background(), machine), machine
}

func TestModel_TopicSelection(t *testing.T) {
	m, machine := newModel()

	m, _ = send(t, m, key("s"))
	assert.Equal(t, "Lütfen bir konu ve taraf seçin.", machine.Snapshot().Error)
	assert.Contains(t, m.View(), "Lütfen bir konu ve taraf seçin.")

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyEnter}, key("c"))
	s := machine.Snapshot()
	assert.Equal(t, locale.For(locale.Turkish).Topics[1].Value, s.Topic)
	assert.Equal(t, models.StanceCon, s.Stance)
	assert.Empty(t, s.Error)

	m, _ = send(t, m, key("s"))
	assert.Equal(t, models.ScreenDebate, machine.Snapshot().Screen)
	assert.Contains(t, m.View(), locale.For(locale.Turkish).Topics[1].Value)
}

func TestModel_CustomTopicAndLanguage(t *testing.T) {
	m, machine := newModel()

	m, _ = send(t, m, key("l"))
	assert.Equal(t, "en", machine.Snapshot().Lang)
	assert.Contains(t, m.View(), "Debate Arena")

	for i := 0; i < m.topicCount(); i++ {
		m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	}
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, focusCustom, m.focus)

	m, _ = send(t, m, key("Mars"), tea.KeyMsg{Type: tea.KeyEnter}, key("p"), key("s"))
	s := machine.Snapshot()
	assert.Equal(t, models.ScreenDebate, s.Screen)
	assert.Equal(t, "Mars", s.ResolvedTopic())
	assert.Equal(t, models.StancePro, s.Stance)
}

func TestModel_DebateAndReport(t *testing.T) {
	report := `{"enGucluArguman":"Örnekler","gelistirilmesiGerekenNokta":{"tespitEdilenHata":"Aceleci genelleme","onerilenGelistirme":"Daha fazla veri"},"iknaEdicilikPuani":8,"genelYorum":"Güçlü başlangıç."}`
	m, machine := newModel("Buna katılmıyorum.", report, "graph TD\nA-->B")
	require.NoError(t, machine.SelectTopic("Konu"))
	require.NoError(t, machine.SelectStance(models.StancePro))
	require.NoError(t, machine.StartDebate())
	m, _ = send(t, m, sessionChangedMsg{})

	m, cmd := send(t, m, key("Merhaba"), tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, machine.Snapshot().IsLoading)
	assert.Contains(t, m.View(), "AI Münazır düşünüyor...")
	m = runCall(t, m, cmd)

	s := machine.Snapshot()
	require.Len(t, s.Messages, 2)
	assert.Equal(t, "Merhaba", s.Messages[0].Text)
	assert.Empty(t, m.composer.Value())

	m, cmd = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlE})
	m = runCall(t, m, cmd)
	view := m.View()
	assert.Contains(t, view, "Performans Raporu")
	assert.Contains(t, view, "8/10")
	assert.Contains(t, view, "Daha fazla veri")

	m, cmd = send(t, m, key("m"))
	m = runCall(t, m, cmd)
	assert.Contains(t, m.View(), "A-->B")

	m, _ = send(t, m, key("n"))
	assert.Equal(t, models.ScreenTopic, machine.Snapshot().Screen)
	assert.Zero(t, m.cursor)
}

func TestModel_EmptyMessageDoesNothing(t *testing.T) {
	m, machine := newModel()
	require.NoError(t, machine.SelectTopic("Konu"))
	require.NoError(t, machine.SelectStance(models.StanceCon))
	require.NoError(t, machine.StartDebate())
	m, _ = send(t, m, sessionChangedMsg{})

	_, cmd := send(t, m, key("   "), tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Empty(t, machine.Snapshot().Messages)
}
