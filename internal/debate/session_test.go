package debate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"debatearena/locale"
	"debatearena/models"
	"debatearena/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReply struct {
	text string
	err  error
}

// fakeGenerator answers from a queue of canned replies. When gate is set each
// call waits for a value on it before answering.
type fakeGenerator struct {
	mu      sync.Mutex
	replies []fakeReply
	prompts []string
	flags   []bool
	gate    chan struct{}
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string, structured bool) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.flags = append(f.flags, structured)
	var r fakeReply
	if len(f.replies) > 0 {
		r = f.replies[0]
		f.replies = f.replies[1:]
	}
	gate := f.gate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return r.text, r.err
}

func (f *fakeGenerator) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

func newDebating(t *testing.T, gen *fakeGenerator) *Machine {
	t.Helper()
	m := NewMachine("s1", locale.Turkish, gen, nil)
	require.NoError(t, m.SelectTopic("Yapay zeka insanlık için bir tehdit mi?"))
	require.NoError(t, m.SelectStance(models.StancePro))
	require.NoError(t, m.StartDebate())
	return m
}

const validReport = `{"enGucluArguman":"Tarihsel örnekler","gelistirilmesiGerekenNokta":{"tespitEdilenHata":"Genelleme","onerilenGelistirme":"Veri kullan"},"iknaEdicilikPuani":7,"genelYorum":"İyi iş."}`

func TestNewMachine_InitialState(t *testing.T) {
	m := NewMachine("abc", locale.English, &fakeGenerator{}, nil)
	s := m.Snapshot()

	assert.Equal(t, "abc", s.ID)
	assert.Equal(t, "en", s.Lang)
	assert.Equal(t, models.ScreenTopic, s.Screen)
	assert.Empty(t, s.Messages)
	assert.Nil(t, s.Report)
	assert.False(t, s.IsLoading)
	assert.Empty(t, s.Error)
}

func TestStartDebate_Validation(t *testing.T) {
	tests := []struct {
		name   string
		topic  string
		custom string
		stance models.Stance
	}{
		{"nothing chosen", "", "", ""},
		{"no stance", "Konu", "", ""},
		{"no topic", "", "", models.StanceCon},
		{"blank custom topic", models.CustomTopic, "   ", models.StancePro},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{}
			m := NewMachine("s", locale.Turkish, gen, nil)
			require.NoError(t, m.SelectTopic(tt.topic))
			require.NoError(t, m.SetCustomTopic(tt.custom))
			require.NoError(t, m.SelectStance(tt.stance))

			err := m.StartDebate()
			require.ErrorIs(t, err, ErrValidation)

			s := m.Snapshot()
			assert.Equal(t, models.ScreenTopic, s.Screen)
			assert.Equal(t, "Lütfen bir konu ve taraf seçin.", s.Error)
			assert.Zero(t, gen.calls())
		})
	}
}

func TestStartDebate_CustomTopic(t *testing.T) {
	m := NewMachine("s", locale.Turkish, &fakeGenerator{}, nil)
	require.NoError(t, m.SelectTopic(models.CustomTopic))
	require.NoError(t, m.SetCustomTopic("  Uzay keşfi öncelik mi?  "))
	require.NoError(t, m.SelectStance(models.StanceCon))
	require.NoError(t, m.StartDebate())

	s := m.Snapshot()
	assert.Equal(t, models.ScreenDebate, s.Screen)
	assert.Equal(t, "Uzay keşfi öncelik mi?", s.ResolvedTopic())
	assert.Empty(t, s.Messages)
}

func TestSetters_ClearErrorAndRequireTopicScreen(t *testing.T) {
	m := NewMachine("s", locale.Turkish, &fakeGenerator{}, nil)
	require.ErrorIs(t, m.StartDebate(), ErrValidation)
	require.NotEmpty(t, m.Snapshot().Error)

	require.NoError(t, m.SelectStance(models.StanceCon))
	assert.Empty(t, m.Snapshot().Error)

	require.NoError(t, m.SelectTopic("Konu"))
	require.NoError(t, m.StartDebate())

	assert.ErrorIs(t, m.SelectTopic("Başka"), ErrWrongScreen)
	assert.ErrorIs(t, m.SelectLanguage(locale.English), ErrWrongScreen)
	assert.ErrorIs(t, m.StartDebate(), ErrWrongScreen)
	assert.Equal(t, "Konu", m.Snapshot().Topic)
}

func TestSendMessage_EmptyIsNoop(t *testing.T) {
	gen := &fakeGenerator{}
	m := newDebating(t, gen)

	for _, text := range []string{"", "   ", "\n\t"} {
		call, err := m.SendMessage(text)
		require.NoError(t, err)
		assert.Nil(t, call)
	}
	s := m.Snapshot()
	assert.Empty(t, s.Messages)
	assert.False(t, s.IsLoading)
	assert.Zero(t, gen.calls())
}

func TestSendMessage_Success(t *testing.T) {
	gen := &fakeGenerator{replies: []fakeReply{{text: "Tarih aksini gösteriyor."}}}
	m := newDebating(t, gen)

	call, err := m.SendMessage("AI işleri yok edecek.")
	require.NoError(t, err)
	require.NotNil(t, call)
	assert.Equal(t, "turn", call.Kind())

	pending := m.Snapshot()
	assert.True(t, pending.IsLoading)
	require.Len(t, pending.Messages, 1)
	assert.Equal(t, models.AuthorUser, pending.Messages[0].Author)

	require.NoError(t, call.Run(context.Background()))

	s := m.Snapshot()
	assert.False(t, s.IsLoading)
	assert.Empty(t, s.Error)
	require.Len(t, s.Messages, 2)
	assert.Equal(t, models.Message{Author: models.AuthorAI, Text: "Tarih aksini gösteriyor."}, s.Messages[1])

	require.Len(t, gen.prompts, 1)
	assert.Equal(t, services.TurnPrompt(locale.Turkish, "Yapay zeka insanlık için bir tehdit mi?", models.StancePro, s.Messages[:1]), gen.prompts[0])
	assert.False(t, gen.flags[0])
}

func TestSendMessage_TransportError(t *testing.T) {
	gen := &fakeGenerator{replies: []fakeReply{{err: &services.APIError{Kind: services.TransportError, Status: 429, Message: "quota exceeded"}}}}
	m := newDebating(t, gen)

	call, err := m.SendMessage("Merhaba")
	require.NoError(t, err)
	err = call.Run(context.Background())
	require.ErrorIs(t, err, services.ErrTransport)

	s := m.Snapshot()
	assert.Equal(t, models.ScreenDebate, s.Screen)
	assert.False(t, s.IsLoading)
	assert.Equal(t, "quota exceeded", s.Error)
	require.Len(t, s.Messages, 1)
	assert.Equal(t, models.AuthorUser, s.Messages[0].Author)
}

func TestSendMessage_ErrorDescriptions(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"status only", &services.APIError{Kind: services.TransportError, Status: 503}, "API Hatası: 503 Service Unavailable"},
		{"malformed", &services.APIError{Kind: services.MalformedResponse}, "API'den beklenen formatta bir yanıt alınamadı."},
		{"plain error", errors.New("dial tcp: refused"), "dial tcp: refused"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newDebating(t, &fakeGenerator{replies: []fakeReply{{err: tt.err}}})
			call, err := m.SendMessage("x")
			require.NoError(t, err)
			require.Error(t, call.Run(context.Background()))
			assert.Equal(t, tt.want, m.Snapshot().Error)
		})
	}
}

func TestSendMessage_BusyAndWrongScreen(t *testing.T) {
	gen := &fakeGenerator{replies: []fakeReply{{text: "cevap"}}}
	m := newDebating(t, gen)

	call, err := m.SendMessage("bir")
	require.NoError(t, err)

	_, err = m.SendMessage("iki")
	assert.ErrorIs(t, err, ErrBusy)
	_, err = m.EndDebate()
	assert.ErrorIs(t, err, ErrBusy)
	assert.Len(t, m.Snapshot().Messages, 1)

	require.NoError(t, call.Run(context.Background()))
	assert.ErrorIs(t, call.Run(context.Background()), ErrCallConsumed)

	fresh := NewMachine("t", locale.Turkish, gen, nil)
	_, err = fresh.SendMessage("selam")
	assert.ErrorIs(t, err, ErrWrongScreen)
	_, err = fresh.BuildArgumentMap()
	assert.ErrorIs(t, err, ErrWrongScreen)
}

func TestEndDebate_StructuredReport(t *testing.T) {
	gen := &fakeGenerator{replies: []fakeReply{{text: "ilk cevap"}, {text: "```json\n" + validReport + "\n```"}}}
	m := newDebating(t, gen)

	call, err := m.SendMessage("argüman")
	require.NoError(t, err)
	require.NoError(t, call.Run(context.Background()))

	call, err = m.EndDebate()
	require.NoError(t, err)
	assert.Equal(t, "report", call.Kind())
	assert.Equal(t, models.ScreenDebate, m.Snapshot().Screen)
	require.NoError(t, call.Run(context.Background()))

	s := m.Snapshot()
	assert.Equal(t, models.ScreenReport, s.Screen)
	assert.Empty(t, s.Error)
	require.NotNil(t, s.Report)
	require.True(t, s.Report.IsStructured())
	assert.Equal(t, 7, s.Report.Evaluation.PersuasivenessScore)
	assert.Equal(t, "Genelleme", s.Report.Evaluation.WeakPoint.DetectedFlaw)
	assert.Len(t, s.Messages, 2)

	assert.True(t, gen.flags[1])
	assert.Equal(t, services.ReportPrompt(locale.Turkish, s.Messages), gen.prompts[1])
}

func TestEndDebate_RawReport(t *testing.T) {
	gen := &fakeGenerator{replies: []fakeReply{{text: "Harika bir münazaraydı, puanın 8."}}}
	m := newDebating(t, gen)

	call, err := m.EndDebate()
	require.NoError(t, err)
	require.NoError(t, call.Run(context.Background()))

	s := m.Snapshot()
	assert.Equal(t, models.ScreenReport, s.Screen)
	require.NotNil(t, s.Report)
	assert.False(t, s.Report.IsStructured())
	assert.Equal(t, "Harika bir münazaraydı, puanın 8.", s.Report.RawText)
	assert.Equal(t, "Rapor oluşturulurken bir hata oluştu. Lütfen rapor formatını kontrol edin.", s.Error)
}

func TestEndDebate_TransportErrorStaysOnDebate(t *testing.T) {
	gen := &fakeGenerator{replies: []fakeReply{{err: &services.APIError{Kind: services.TransportError, Status: 500, Message: "internal"}}}}
	m := newDebating(t, gen)

	call, err := m.EndDebate()
	require.NoError(t, err)
	require.Error(t, call.Run(context.Background()))

	s := m.Snapshot()
	assert.Equal(t, models.ScreenDebate, s.Screen)
	assert.Nil(t, s.Report)
	assert.Equal(t, "internal", s.Error)
	assert.False(t, s.IsLoading)
}

func TestBuildArgumentMap(t *testing.T) {
	gen := &fakeGenerator{replies: []fakeReply{{text: validReport}, {text: "```mermaid\ngraph TD\nA-->B\n```"}}}
	m := newDebating(t, gen)

	call, err := m.EndDebate()
	require.NoError(t, err)
	require.NoError(t, call.Run(context.Background()))

	call, err = m.BuildArgumentMap()
	require.NoError(t, err)
	assert.Equal(t, "argument_map", call.Kind())
	require.NoError(t, call.Run(context.Background()))

	s := m.Snapshot()
	assert.Equal(t, models.ScreenReport, s.Screen)
	assert.Equal(t, "graph TD\nA-->B", s.ArgumentMap)
	assert.False(t, gen.flags[1])
}

func TestNewDebate_ResetsAndIsIdempotent(t *testing.T) {
	gen := &fakeGenerator{replies: []fakeReply{{text: "cevap"}, {text: validReport}}}
	m := NewMachine("keep", locale.English, gen, nil)
	require.NoError(t, m.SelectTopic("Topic"))
	require.NoError(t, m.SelectStance(models.StanceCon))
	require.NoError(t, m.StartDebate())
	call, _ := m.SendMessage("hello")
	require.NoError(t, call.Run(context.Background()))
	call, _ = m.EndDebate()
	require.NoError(t, call.Run(context.Background()))

	m.NewDebate()
	first := m.Snapshot()
	m.NewDebate()
	second := m.Snapshot()

	want := models.Session{ID: "keep", Lang: "en", Screen: models.ScreenTopic}
	assert.Equal(t, want, first)
	assert.Equal(t, first, second)
}

func TestNewDebate_DropsLateResponse(t *testing.T) {
	gen := &fakeGenerator{replies: []fakeReply{{text: "geç kalan cevap"}}, gate: make(chan struct{})}
	m := newDebating(t, gen)

	call, err := m.SendMessage("soru")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- call.Run(context.Background()) }()

	m.NewDebate()
	close(gen.gate)

	require.ErrorIs(t, <-done, ErrStaleResponse)
	s := m.Snapshot()
	assert.Equal(t, models.ScreenTopic, s.Screen)
	assert.Empty(t, s.Messages)
	assert.False(t, s.IsLoading)
}

func TestCall_ContextCancelled(t *testing.T) {
	gen := &fakeGenerator{gate: make(chan struct{})}
	m := newDebating(t, gen)

	call, err := m.SendMessage("soru")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, call.Run(ctx), context.Canceled)

	s := m.Snapshot()
	assert.False(t, s.IsLoading)
	assert.NotEmpty(t, s.Error)
}

func TestSubscribe_ReceivesSnapshotsInOrder(t *testing.T) {
	gen := &fakeGenerator{replies: []fakeReply{{text: "cevap"}}}
	m := NewMachine("s", locale.Turkish, gen, nil)

	var seen []models.Session
	unsubscribe := m.Subscribe(func(s models.Session) { seen = append(seen, s) })

	require.NoError(t, m.SelectTopic("Konu"))
	require.NoError(t, m.SelectStance(models.StancePro))
	require.NoError(t, m.StartDebate())
	call, err := m.SendMessage("merhaba")
	require.NoError(t, err)
	require.NoError(t, call.Run(context.Background()))

	require.Len(t, seen, 5)
	assert.Equal(t, models.ScreenDebate, seen[2].Screen)
	assert.True(t, seen[3].IsLoading)
	assert.Len(t, seen[3].Messages, 1)
	assert.False(t, seen[4].IsLoading)
	assert.Len(t, seen[4].Messages, 2)

	seen[4].Messages[0].Text = "mutated"
	assert.Equal(t, "merhaba", m.Snapshot().Messages[0].Text)

	unsubscribe()
	m.NewDebate()
	assert.Len(t, seen, 5)
}

func TestSubscribe_NoNotificationWithoutChange(t *testing.T) {
	m := newDebating(t, &fakeGenerator{})
	count := 0
	m.Subscribe(func(models.Session) { count++ })

	_, _ = m.SendMessage("  ")
	_ = m.SelectTopic("x")
	assert.Zero(t, count)
}

func TestCall_EmptyReplyLeavesSession(t *testing.T) {
	gen := &fakeGenerator{replies: []fakeReply{{text: ""}, {text: ""}}}
	m := newDebating(t, gen)

	call, err := m.SendMessage("merhaba")
	require.NoError(t, err)
	require.NoError(t, call.Run(context.Background()))

	s := m.Snapshot()
	require.Len(t, s.Messages, 1)
	assert.Empty(t, s.Error)
	assert.False(t, s.IsLoading)

	call, err = m.EndDebate()
	require.NoError(t, err)
	require.NoError(t, call.Run(context.Background()))

	s = m.Snapshot()
	assert.Equal(t, models.ScreenDebate, s.Screen)
	assert.Nil(t, s.Report)
	assert.Empty(t, s.Error)
	assert.False(t, s.IsLoading)
}

func finishesWithin(t *testing.T, d time.Duration, fn func()) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		fn()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(d):
		t.Fatal("call blocked")
	}
}

func TestSubscribe_SlowObserverDoesNotBlockReaders(t *testing.T) {
	reg := NewRegistry(&fakeGenerator{}, locale.Turkish, nil)
	slow := reg.Create(locale.Turkish)
	other := reg.Create(locale.Turkish)

	entered := make(chan struct{})
	release := make(chan struct{})
	var mu sync.Mutex
	var topics []string
	blocked := false
	slow.Subscribe(func(s models.Session) {
		mu.Lock()
		first := !blocked
		blocked = true
		mu.Unlock()
		if first {
			close(entered)
			<-release
		}
		mu.Lock()
		topics = append(topics, s.Topic)
		mu.Unlock()
	})

	done := make(chan struct{}, 2)
	go func() {
		_ = slow.SelectTopic("bir")
		done <- struct{}{}
	}()
	<-entered
	go func() {
		_ = slow.SelectTopic("iki")
		done <- struct{}{}
	}()

	finishesWithin(t, time.Second, func() {
		for slow.Snapshot().Topic != "iki" {
			time.Sleep(5 * time.Millisecond)
		}
	})
	finishesWithin(t, 200*time.Millisecond, func() { assert.False(t, slow.Busy()) })
	finishesWithin(t, 200*time.Millisecond, func() { reg.Sweep(time.Hour) })
	finishesWithin(t, 200*time.Millisecond, func() {
		got, ok := reg.Get(other.ID())
		assert.True(t, ok)
		assert.Same(t, other, got)
	})

	close(release)
	<-done
	<-done
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"bir", "iki"}, topics)
}
