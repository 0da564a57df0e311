package debate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"debatearena/locale"
	"debatearena/models"
	"debatearena/services"

	"go.uber.org/zap"
)

var (
	ErrValidation    = errors.New("validation error")
	ErrBusy          = errors.New("a model call is already in progress")
	ErrWrongScreen   = errors.New("action not available on this screen")
	ErrStaleResponse = errors.New("response arrived after the session was reset")
	ErrCallConsumed  = errors.New("call already run")
)

// Generator produces model text for a prompt; structured asks for JSON output.
type Generator interface {
	Generate(ctx context.Context, prompt string, structured bool) (string, error)
}

// Machine owns one session and its screen transitions. All methods are safe for
// concurrent use; model calls run outside the lock.
type Machine struct {
	mu        sync.Mutex
	id        string
	state     models.Session
	gen       Generator
	token     uint64
	lastUsed  time.Time
	observers map[int]func(models.Session)
	nextObs   int
	seq       uint64 // last change handed out for delivery, guarded by mu

	// deliveries run in seq order without holding mu
	deliverMu   sync.Mutex
	deliverCond *sync.Cond
	delivered   uint64

	log *zap.Logger
	now func() time.Time
}

func NewMachine(id string, lang locale.Lang, gen Generator, log *zap.Logger) *Machine {
	if log == nil {
		log = zap.NewNop()
	}
	m := &Machine{
		id:        id,
		gen:       gen,
		observers: make(map[int]func(models.Session)),
		log:       log.With(zap.String("session", id)),
		now:       time.Now,
	}
	m.deliverCond = sync.NewCond(&m.deliverMu)
	m.state = models.Session{ID: id, Lang: string(lang), Screen: models.ScreenTopic}
	m.lastUsed = m.now()
	return m
}

func (m *Machine) ID() string { return m.id }

// Snapshot returns a copy of the current session.
func (m *Machine) Snapshot() models.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastUsed = m.now()
	return m.state.Clone()
}

func (m *Machine) LastUsed() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastUsed
}

// Busy reports whether a model call is outstanding.
func (m *Machine) Busy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.IsLoading
}

// Subscribe registers fn to receive a snapshot after every change. fn runs on the
// goroutine that made the change and must not mutate the machine synchronously.
func (m *Machine) Subscribe(fn func(models.Session)) (unsubscribe func()) {
	m.mu.Lock()
	id := m.nextObs
	m.nextObs++
	m.observers[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.observers, id)
		m.mu.Unlock()
	}
}

// update runs fn under the lock and notifies observers if fn reports a change.
// Observers see changes in the order they were made; a slow observer delays later
// notifications but never the lock.
func (m *Machine) update(fn func(s *models.Session) (changed bool, err error)) error {
	m.mu.Lock()
	m.lastUsed = m.now()
	changed, err := fn(&m.state)
	if !changed {
		m.mu.Unlock()
		return err
	}
	m.seq++
	seq := m.seq
	snapshot := m.state.Clone()
	observers := make([]func(models.Session), 0, len(m.observers))
	for _, fn := range m.observers {
		observers = append(observers, fn)
	}
	m.mu.Unlock()

	m.deliverMu.Lock()
	for m.delivered != seq-1 {
		m.deliverCond.Wait()
	}
	m.deliverMu.Unlock()

	for _, notify := range observers {
		notify(snapshot)
	}

	m.deliverMu.Lock()
	m.delivered = seq
	m.deliverCond.Broadcast()
	m.deliverMu.Unlock()
	return err
}

func (m *Machine) ui() locale.Strings {
	return locale.For(locale.Lang(m.state.Lang))
}

func (m *Machine) onTopicScreen(fn func(s *models.Session)) error {
	return m.update(func(s *models.Session) (bool, error) {
		if s.Screen != models.ScreenTopic {
			return false, fmt.Errorf("%w: %s", ErrWrongScreen, s.Screen)
		}
		fn(s)
		s.Error = ""
		return true, nil
	})
}

func (m *Machine) SelectTopic(value string) error {
	return m.onTopicScreen(func(s *models.Session) { s.Topic = value })
}

func (m *Machine) SetCustomTopic(text string) error {
	return m.onTopicScreen(func(s *models.Session) { s.CustomTopic = text })
}

func (m *Machine) SelectStance(stance models.Stance) error {
	return m.onTopicScreen(func(s *models.Session) { s.Stance = stance })
}

func (m *Machine) SelectLanguage(lang locale.Lang) error {
	return m.onTopicScreen(func(s *models.Session) { s.Lang = string(lang) })
}

// StartDebate moves to the debate screen once a topic and a stance are chosen.
func (m *Machine) StartDebate() error {
	return m.update(func(s *models.Session) (bool, error) {
		if s.Screen != models.ScreenTopic {
			return false, fmt.Errorf("%w: %s", ErrWrongScreen, s.Screen)
		}
		if s.ResolvedTopic() == "" || !s.Stance.Valid() {
			s.Error = m.ui().ValidationMissing
			return true, fmt.Errorf("%w: topic and stance are required", ErrValidation)
		}
		s.Messages = nil
		s.Report = nil
		s.ArgumentMap = ""
		s.Error = ""
		s.Screen = models.ScreenDebate
		m.log.Info("debate started", zap.String("topic", s.ResolvedTopic()), zap.String("stance", string(s.Stance)))
		return true, nil
	})
}

// SendMessage appends the user's message and returns the call that fetches the
// AI's reply. Whitespace-only text is a no-op and returns a nil call.
func (m *Machine) SendMessage(text string) (*Call, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	var call *Call
	err := m.update(func(s *models.Session) (bool, error) {
		if err := m.checkCallable(s, models.ScreenDebate); err != nil {
			return false, err
		}
		s.Messages = append(s.Messages, models.Message{Author: models.AuthorUser, Text: text})
		lang := locale.Lang(s.Lang)
		prompt := services.TurnPrompt(lang, s.ResolvedTopic(), s.Stance, s.Messages)
		call = m.begin(s, "turn", prompt, false, func(s *models.Session, reply string) {
			s.Messages = append(s.Messages, models.Message{Author: models.AuthorAI, Text: reply})
		})
		return true, nil
	})
	return call, err
}

// EndDebate returns the call that requests the coach report. The session moves to
// the report screen when the model answers, whether or not the answer decodes.
func (m *Machine) EndDebate() (*Call, error) {
	var call *Call
	err := m.update(func(s *models.Session) (bool, error) {
		if err := m.checkCallable(s, models.ScreenDebate); err != nil {
			return false, err
		}
		prompt := services.ReportPrompt(locale.Lang(s.Lang), s.Messages)
		call = m.begin(s, "report", prompt, true, func(s *models.Session, text string) {
			report, err := services.ParseReport(text)
			if err != nil {
				m.log.Warn("report did not decode, keeping raw text", zap.Error(err))
				s.Error = m.ui().ReportParseFailed
			}
			s.Report = &report
			s.Screen = models.ScreenReport
		})
		return true, nil
	})
	return call, err
}

// BuildArgumentMap returns the call that asks for a Mermaid diagram of the debate.
func (m *Machine) BuildArgumentMap() (*Call, error) {
	var call *Call
	err := m.update(func(s *models.Session) (bool, error) {
		if err := m.checkCallable(s, models.ScreenReport); err != nil {
			return false, err
		}
		prompt := services.ArgumentMapPrompt(locale.Lang(s.Lang), s.Messages)
		call = m.begin(s, "argument_map", prompt, false, func(s *models.Session, text string) {
			s.ArgumentMap = services.CleanArgumentMap(text)
		})
		return true, nil
	})
	return call, err
}

// NewDebate resets the session to the topic screen. A call still in flight is
// abandoned; its response is dropped when it arrives.
func (m *Machine) NewDebate() {
	_ = m.update(func(s *models.Session) (bool, error) {
		m.token++
		*s = models.Session{ID: s.ID, Lang: s.Lang, Screen: models.ScreenTopic}
		return true, nil
	})
}

func (m *Machine) checkCallable(s *models.Session, screen models.Screen) error {
	if s.Screen != screen {
		return fmt.Errorf("%w: %s", ErrWrongScreen, s.Screen)
	}
	if s.IsLoading {
		return ErrBusy
	}
	return nil
}

// begin must be called with the lock held.
func (m *Machine) begin(s *models.Session, kind, prompt string, structured bool, apply func(*models.Session, string)) *Call {
	m.token++
	s.IsLoading = true
	s.Error = ""
	return &Call{
		m:          m,
		token:      m.token,
		kind:       kind,
		prompt:     prompt,
		structured: structured,
		apply:      apply,
	}
}

// describe turns a generator error into the text shown to the user.
func (m *Machine) describe(err error) string {
	str := m.ui()
	var apiErr *services.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Kind == services.MalformedResponse:
			return str.MalformedResponse
		case apiErr.Message != "":
			return apiErr.Message
		case apiErr.Status != 0:
			return fmt.Sprintf(str.APIStatusFormat, apiErr.Status, http.StatusText(apiErr.Status))
		}
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return str.GenericError
}

// Call is a pending model request created by a transition. Run performs it and
// applies the outcome to the session.
type Call struct {
	m          *Machine
	token      uint64
	kind       string
	prompt     string
	structured bool
	apply      func(*models.Session, string)
	ran        atomic.Bool
}

func (c *Call) Kind() string   { return c.kind }
func (c *Call) Prompt() string { return c.prompt }

// Run blocks for the model round trip. It returns the generator's error, or
// ErrStaleResponse when the session was reset while the call was in flight.
func (c *Call) Run(ctx context.Context) error {
	if !c.ran.CompareAndSwap(false, true) {
		return ErrCallConsumed
	}
	started := time.Now()
	text, genErr := c.m.gen.Generate(ctx, c.prompt, c.structured)

	stale := false
	_ = c.m.update(func(s *models.Session) (bool, error) {
		if c.token != c.m.token {
			stale = true
			return false, nil
		}
		s.IsLoading = false
		if genErr != nil {
			s.Error = c.m.describe(genErr)
			return true, nil
		}
		// an empty answer leaves the session as it was before the call
		if text != "" {
			c.apply(s, text)
		}
		return true, nil
	})

	fields := []zap.Field{zap.String("kind", c.kind), zap.Duration("elapsed", time.Since(started))}
	switch {
	case stale:
		c.m.log.Info("dropping response for reset session", fields...)
		return ErrStaleResponse
	case genErr != nil:
		c.m.log.Warn("model call failed", append(fields, zap.Error(genErr))...)
		return genErr
	default:
		c.m.log.Debug("model call finished", fields...)
		return nil
	}
}
