package debate

import (
	"context"
	"sync"
	"time"

	"debatearena/locale"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Registry holds one Machine per browser session.
type Registry struct {
	mu          sync.Mutex
	sessions    map[string]*Machine
	gen         Generator
	defaultLang locale.Lang
	log         *zap.Logger
	now         func() time.Time
}

func NewRegistry(gen Generator, defaultLang locale.Lang, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		sessions:    make(map[string]*Machine),
		gen:         gen,
		defaultLang: defaultLang,
		log:         log,
		now:         time.Now,
	}
}

func (r *Registry) DefaultLang() locale.Lang { return r.defaultLang }

// Get returns the machine for id, if it exists.
func (r *Registry) Get(id string) (*Machine, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.sessions[id]
	return m, ok
}

// Create starts a new session with a fresh id.
func (r *Registry) Create(lang locale.Lang) *Machine {
	if lang == "" {
		lang = r.defaultLang
	}
	m := NewMachine(uuid.NewString(), lang, r.gen, r.log)
	m.now = r.now
	m.lastUsed = r.now()

	r.mu.Lock()
	r.sessions[m.ID()] = m
	count := len(r.sessions)
	r.mu.Unlock()

	r.log.Debug("session created", zap.String("session", m.ID()), zap.Int("active", count))
	return m
}

// GetOrCreate returns the machine for id, creating a new session when id is
// unknown. The returned machine's id may differ from the one asked for.
func (r *Registry) GetOrCreate(id string, lang locale.Lang) (*Machine, bool) {
	if m, ok := r.Get(id); ok {
		return m, false
	}
	return r.Create(lang), true
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep removes sessions untouched for longer than idle. Sessions with a call in
// flight are kept. It returns the number removed.
func (r *Registry) Sweep(idle time.Duration) int {
	cutoff := r.now().Add(-idle)

	// machines are inspected without r.mu held
	r.mu.Lock()
	candidates := make(map[string]*Machine, len(r.sessions))
	for id, m := range r.sessions {
		candidates[id] = m
	}
	r.mu.Unlock()

	var expired []string
	for id, m := range candidates {
		if m.Busy() || m.LastUsed().After(cutoff) {
			continue
		}
		expired = append(expired, id)
	}
	if len(expired) == 0 {
		return 0
	}

	r.mu.Lock()
	removed := 0
	for _, id := range expired {
		if r.sessions[id] == candidates[id] {
			delete(r.sessions, id)
			removed++
		}
	}
	active := len(r.sessions)
	r.mu.Unlock()

	if removed > 0 {
		r.log.Info("expired idle sessions", zap.Int("removed", removed), zap.Int("active", active))
	}
	return removed
}

// RunJanitor sweeps every interval until ctx is done.
func (r *Registry) RunJanitor(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(idle)
		}
	}
}
