package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/jrmnl/yandex-techstore/catalog"
	"github.com/jrmnl/yandex-techstore/promo"
)

var ErrSessionNotFound = errors.New("сессия не найдена")

// EvictionSchedule is how often idle sessions are looked for.
const EvictionSchedule = "@every 1m"

type Registry struct {
	mu        sync.RWMutex
	sessions  map[string]*Session
	store     *catalog.Store
	promos    *promo.Table
	publisher Publisher
	ttl       time.Duration
	now       func() time.Time
	sched     *cron.Cron
}

func NewRegistry(store *catalog.Store, promos *promo.Table, publisher Publisher, ttl time.Duration) *Registry {
	return &Registry{
		sessions:  map[string]*Session{},
		store:     store,
		promos:    promos,
		publisher: publisher,
		ttl:       ttl,
		now:       time.Now,
	}
}

func (r *Registry) Create() *Session {
	s := New(uuid.NewString(), r.store, r.promos, r.publisher)
	s.now = r.now
	s.lastSeen = r.now()

	r.mu.Lock()
	r.sessions[s.id] = s
	n := len(r.sessions)
	r.mu.Unlock()

	zap.L().Debug("Создана сессия", zap.String("session", s.id), zap.Int("sessions", n))
	return s
}

func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Evict drops sessions idle for longer than the TTL and returns how many
// were removed.
func (r *Registry) Evict() int {
	deadline := r.now().Add(-r.ttl)

	r.mu.Lock()
	defer r.mu.Unlock()
	evicted := 0
	for id, s := range r.sessions {
		if s.LastSeen().Before(deadline) {
			delete(r.sessions, id)
			evicted++
		}
	}
	if evicted > 0 {
		zap.L().Info("Удалены неактивные сессии", zap.Int("evicted", evicted), zap.Int("sessions", len(r.sessions)))
	}
	return evicted
}

// Start schedules eviction. A zero TTL disables it.
func (r *Registry) Start() error {
	if r.ttl <= 0 {
		return nil
	}
	r.sched = cron.New()
	_, err := r.sched.AddFunc(EvictionSchedule, func() {
		defer func() {
			if err := recover(); err != nil {
				zap.S().Error(err)
			}
		}()
		r.Evict()
	})
	if err != nil {
		return err
	}
	r.sched.Start()
	return nil
}

// Stop halts the scheduler and waits for a running eviction to finish.
func (r *Registry) Stop() {
	if r.sched == nil {
		return
	}
	<-r.sched.Stop().Done()
}

// Run starts eviction and stops it when ctx is done.
func (r *Registry) Run(ctx context.Context) error {
	if err := r.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	r.Stop()
	return nil
}
