package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/yndnr/sessionlink/internal/core/domain"
	"github.com/yndnr/sessionlink/internal/storage"
	"github.com/yndnr/sessionlink/internal/telemetry/logger"
	"github.com/yndnr/sessionlink/internal/telemetry/metric"
	"github.com/yndnr/sessionlink/pkg/token"
)

// DefaultKey is the storage key the credential is persisted under.
const DefaultKey = "token"

// Listener receives session snapshots.
type Listener func(domain.Session)

// Store is the session state holder.
type Store struct {
	storage storage.Storage
	decoder token.Decoder
	key     string
	logger  logger.Logger
	metrics *metric.Registry

	// mu serializes SetSession, ClearSession, Init and Subscribe together
	// with the notifications they fire.
	mu      sync.Mutex
	current atomic.Pointer[domain.Session]

	// subMu guards subs only. It is never held while a listener runs, so a
	// listener may unsubscribe itself or others.
	subMu  sync.Mutex
	subs   map[uint64]Listener
	nextID uint64
}

// Option configures a Store.
type Option func(*Store)

// WithKey sets the storage key. Default: DefaultKey.
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics counts session transitions in reg.
func WithMetrics(reg *metric.Registry) Option {
	return func(s *Store) {
		s.metrics = reg
	}
}

// NewStore creates an empty store backed by st. Call Init to restore a
// persisted session.
func NewStore(st storage.Storage, dec token.Decoder, opts ...Option) *Store {
	s := &Store{
		storage: st,
		decoder: dec,
		key:     DefaultKey,
		logger:  logger.Nop(),
		subs:    make(map[uint64]Listener),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.current.Store(&domain.Session{})
	return s
}

// Current returns the session at the time of the call.
func (s *Store) Current() domain.Session {
	return *s.current.Load()
}

// SetSession decodes raw, persists it and makes it the current session.
//
// A credential that cannot be decoded yields domain.ErrCredentialMalformed
// and leaves both the current session and the persisted value untouched. If
// persisting fails the error is returned and the current session is kept.
func (s *Store) SetSession(ctx context.Context, raw string) error {
	claims, err := s.decoder.Decode(raw)
	if err != nil {
		return domain.ErrCredentialMalformed.WithCause(err)
	}
	next := domain.NewSession(raw, claims)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Set(ctx, s.key, raw); err != nil {
		return domain.ErrStorageFailure.WithDetails("persist credential").WithCause(err)
	}

	s.replace(next)
	s.metrics.ObserveSessionEvent(metric.EventLogin)
	s.logger.Info("session started", "subject", next.Subject())
	return nil
}

// ClearSession removes the persisted credential and resets the session to
// empty. Subscribers are notified even if the session was already empty.
func (s *Store) ClearSession(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Remove(ctx, s.key); err != nil {
		return domain.ErrStorageFailure.WithDetails("remove credential").WithCause(err)
	}

	prev := s.Current()
	s.replace(domain.Session{})
	s.metrics.ObserveSessionEvent(metric.EventLogout)
	s.logger.Info("session cleared", "subject", prev.Subject())
	return nil
}

// Init restores the persisted credential, if any.
//
// With nothing persisted the session stays empty and no subscriber is
// notified. A persisted credential is decoded and becomes the current
// session without being written back. A persisted value that no longer
// decodes yields domain.ErrCredentialMalformed and the session stays as is.
// That includes a value the storage layer cannot open, such as one sealed
// under a previous encryption key.
func (s *Store) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.storage.Get(ctx, s.key)
	if errors.Is(err, storage.ErrKeyNotFound) {
		s.logger.Debug("no persisted session", "key", s.key)
		return nil
	}
	if errors.Is(err, storage.ErrCorrupted) {
		return domain.ErrCredentialMalformed.
			WithDetails(fmt.Sprintf("persisted under %q is unreadable", s.key)).
			WithCause(err)
	}
	if err != nil {
		return domain.ErrStorageFailure.WithDetails("load credential").WithCause(err)
	}

	claims, err := s.decoder.Decode(raw)
	if err != nil {
		return domain.ErrCredentialMalformed.
			WithDetails(fmt.Sprintf("persisted under %q", s.key)).
			WithCause(err)
	}

	next := domain.NewSession(raw, claims)
	s.replace(next)
	s.metrics.ObserveSessionEvent(metric.EventRestore)
	s.logger.Info("session restored", "subject", next.Subject())
	return nil
}

// Subscribe registers fn. It is called immediately with the current session
// and again after every change. The returned function removes fn; calling it
// more than once, or from inside fn, is safe.
//
// fn runs while the store's mutation lock is held and must not call
// SetSession, ClearSession, Init or Subscribe.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	fn(s.Current())

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

// replace swaps in next and notifies subscribers in registration order.
// Caller holds s.mu.
func (s *Store) replace(next domain.Session) {
	s.current.Store(&next)

	for _, id := range s.subscriberIDs() {
		s.subMu.Lock()
		fn, ok := s.subs[id]
		s.subMu.Unlock()
		// Unsubscribed by an earlier listener in this round.
		if !ok {
			continue
		}
		fn(next)
	}
}

func (s *Store) subscriberIDs() []uint64 {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	ids := make([]uint64, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
