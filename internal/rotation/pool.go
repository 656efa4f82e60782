// Package rotation runs the exhaustion pool: every eligible entry is shown
// exactly once before any entry is shown again.
package rotation

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"
)

var (
	// ErrPoolExhausted means no id left in the pool can currently be shown.
	ErrPoolExhausted = errors.New("rotation: no displayable entries in pool")
	// ErrStateUnavailable wraps store read failures other than a missing
	// document.
	ErrStateUnavailable = errors.New("rotation: state unavailable")
)

// Store persists one opaque JSON document per category. LoadState returns
// a nil document and nil error when nothing has been saved yet.
type Store interface {
	LoadState(ctx context.Context, category string) ([]byte, error)
	SaveState(ctx context.Context, category string, doc []byte) error
}

// Candidate is an eligible entry from the latest catalog fetch.
type Candidate struct {
	ID    string
	Image string
}

func (c Candidate) displayable() bool {
	return strings.TrimSpace(c.Image) != ""
}

type Option func(*Pool)

// WithIntN replaces the draw source. Draws need not be reproducible; tests
// use this to make them so.
func WithIntN(intn func(n int) int) Option {
	return func(p *Pool) { p.intn = intn }
}

// Pool owns the rotation state of one category. Selections for a category
// are serialised so that concurrent first requests of a day cannot both
// draw.
type Pool struct {
	category string
	store    Store
	log      *zap.Logger
	intn     func(n int) int

	mu    sync.Mutex
	state *State
}

func NewPool(category string, store Store, log *zap.Logger, opts ...Option) *Pool {
	if log == nil {
		log = zap.NewNop()
	}
	p := &Pool{
		category: category,
		store:    store,
		log:      log.With(zap.String("category", category)),
		intn:     rand.IntN,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Select returns the record for dayKey, drawing a new one when the day has
// none or its stored pick is no longer among the eligible candidates.
func (p *Pool) Select(ctx context.Context, dayKey string, eligible []Candidate) (Record, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureLoaded(ctx); err != nil {
		return Record{}, err
	}

	fresh := make(map[string]Candidate, len(eligible))
	for _, c := range eligible {
		if c.displayable() {
			fresh[c.ID] = c
		}
	}

	if rec, ok := p.state.History[dayKey]; ok {
		if _, valid := fresh[rec.ID]; valid && strings.TrimSpace(rec.Image) != "" {
			return rec, nil
		}
		p.log.Warn("stored selection no longer displayable, re-rolling",
			zap.String("day", dayKey),
			zap.String("id", rec.ID))
	}

	next := p.state.clone()
	picked, err := p.draw(next, eligible, fresh)
	if err != nil {
		return Record{}, err
	}

	rec := Record{ID: picked.ID, Image: picked.Image}
	next.History[dayKey] = rec
	p.state = next
	p.log.Info("selected entry",
		zap.String("day", dayKey),
		zap.String("id", rec.ID),
		zap.Int("available", len(next.AvailableIDs)),
		zap.Int("shown", len(next.ShownIDs)))

	p.persist(context.WithoutCancel(ctx), next)
	return rec, nil
}

func (p *Pool) draw(s *State, eligible []Candidate, fresh map[string]Candidate) (Candidate, error) {
	if len(s.AvailableIDs) == 0 && len(s.ShownIDs) == 0 {
		for _, c := range eligible {
			if c.displayable() && !slices.Contains(s.AvailableIDs, c.ID) {
				s.AvailableIDs = append(s.AvailableIDs, c.ID)
			}
		}
		p.log.Info("initialised pool", zap.Int("size", len(s.AvailableIDs)))
	}

	reset := false
	for {
		if len(s.AvailableIDs) == 0 {
			if reset || len(s.ShownIDs) == 0 {
				return Candidate{}, ErrPoolExhausted
			}
			p.log.Info("pool exhausted, starting new cycle", zap.Int("size", len(s.ShownIDs)))
			s.AvailableIDs, s.ShownIDs = s.ShownIDs, []string{}
			reset = true
		}

		i := p.intn(len(s.AvailableIDs))
		id := s.AvailableIDs[i]
		s.AvailableIDs = slices.Delete(s.AvailableIDs, i, i+1)

		if c, ok := fresh[id]; ok {
			s.ShownIDs = append(s.ShownIDs, id)
			return c, nil
		}
		p.log.Info("evicting id without displayable entry", zap.String("id", id))
	}
}

func (p *Pool) ensureLoaded(ctx context.Context) error {
	if p.state != nil {
		return nil
	}
	doc, err := p.store.LoadState(ctx, p.category)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStateUnavailable, err)
	}
	if doc == nil {
		p.state = newState()
		return nil
	}
	s, err := decodeState(doc)
	if err != nil {
		p.log.Warn("discarding unreadable rotation state", zap.Error(err))
		s = newState()
	}
	p.state = s
	return nil
}

// persist flushes s. A failed flush leaves the in-memory state ahead of the
// durable copy; the selection is still served.
func (p *Pool) persist(ctx context.Context, s *State) {
	doc, err := s.encode()
	if err == nil {
		err = p.store.SaveState(ctx, p.category, doc)
	}
	if err != nil {
		p.log.Error("failed to persist rotation state", zap.Error(err))
	}
}

// Snapshot returns a copy of the in-memory state, loading it if needed.
func (p *Pool) Snapshot(ctx context.Context) (*State, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return p.state.clone(), nil
}
