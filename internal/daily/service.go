// Package daily assembles the per-day answers for every game mode. A Service
// owns all process-wide state: the response cache, the rotation pools and
// the word list.
package daily

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/TheRealTwizzy/raiderdle/internal/catalog"
	"github.com/TheRealTwizzy/raiderdle/internal/dailycache"
	"github.com/TheRealTwizzy/raiderdle/internal/icons"
	"github.com/TheRealTwizzy/raiderdle/internal/localday"
	"github.com/TheRealTwizzy/raiderdle/internal/rotation"
	"github.com/TheRealTwizzy/raiderdle/internal/wordle"
)

var (
	ErrNoEligibleEntries = errors.New("no eligible entries today")
	ErrUnknownCategory   = errors.New("unknown category")
)

// Catalog fetches a whole collection from the remote dataset.
type Catalog interface {
	FetchAll(ctx context.Context, q catalog.Query) ([]catalog.Entry, error)
}

// IconSource lists the locally hosted icons.
type IconSource interface {
	List() ([]icons.Icon, error)
}

type Config struct {
	Catalog Catalog
	Icons   IconSource
	Store   rotation.Store
	Words   *wordle.Vocabulary
	Log     *zap.Logger
	// Now defaults to time.Now.
	Now         func() time.Time
	PoolOptions []rotation.Option

	// BuildTimeout bounds one shared payload build. It defaults to
	// DefaultBuildTimeout.
	BuildTimeout time.Duration
}

// DefaultBuildTimeout bounds a payload build when Config leaves it unset.
const DefaultBuildTimeout = 2 * time.Minute

type Service struct {
	catalog Catalog
	icons   IconSource
	words   *wordle.Vocabulary
	log     *zap.Logger
	now     func() time.Time

	buildTimeout time.Duration

	cache      *dailycache.Cache
	pools      map[string]*rotation.Pool
	categories map[string]category
	aliases    map[string]string
}

func New(cfg Config) *Service {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	if cfg.BuildTimeout <= 0 {
		cfg.BuildTimeout = DefaultBuildTimeout
	}
	s := &Service{
		catalog:      cfg.Catalog,
		icons:        cfg.Icons,
		words:        cfg.Words,
		log:          cfg.Log,
		now:          cfg.Now,
		buildTimeout: cfg.BuildTimeout,
		cache:        dailycache.New(cfg.Now),
		pools:        map[string]*rotation.Pool{},
		aliases: map[string]string{
			"weaponsNew": "weapons",
			"arcsNew":    "arcs",
		},
	}
	s.categories = s.registry()
	for name, c := range s.categories {
		if c.rotating {
			s.pools[name] = rotation.NewPool(name, cfg.Store, cfg.Log, cfg.PoolOptions...)
		}
	}
	return s
}

// Categories lists the canonical category names served by Today.
func (s *Service) Categories() []string {
	names := make([]string, 0, len(s.categories))
	for name := range s.categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Today returns the encoded daily payload of category for a client at
// offset minutes from UTC. Payloads are cached until the client's next local
// midnight.
func (s *Service) Today(ctx context.Context, name string, offset int) ([]byte, error) {
	if canonical, ok := s.aliases[name]; ok {
		name = canonical
	}
	c, ok := s.categories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, name)
	}

	window := localday.Resolve(s.now(), offset)
	key := dailycache.Key{Category: name, Day: window.Day, Offset: window.Offset}
	return s.cache.Fill(ctx, key, window.Expiry, func(ctx context.Context) ([]byte, error) {
		ctx, cancel := context.WithTimeout(ctx, s.buildTimeout)
		defer cancel()

		s.log.Debug("building daily payload",
			zap.String("category", name),
			zap.Stringer("day", window.Day),
			zap.Int("offset", window.Offset),
			zap.String("seed", window.Day.Seed(c.seedTag)))

		v, err := c.build(ctx, window)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	})
}

// Listing returns the full, unfiltered collection. It is not cached.
func (s *Service) Listing(ctx context.Context, collection string) ([]catalog.Entry, error) {
	switch collection {
	case collectionItems, collectionArcs:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, collection)
	}
	return s.catalog.FetchAll(ctx, catalog.Query{Collection: collection})
}

// Icons lists the local icon directory.
func (s *Service) Icons() ([]icons.Icon, error) {
	return s.icons.List()
}

// PruneCache drops expired payloads and reports how many went.
func (s *Service) PruneCache() int {
	return s.cache.Prune()
}

// RotationState exposes a copy of a rotating category's pool.
func (s *Service) RotationState(ctx context.Context, name string) (*rotation.State, error) {
	p, ok := s.pools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, name)
	}
	return p.Snapshot(ctx)
}
