package daily

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/TheRealTwizzy/raiderdle/internal/catalog"
	"github.com/TheRealTwizzy/raiderdle/internal/localday"
	"github.com/TheRealTwizzy/raiderdle/internal/rotation"
	"github.com/TheRealTwizzy/raiderdle/internal/seeded"
)

const (
	collectionItems = "items"
	collectionArcs  = "arcs"
)

// category is one game mode. Resampled categories pick by seeded index
// every day; rotating ones draw from an exhaustion pool.
type category struct {
	seedTag  string
	rotating bool
	build    func(ctx context.Context, w localday.Window) (any, error)
}

func (s *Service) registry() map[string]category {
	return map[string]category{
		"items":   {seedTag: "", build: s.itemsToday},
		"weapons": {seedTag: "weapons", build: s.weaponsToday},
		"arcs":    {rotating: true, build: s.arcsToday},
		"icons":   {seedTag: "icons", build: s.iconsToday},
	}
}

type ItemsToday struct {
	AllItems []catalog.Entry `json:"allItems"`
	Today    catalog.Entry   `json:"today"`
}

type WeaponsToday struct {
	AllWeapons []catalog.Entry `json:"allWeapons"`
	Today      WeaponPick      `json:"today"`
}

type WeaponPick struct {
	Name        string `json:"name"`
	ImgURL      string `json:"imgUrl"`
	Description string `json:"description"`
}

type ArcsToday struct {
	AllArcs []catalog.Entry `json:"allArcs"`
	Today   ArcPick         `json:"today"`
}

type ArcPick struct {
	Name   string `json:"name"`
	ImgURL string `json:"imgUrl"`
}

func pick(seed string, n int) (int, error) {
	idx, err := seeded.Select(seed, n)
	if errors.Is(err, seeded.ErrEmpty) {
		return 0, ErrNoEligibleEntries
	}
	return idx, err
}

func (s *Service) itemsToday(ctx context.Context, w localday.Window) (any, error) {
	all, err := s.catalog.FetchAll(ctx, catalog.Query{Collection: collectionItems})
	if err != nil {
		return nil, err
	}
	idx, err := pick(w.Day.Seed(""), len(all))
	if err != nil {
		return nil, err
	}
	s.log.Info("selected daily item", zap.String("id", all[idx].ID), zap.String("name", all[idx].Name))
	return ItemsToday{AllItems: all, Today: all[idx]}, nil
}

// LevelOneWeapons keeps the base tier of each weapon, named without its
// tier numeral.
func LevelOneWeapons(all []catalog.Entry) []catalog.Entry {
	out := make([]catalog.Entry, 0, len(all))
	for _, e := range all {
		if !strings.HasSuffix(e.ID, "-i") && !strings.HasSuffix(e.ID, "-rifle") {
			continue
		}
		e.Name = strings.TrimSuffix(e.Name, " I")
		out = append(out, e)
	}
	return out
}

func (s *Service) weaponsToday(ctx context.Context, w localday.Window) (any, error) {
	all, err := s.catalog.FetchAll(ctx, catalog.Query{
		Collection: collectionItems,
		Filter:     url.Values{"item_type": {"Weapon"}},
	})
	if err != nil {
		return nil, err
	}
	weapons := LevelOneWeapons(all)
	idx, err := pick(w.Day.Seed("weapons"), len(weapons))
	if err != nil {
		return nil, err
	}
	today := weapons[idx]
	return WeaponsToday{
		AllWeapons: weapons,
		Today: WeaponPick{
			Name:        today.Name,
			ImgURL:      today.Icon,
			Description: today.Description,
		},
	}, nil
}

func (s *Service) arcsToday(ctx context.Context, w localday.Window) (any, error) {
	all, err := s.catalog.FetchAll(ctx, catalog.Query{Collection: collectionArcs})
	if err != nil {
		return nil, err
	}
	arcs := make([]catalog.Entry, 0, len(all))
	candidates := make([]rotation.Candidate, 0, len(all))
	for _, e := range all {
		if !e.HasImage() {
			continue
		}
		arcs = append(arcs, e)
		candidates = append(candidates, rotation.Candidate{ID: e.ID, Image: e.Image})
	}

	rec, err := s.pools["arcs"].Select(ctx, w.Day.Key(), candidates)
	if errors.Is(err, rotation.ErrPoolExhausted) {
		return nil, fmt.Errorf("%w: %w", ErrNoEligibleEntries, err)
	}
	if err != nil {
		return nil, err
	}

	resp := ArcsToday{AllArcs: arcs}
	for _, e := range arcs {
		if e.ID == rec.ID {
			resp.Today = ArcPick{Name: e.Name, ImgURL: e.Image}
			break
		}
	}
	return resp, nil
}

func (s *Service) iconsToday(_ context.Context, w localday.Window) (any, error) {
	list, err := s.icons.List()
	if err != nil {
		return nil, err
	}
	idx, err := pick(w.Day.Seed("icons"), len(list))
	if err != nil {
		return nil, err
	}
	return list[idx], nil
}
