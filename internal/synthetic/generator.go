// Package synthetic generates plausible migration observations for seeding
// and tests. Every sampled point must satisfy a region index, typically the
// ocean mask.
package synthetic

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/samirrijal/seacorridor/internal/core/domain"
	"github.com/samirrijal/seacorridor/internal/core/ports"
)

// ErrSamplingExhausted is returned when no valid point was found within
// MaxAttempts tries.
var ErrSamplingExhausted = errors.New("sampling attempts exhausted")

const (
	minGroupID      = 100
	maxGroupID      = 999
	minIndividualID = 1000
	maxIndividualID = 9999
)

// Config controls the shape of the generated data.
type Config struct {
	Groups         int
	MinIndividuals int
	MaxIndividuals int
	Area           domain.Bounds
	MinJitter      float64
	MaxJitter      float64
	MaxAttempts    int
	Seed           uint64
}

// DefaultConfig mirrors the northern sea sampling area used for demos.
func DefaultConfig(groups int) Config {
	return Config{
		Groups:         groups,
		MinIndividuals: 4,
		MaxIndividuals: 8,
		Area:           domain.Bounds{MinLat: 0, MinLon: 0, MaxLat: 80, MaxLon: 178},
		MinJitter:      0.01,
		MaxJitter:      0.05,
		MaxAttempts:    10000,
		Seed:           1,
	}
}

func (c Config) validate() error {
	var errs []error
	if c.Groups < 0 || c.Groups > maxGroupID-minGroupID+1 {
		errs = append(errs, fmt.Errorf("groups must be in [0, %d]", maxGroupID-minGroupID+1))
	}
	if c.MinIndividuals < 1 || c.MaxIndividuals < c.MinIndividuals {
		errs = append(errs, errors.New("individuals range is empty"))
	}
	if c.Area.MaxLat < c.Area.MinLat || c.Area.MaxLon < c.Area.MinLon {
		errs = append(errs, errors.New("area is empty"))
	}
	if c.MinJitter < 0 || c.MaxJitter < c.MinJitter {
		errs = append(errs, errors.New("jitter range is empty"))
	}
	if c.MaxAttempts < 1 {
		errs = append(errs, errors.New("max attempts must be positive"))
	}
	if c.Groups*c.MaxIndividuals > maxIndividualID-minIndividualID+1 {
		errs = append(errs, errors.New("too many individuals for the id space"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, errors.Join(errs...))
	}
	return nil
}

// Dataset is the output of one generation.
type Dataset struct {
	Individuals  []domain.Individual
	Observations []domain.Observation
}

// Generator samples datasets. It is not safe for concurrent use.
type Generator struct {
	cfg   Config
	index ports.RegionIndex
	rng   *rand.Rand
}

// New creates a generator. index decides which points are acceptable.
func New(cfg Config, index ports.RegionIndex) (*Generator, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Generator{
		cfg:   cfg,
		index: index,
		rng:   rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
	}, nil
}

// Generate creates Groups groups. Each group gets one sea area per role and
// every individual is observed once per role, jittered north-east of the
// area point.
func (g *Generator) Generate(ctx context.Context) (*Dataset, error) {
	ds := &Dataset{}
	groupIDs := g.distinct(g.cfg.Groups, minGroupID, maxGroupID)
	individualIDs := g.distinct(g.cfg.Groups*g.cfg.MaxIndividuals, minIndividualID, maxIndividualID)

	for _, groupID := range groupIDs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n := g.cfg.MinIndividuals + g.rng.IntN(g.cfg.MaxIndividuals-g.cfg.MinIndividuals+1)
		members := make([]domain.Individual, n)
		for i := range members {
			members[i] = domain.Individual{
				ID:      individualIDs[0],
				GroupID: groupID,
				Species: domain.DefaultSpecies,
				Photo:   domain.DefaultPhoto,
			}
			individualIDs = individualIDs[1:]
		}
		ds.Individuals = append(ds.Individuals, members...)

		for _, role := range []domain.Role{domain.RoleStart, domain.RoleFinish} {
			area, err := g.areaPoint()
			if err != nil {
				return nil, fmt.Errorf("group %d %s area: %w", groupID, role, err)
			}
			for _, m := range members {
				loc, err := g.jitter(area)
				if err != nil {
					return nil, fmt.Errorf("individual %d %s: %w", m.ID, role, err)
				}
				ds.Observations = append(ds.Observations, domain.Observation{
					IndividualID: m.ID,
					GroupID:      groupID,
					Role:         role,
					Location:     loc,
				})
			}
		}
	}
	return ds, nil
}

func (g *Generator) areaPoint() (domain.GeoPoint, error) {
	a := g.cfg.Area
	return g.sample(func() domain.GeoPoint {
		return domain.GeoPoint{
			Lat: a.MinLat + g.rng.Float64()*(a.MaxLat-a.MinLat),
			Lon: a.MinLon + g.rng.Float64()*(a.MaxLon-a.MinLon),
		}
	})
}

func (g *Generator) jitter(base domain.GeoPoint) (domain.GeoPoint, error) {
	span := g.cfg.MaxJitter - g.cfg.MinJitter
	return g.sample(func() domain.GeoPoint {
		return domain.GeoPoint{
			Lat: base.Lat + g.cfg.MinJitter + g.rng.Float64()*span,
			Lon: base.Lon + g.cfg.MinJitter + g.rng.Float64()*span,
		}
	})
}

func (g *Generator) sample(draw func() domain.GeoPoint) (domain.GeoPoint, error) {
	for range g.cfg.MaxAttempts {
		if p := draw(); g.index.Contains(p) {
			return p, nil
		}
	}
	return domain.GeoPoint{}, ErrSamplingExhausted
}

// distinct draws n distinct ids from [lo, hi] in ascending draw order.
func (g *Generator) distinct(n int, lo, hi int64) []int64 {
	seen := make(map[int64]bool, n)
	out := make([]int64, 0, n)
	for len(out) < n {
		id := lo + g.rng.Int64N(hi-lo+1)
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
