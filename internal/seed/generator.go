// Package seed generates synthetic documents and events from the award
// taxonomy, writes them into a content source and drives load against a
// running server.
package seed

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/laurel/internal/adapters/content"
	"github.com/okian/laurel/internal/domain/model"
	"github.com/okian/laurel/internal/domain/taxonomy"
	"github.com/okian/laurel/pkg/logger"
)

// Defaults for Generator.
const (
	DefaultEventRatio    = 0.4
	DefaultArchivedRatio = 0.05
	DefaultNoiseRatio    = 0.15

	minKeywords = 2
	maxKeywords = 3
	spread      = 90 * 24 * time.Hour
)

var fillers = []string{
	"annual", "report", "campus", "faculty", "students", "program", "workshop",
	"summary", "office", "initiative", "session", "meeting", "update", "review",
	"spring", "autumn", "overview", "team", "plan", "notes",
}

// Generator builds drafts whose text mixes criterion keywords with filler
// words, so a share of them match and the rest do not.
type Generator struct {
	tax           *taxonomy.Taxonomy
	rng           *rand.Rand
	now           func() time.Time
	newID         func() string
	eventRatio    float64
	archivedRatio float64
	noiseRatio    float64
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithSeed makes generation reproducible.
func WithSeed(seed uint64) GeneratorOption {
	return func(g *Generator) {
		g.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
		n := 0
		g.newID = func() string {
			n++
			return fmt.Sprintf("seed-%d-%d", seed, n)
		}
	}
}

// WithEventRatio sets the share of generated events.
func WithEventRatio(r float64) GeneratorOption {
	return func(g *Generator) {
		if r >= 0 && r <= 1 {
			g.eventRatio = r
		}
	}
}

// WithArchivedRatio sets the share of generated items marked archived.
func WithArchivedRatio(r float64) GeneratorOption {
	return func(g *Generator) {
		if r >= 0 && r <= 1 {
			g.archivedRatio = r
		}
	}
}

// WithNoiseRatio sets the share of items carrying no criterion keyword.
func WithNoiseRatio(r float64) GeneratorOption {
	return func(g *Generator) {
		if r >= 0 && r <= 1 {
			g.noiseRatio = r
		}
	}
}

// WithClock sets the reference time creation dates are spread behind.
func WithClock(now func() time.Time) GeneratorOption {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// NewGenerator creates a generator over tax.
func NewGenerator(tax *taxonomy.Taxonomy, opts ...GeneratorOption) (*Generator, error) {
	if tax == nil {
		return nil, fmt.Errorf("seed: nil taxonomy")
	}
	g := &Generator{
		tax:           tax,
		rng:           rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		now:           time.Now,
		newID:         uuid.NewString,
		eventRatio:    DefaultEventRatio,
		archivedRatio: DefaultArchivedRatio,
		noiseRatio:    DefaultNoiseRatio,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Generate returns n drafts. The context is checked between items.
func (g *Generator) Generate(ctx context.Context, n int) ([]content.Draft, error) {
	logger.Get().Info(ctx, "generating seed content", logger.Int("count", n))
	awards := g.tax.Awards()
	out := make([]content.Draft, 0, n)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled during generation: %w", err)
		}
		out = append(out, g.draft(awards))
	}
	return out, nil
}

func (g *Generator) draft(awards []taxonomy.Award) content.Draft {
	d := content.Draft{
		Kind:      model.KindDocument,
		ID:        g.newID(),
		Status:    model.StatusActive,
		CreatedAt: g.now().Add(-time.Duration(g.rng.Int64N(int64(spread)))).UTC().Truncate(time.Second),
	}
	if g.rng.Float64() < g.eventRatio {
		d.Kind = model.KindEvent
	}
	if g.rng.Float64() < g.archivedRatio {
		d.Status = model.StatusArchived
	}

	if g.rng.Float64() < g.noiseRatio || len(awards) == 0 {
		d.Title = g.words(fillers, 3)
		d.Description = g.words(fillers, 6)
		return d
	}

	award := awards[g.rng.IntN(len(awards))]
	c := award.Criteria[g.rng.IntN(len(award.Criteria))]
	kws := g.words(c.Keywords, minKeywords+g.rng.IntN(maxKeywords-minKeywords+1))
	d.Title = strings.Join([]string{kws, g.words(fillers, 1)}, " ")
	d.Description = g.words(fillers, 1)
	return d
}

// words picks n distinct words from pool, or all of them when n is larger.
func (g *Generator) words(pool []string, n int) string {
	if n > len(pool) {
		n = len(pool)
	}
	idx := g.rng.Perm(len(pool))[:n]
	out := make([]string, n)
	for i, j := range idx {
		out[i] = pool[j]
	}
	return strings.Join(out, " ")
}
