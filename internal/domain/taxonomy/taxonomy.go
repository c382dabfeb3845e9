// Package taxonomy holds the immutable award and criterion configuration the
// engine matches content against.
package taxonomy

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/okian/laurel/internal/domain/errkind"
	"github.com/okian/laurel/internal/domain/model"
)

// Sentinel errors for taxonomy construction and lookups.
var (
	ErrInvalidTaxonomy  = errors.New("invalid taxonomy")
	ErrUnknownAward     = errors.New("unknown award")
	ErrUnknownCriterion = errors.New("unknown criterion")
)

// Criterion is a single qualifying condition of an award.
type Criterion struct {
	AwardKey     string   `koanf:"-" json:"award_key"`
	Name         string   `koanf:"name" json:"name"`
	Keywords     []string `koanf:"keywords" json:"keywords"`
	Suggestions  []string `koanf:"suggestions" json:"suggestions,omitempty"`
	HighPriority bool     `koanf:"high_priority" json:"high_priority,omitempty"`
}

// Key returns the criterion's state key.
func (c Criterion) Key() model.CriterionKey {
	return model.CriterionKey{AwardKey: c.AwardKey, Criterion: c.Name}
}

// Award is a named award category with an ordered set of criteria.
type Award struct {
	Key         string      `koanf:"key" json:"key"`
	DisplayName string      `koanf:"display_name" json:"display_name"`
	Criteria    []Criterion `koanf:"criteria" json:"criteria"`
}

// Taxonomy is read-only after New returns; accessors hand out copies.
type Taxonomy struct {
	awards   []Award
	byAward  map[string]int
	byKey    map[model.CriterionKey]Criterion
	ordering []model.CriterionKey
}

// New validates awards and builds a Taxonomy.
func New(awards []Award) (*Taxonomy, error) {
	if len(awards) == 0 {
		return nil, fmt.Errorf("%w: no awards", ErrInvalidTaxonomy)
	}
	t := &Taxonomy{
		awards:  make([]Award, 0, len(awards)),
		byAward: make(map[string]int, len(awards)),
		byKey:   make(map[model.CriterionKey]Criterion),
	}
	for _, a := range awards {
		a.Key = strings.TrimSpace(a.Key)
		if a.Key == "" {
			return nil, fmt.Errorf("%w: award with empty key", ErrInvalidTaxonomy)
		}
		if _, dup := t.byAward[a.Key]; dup {
			return nil, fmt.Errorf("%w: duplicate award %q", ErrInvalidTaxonomy, a.Key)
		}
		if len(a.Criteria) == 0 {
			return nil, fmt.Errorf("%w: award %q has no criteria", ErrInvalidTaxonomy, a.Key)
		}
		if a.DisplayName == "" {
			a.DisplayName = a.Key
		}
		criteria := make([]Criterion, 0, len(a.Criteria))
		for _, c := range a.Criteria {
			c, err := normalizeCriterion(a.Key, c)
			if err != nil {
				return nil, err
			}
			if _, dup := t.byKey[c.Key()]; dup {
				return nil, fmt.Errorf("%w: duplicate criterion %q in award %q", ErrInvalidTaxonomy, c.Name, a.Key)
			}
			t.byKey[c.Key()] = c
			t.ordering = append(t.ordering, c.Key())
			criteria = append(criteria, c)
		}
		a.Criteria = criteria
		t.byAward[a.Key] = len(t.awards)
		t.awards = append(t.awards, a)
	}
	return t, nil
}

func normalizeCriterion(awardKey string, c Criterion) (Criterion, error) {
	c.AwardKey = awardKey
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return c, fmt.Errorf("%w: award %q has a criterion without a name", ErrInvalidTaxonomy, awardKey)
	}
	seen := make(map[string]struct{}, len(c.Keywords))
	keywords := make([]string, 0, len(c.Keywords))
	for _, kw := range c.Keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if strings.IndexFunc(kw, unicode.IsSpace) >= 0 {
			return c, fmt.Errorf("%w: keyword %q of %s/%s must be a single term", ErrInvalidTaxonomy, kw, awardKey, c.Name)
		}
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		keywords = append(keywords, kw)
	}
	if len(keywords) == 0 {
		return c, fmt.Errorf("%w: criterion %s/%s has no keywords", ErrInvalidTaxonomy, awardKey, c.Name)
	}
	c.Keywords = keywords
	c.Suggestions = append([]string(nil), c.Suggestions...)
	return c, nil
}

// Awards returns every award in configuration order.
func (t *Taxonomy) Awards() []Award {
	out := make([]Award, len(t.awards))
	for i, a := range t.awards {
		out[i] = copyAward(a)
	}
	return out
}

// Award looks up an award by key.
func (t *Taxonomy) Award(key string) (Award, error) {
	i, ok := t.byAward[key]
	if !ok {
		return Award{}, errkind.WrapKind("taxonomy.award", errkind.Validation, fmt.Errorf("%w: %q", ErrUnknownAward, key))
	}
	return copyAward(t.awards[i]), nil
}

// Criterion looks up a criterion by key.
func (t *Taxonomy) Criterion(key model.CriterionKey) (Criterion, error) {
	if _, ok := t.byAward[key.AwardKey]; !ok {
		return Criterion{}, errkind.WrapKind("taxonomy.criterion", errkind.Validation, fmt.Errorf("%w: %q", ErrUnknownAward, key.AwardKey))
	}
	c, ok := t.byKey[key]
	if !ok {
		return Criterion{}, errkind.WrapKind("taxonomy.criterion", errkind.Validation, fmt.Errorf("%w: %q in award %q", ErrUnknownCriterion, key.Criterion, key.AwardKey))
	}
	return copyCriterion(c), nil
}

// Check reports a Validation error for keys outside the taxonomy.
func (t *Taxonomy) Check(key model.CriterionKey) error {
	_, err := t.Criterion(key)
	return err
}

// Keys returns every criterion key in configuration order.
func (t *Taxonomy) Keys() []model.CriterionKey {
	return append([]model.CriterionKey(nil), t.ordering...)
}

// CriterionCount returns the number of criteria of an award, 0 if unknown.
func (t *Taxonomy) CriterionCount(awardKey string) int {
	i, ok := t.byAward[awardKey]
	if !ok {
		return 0
	}
	return len(t.awards[i].Criteria)
}

func copyAward(a Award) Award {
	cs := make([]Criterion, len(a.Criteria))
	for i, c := range a.Criteria {
		cs[i] = copyCriterion(c)
	}
	a.Criteria = cs
	return a
}

func copyCriterion(c Criterion) Criterion {
	c.Keywords = append([]string(nil), c.Keywords...)
	c.Suggestions = append([]string(nil), c.Suggestions...)
	return c
}
