// Package matcher scores content items against award criteria by keyword
// overlap. Everything here is pure and safe for concurrent use.
package matcher

import (
	"fmt"
	"math"
	"sort"

	"github.com/okian/laurel/internal/domain/model"
	"github.com/okian/laurel/internal/domain/taxonomy"
	"github.com/okian/laurel/internal/domain/types"
)

// DefaultThreshold is the similarity at or above which a criterion counts
// as matched.
const DefaultThreshold = 0.15

// Option configures a Matcher.
type Option func(*Matcher)

// WithThreshold overrides DefaultThreshold. Values outside (0,1] are ignored.
func WithThreshold(threshold float64) Option {
	return func(m *Matcher) {
		if threshold > 0 && threshold <= 1 {
			m.threshold = threshold
		}
	}
}

type criterion struct {
	key       model.CriterionKey
	awardName string
	keywords  map[string]struct{}
}

// Matcher holds the tokenized criterion keyword sets of a taxonomy.
type Matcher struct {
	threshold  float64
	criteria   []criterion
	awardOrder []string
	awardNames map[string]string
}

// New indexes every criterion of tax.
func New(tax *taxonomy.Taxonomy, opts ...Option) (*Matcher, error) {
	if tax == nil {
		return nil, fmt.Errorf("matcher: nil taxonomy")
	}
	m := &Matcher{threshold: DefaultThreshold, awardNames: map[string]string{}}
	for _, opt := range opts {
		opt(m)
	}
	for _, a := range tax.Awards() {
		m.awardOrder = append(m.awardOrder, a.Key)
		m.awardNames[a.Key] = a.DisplayName
		for _, c := range a.Criteria {
			kw := make(map[string]struct{}, len(c.Keywords))
			for _, k := range c.Keywords {
				for t := range Tokenize(k) {
					kw[t] = struct{}{}
				}
			}
			if len(kw) == 0 {
				return nil, fmt.Errorf("matcher: criterion %s has no usable keywords", c.Key())
			}
			m.criteria = append(m.criteria, criterion{key: c.Key(), awardName: a.DisplayName, keywords: kw})
		}
	}
	return m, nil
}

// Threshold returns the configured match threshold.
func (m *Matcher) Threshold() float64 { return m.threshold }

// Match scores item against every criterion, in taxonomy order.
func (m *Matcher) Match(item model.ContentItem) []model.MatchResult {
	return m.MatchKeywords(item.Ref(), Tokenize(item.Text))
}

// MatchKeywords scores a pre-tokenized keyword set.
func (m *Matcher) MatchKeywords(ref model.ContentRef, keywords map[string]struct{}) []model.MatchResult {
	out := make([]model.MatchResult, 0, len(m.criteria))
	for _, c := range m.criteria {
		sim := Jaccard(c.keywords, keywords)
		out = append(out, model.MatchResult{
			Content:         ref,
			AwardKey:        c.key.AwardKey,
			Criterion:       c.key.Criterion,
			Similarity:      sim,
			Confidence:      Confidence(sim),
			MatchedKeywords: intersection(c.keywords, keywords),
			Matched:         len(keywords) > 0 && sim >= m.threshold,
		})
	}
	return out
}

// Matched filters results down to those at or above the threshold.
func Matched(results []model.MatchResult) []model.MatchResult {
	out := make([]model.MatchResult, 0, len(results))
	for _, r := range results {
		if r.Matched {
			out = append(out, r)
		}
	}
	return out
}

// SupportedAwards reports each award with at least one matched criterion
// and its best confidence, in taxonomy order.
func (m *Matcher) SupportedAwards(results []model.MatchResult) []types.AwardSupport {
	best := map[string]int{}
	for _, r := range results {
		if !r.Matched {
			continue
		}
		if c, ok := best[r.AwardKey]; !ok || r.Confidence > c {
			best[r.AwardKey] = r.Confidence
		}
	}
	out := make([]types.AwardSupport, 0, len(best))
	for _, key := range m.awardOrder {
		if c, ok := best[key]; ok {
			out = append(out, types.AwardSupport{AwardKey: key, AwardName: m.awardNames[key], Confidence: c})
		}
	}
	return out
}

// KeywordsFound is the sorted union of matched keywords of matched results.
func KeywordsFound(results []model.MatchResult) []string {
	set := map[string]struct{}{}
	for _, r := range results {
		if !r.Matched {
			continue
		}
		for _, k := range r.MatchedKeywords {
			set[k] = struct{}{}
		}
	}
	return sortedKeys(set)
}

// MaxConfidence is the highest confidence among matched results, or 0.
func MaxConfidence(results []model.MatchResult) int {
	max := 0
	for _, r := range results {
		if r.Matched && r.Confidence > max {
			max = r.Confidence
		}
	}
	return max
}

// Jaccard returns |a∩b| / |a∪b|; two empty sets score 0.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	inter := 0
	for k := range small {
		if _, ok := large[k]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

// Confidence converts a similarity to a 0-100 integer.
func Confidence(similarity float64) int {
	return int(math.Round(similarity * 100))
}

func intersection(a, b map[string]struct{}) []string {
	out := []string{}
	for k := range a {
		if _, ok := b[k]; ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
