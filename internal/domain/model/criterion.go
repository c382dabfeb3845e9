package model

import "time"

// CriterionKey addresses one criterion of one award.
type CriterionKey struct {
	AwardKey  string `json:"award_key"`
	Criterion string `json:"criterion"`
}

func (k CriterionKey) String() string { return k.AwardKey + "/" + k.Criterion }

// CriterionState is the persisted satisfaction record of a criterion.
//
// Satisfied equals the human-set value while Override is true, and
// SatisfiedBy != nil otherwise.
type CriterionState struct {
	CriterionKey
	Satisfied   bool        `json:"satisfied"`
	Override    bool        `json:"override"`
	SatisfiedBy *ContentRef `json:"satisfied_by,omitempty"`
	UpdatedAt   time.Time   `json:"updated_at"`
	// Version increases on every persisted change.
	Version int64 `json:"-"`
}

// DefaultState is the record of a criterion no analysis has touched.
func DefaultState(key CriterionKey) CriterionState {
	return CriterionState{CriterionKey: key}
}

// SameContent reports whether two states carry identical values, ignoring
// timestamps and versions.
func (s CriterionState) SameContent(o CriterionState) bool {
	if s.CriterionKey != o.CriterionKey || s.Satisfied != o.Satisfied || s.Override != o.Override {
		return false
	}
	switch {
	case s.SatisfiedBy == nil && o.SatisfiedBy == nil:
		return true
	case s.SatisfiedBy == nil || o.SatisfiedBy == nil:
		return false
	default:
		return *s.SatisfiedBy == *o.SatisfiedBy
	}
}

// Clone returns a deep copy.
func (s CriterionState) Clone() CriterionState {
	if s.SatisfiedBy != nil {
		ref := *s.SatisfiedBy
		s.SatisfiedBy = &ref
	}
	return s
}

// MutateFunc computes the next state from the current one. Returning
// changed=false leaves the record untouched, including its timestamp.
type MutateFunc func(current CriterionState) (next CriterionState, changed bool, err error)

// MatchResult scores one content item against one criterion.
type MatchResult struct {
	Content         ContentRef `json:"content"`
	AwardKey        string     `json:"award_key"`
	Criterion       string     `json:"criterion"`
	Similarity      float64    `json:"similarity"`
	Confidence      int        `json:"confidence"`
	MatchedKeywords []string   `json:"matched_keywords"`
	Matched         bool       `json:"matched"`
}

// Key returns the criterion addressed by the result.
func (m MatchResult) Key() CriterionKey {
	return CriterionKey{AwardKey: m.AwardKey, Criterion: m.Criterion}
}
