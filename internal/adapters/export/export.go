// Package export renders award readiness as downloadable tables.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/okian/laurel/internal/domain/errkind"
	"github.com/okian/laurel/internal/domain/model"
	"github.com/okian/laurel/internal/domain/types"
)

// TopMatches is how many best-scoring items each row carries.
const TopMatches = 3

// Format names an export encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat accepts csv or json in any case; empty means csv.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", errkind.New("export.parse_format", errkind.Validation, "unknown export format %q, want csv or json", s)
}

// Match is one content item supporting an award.
type Match struct {
	Content    model.ContentRef `json:"content"`
	Title      string           `json:"title"`
	Confidence int              `json:"confidence"`
}

// Label is the title, or the reference when the item has none.
func (m Match) Label() string {
	if m.Title != "" {
		return m.Title
	}
	return m.Content.String()
}

// Row is the exported line of one award.
type Row struct {
	AwardKey   string                `json:"award_key"`
	AwardName  string                `json:"award_name"`
	Status     types.ReadinessStatus `json:"status"`
	Rate       float64               `json:"rate"`
	Satisfied  int                   `json:"satisfied"`
	Total      int                   `json:"total"`
	Missing    []string              `json:"missing"`
	TopMatches []Match               `json:"top_matches"`
}

// Rows builds one row per checklist, keeping taxonomy order. An item
// supporting several criteria of the award counts once, at its best
// confidence.
func Rows(lists []types.Checklist) []Row {
	out := make([]Row, 0, len(lists))
	for _, cl := range lists {
		row := Row{
			AwardKey:   cl.AwardKey,
			AwardName:  cl.AwardName,
			Status:     cl.Readiness.Status,
			Rate:       cl.Readiness.Rate,
			Satisfied:  cl.Readiness.SatisfiedCount,
			Total:      cl.Readiness.TotalCount,
			Missing:    []string{},
			TopMatches: top(cl.Checklist),
		}
		for _, e := range cl.Checklist {
			if !e.Satisfied {
				row.Missing = append(row.Missing, e.Criterion)
			}
		}
		out = append(out, row)
	}
	return out
}

func top(entries []types.ChecklistEntry) []Match {
	best := map[model.ContentRef]Match{}
	for _, e := range entries {
		for _, s := range e.SupportingContent {
			if cur, ok := best[s.Content]; !ok || s.Confidence > cur.Confidence {
				best[s.Content] = Match{Content: s.Content, Title: s.Title, Confidence: s.Confidence}
			}
		}
	}
	matches := make([]Match, 0, len(best))
	for _, m := range best {
		matches = append(matches, m)
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Confidence != matches[j].Confidence {
			return matches[i].Confidence > matches[j].Confidence
		}
		return matches[i].Content.Less(matches[j].Content)
	})
	if len(matches) > TopMatches {
		matches = matches[:TopMatches]
	}
	return matches
}

// Header is the first CSV record.
func Header() []string {
	h := []string{"Award Key", "Award Name", "Status", "Readiness", "Satisfied", "Total", "Missing Criteria"}
	for i := 1; i <= TopMatches; i++ {
		h = append(h, fmt.Sprintf("Top Match %d", i), fmt.Sprintf("Score %d", i))
	}
	return h
}

// Record renders a row as CSV fields. Unused match columns stay empty.
func (r Row) Record() []string {
	rec := []string{
		r.AwardKey,
		r.AwardName,
		string(r.Status),
		strconv.FormatFloat(r.Rate, 'f', 2, 64),
		strconv.Itoa(r.Satisfied),
		strconv.Itoa(r.Total),
		strings.Join(r.Missing, "; "),
	}
	for i := 0; i < TopMatches; i++ {
		if i < len(r.TopMatches) {
			rec = append(rec, r.TopMatches[i].Label(), strconv.Itoa(r.TopMatches[i].Confidence))
			continue
		}
		rec = append(rec, "", "")
	}
	return rec
}

// WriteCSV writes the header and one record per row.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(r.Record()); err != nil {
			return fmt.Errorf("write csv row %s: %w", r.AwardKey, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
