// Package selection chooses the most relevant table among several candidates.
//
// Scoring is heuristic and deterministic: tables are visited in document
// order and the first table with the highest score wins.
package selection

import (
	"math"
	"strings"

	"github.com/custodia-labs/htmltab/internal/core/domain"
)

// Disqualified is the score of a table too small to hold data.
// A disqualified table is never chosen over a qualifying one.
const Disqualified = math.MinInt

const (
	minRows      = 3
	classBonus   = 10
	captionBonus = 8
	headerBonus  = 6

	defaultSizeCap = 25
)

// Scorer scores tables by how likely they are to be the one the caller wants.
type Scorer struct {
	// Topic holds caller-supplied keywords matched against the caption and headers.
	Topic []string

	// Classes are class names that mark a data table.
	Classes []string

	// HeaderKeywords are words expected in a relevant header row.
	HeaderKeywords []string

	// SizeCap caps the points awarded for row count. Zero means 25.
	SizeCap int
}

// NewScorer builds a Scorer from extraction settings.
// A non-empty topic replaces the configured one.
func NewScorer(settings domain.ExtractSettings, topic []string) Scorer {
	if len(topic) == 0 {
		topic = settings.Topic
	}
	return Scorer{
		Topic:          topic,
		Classes:        settings.DataClasses,
		HeaderKeywords: settings.HeaderKeywords,
		SizeCap:        settings.SizeCap,
	}
}

// Score returns the table's score, or Disqualified when it has fewer than three rows.
func (s Scorer) Score(t domain.Table) int {
	if len(t.Rows) < minRows {
		return Disqualified
	}

	score := 0
	if s.isDataTable(t) {
		score += classBonus
	}

	caption := strings.ToLower(t.Caption)
	for _, kw := range s.Topic {
		if matches(caption, kw) {
			score += captionBonus
		}
	}

	headers := lowerAll(t.HeaderTexts())
	for _, kw := range s.headerKeywords() {
		for _, h := range headers {
			if matches(h, kw) {
				score += headerBonus
				break
			}
		}
	}

	return score + min(s.sizeCap(), len(t.Rows))
}

// Scores returns the score of every table, parallel to tables.
func (s Scorer) Scores(tables []domain.Table) []int {
	scores := make([]int, len(tables))
	for i := range tables {
		scores[i] = s.Score(tables[i])
	}
	return scores
}

// Select returns the index of the chosen table. A non-nil index is honoured
// exactly and never clamped. Otherwise the highest scoring table wins, ties
// going to the lowest index; when every table is disqualified the first is chosen.
func (s Scorer) Select(tables []domain.Table, index *int) (int, error) {
	if len(tables) == 0 {
		return -1, domain.ErrNoTables
	}

	if index != nil {
		if *index < 0 || *index >= len(tables) {
			return -1, &domain.IndexOutOfRangeError{Index: *index, Count: len(tables)}
		}
		return *index, nil
	}

	return Best(s.Scores(tables)), nil
}

// Best returns the index of the highest score, preferring the lowest index on ties.
// It returns -1 for an empty slice.
func Best(scores []int) int {
	if len(scores) == 0 {
		return -1
	}
	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	return best
}

func (s Scorer) isDataTable(t domain.Table) bool {
	if _, ok := t.Attributes["data-table"]; ok {
		return true
	}
	for _, c := range t.Classes() {
		for _, want := range s.Classes {
			if strings.EqualFold(c, want) {
				return true
			}
		}
	}
	return false
}

// headerKeywords returns the configured header keywords followed by topic
// keywords not already present.
func (s Scorer) headerKeywords() []string {
	out := make([]string, 0, len(s.HeaderKeywords)+len(s.Topic))
	seen := make(map[string]bool, cap(out))
	for _, kw := range append(append([]string(nil), s.HeaderKeywords...), s.Topic...) {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		out = append(out, kw)
	}
	return out
}

func (s Scorer) sizeCap() int {
	if s.SizeCap <= 0 {
		return defaultSizeCap
	}
	return s.SizeCap
}

// matches reports whether the lower-cased text contains keyword.
func matches(text, keyword string) bool {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	return keyword != "" && strings.Contains(text, keyword)
}

func lowerAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strings.ToLower(s)
	}
	return out
}
