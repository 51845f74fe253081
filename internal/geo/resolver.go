// ABOUTME: Fuzzy location resolver matching question text against the mapping table
// ABOUTME: Per-level thresholds, time-prefix stripping, compound phrase reduction
package geo

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/ecosense/aqroute/internal/config"
	"github.com/ecosense/aqroute/internal/models"
)

// Leading time phrases confuse partial-ratio matching, so they are
// stripped before any name comparison.
var timePrefixRe = regexp.MustCompile(
	`^(?:今天|昨天|前天|明天|本周|上周|上上周|本月|上月|上个月|本季度|上季度|今年|去年|前年|最近|近期|\d{4}年|\d{1,2}月|\d{1,2}[日号])+`)

// Resolver matches free text against the location mapping table
type Resolver struct {
	tables *Store
	cfg    *config.Store
}

// NewResolver builds a resolver over the given table and config stores
func NewResolver(tables *Store, cfg *config.Store) *Resolver {
	return &Resolver{tables: tables, cfg: cfg}
}

// Resolve extracts location candidates from a question, sorted finest
// level first and highest confidence first within a level.
func (r *Resolver) Resolve(question string) []models.GeoCandidate {
	rc := r.cfg.Get()
	text := StripTimePrefix(strings.TrimSpace(question))
	if text == "" {
		return nil
	}

	var candidates []models.GeoCandidate
	for _, e := range r.tables.Get().Entries() {
		score := matchScore(text, e.Name)
		if score < acceptThreshold(rc, e) {
			continue
		}
		candidates = append(candidates, models.GeoCandidate{
			Name:       e.Name,
			Code:       e.Code,
			Level:      e.Level,
			ParentCode: e.ParentCode,
			Confidence: score,
			Matched:    e.Name,
		})
	}

	candidates = reduceCompound(candidates, r.parentIndex())

	sort.SliceStable(candidates, func(i, j int) bool {
		si, sj := candidates[i].Level.Specificity(), candidates[j].Level.Specificity()
		if si != sj {
			return si > sj
		}
		return candidates[i].Confidence > candidates[j].Confidence
	})
	return candidates
}

// StripTimePrefix removes leading time phrases from a question
func StripTimePrefix(text string) string {
	return timePrefixRe.ReplaceAllString(text, "")
}

// matchScore returns 0-100. A verbatim name occurrence is an exact match;
// otherwise the best of the four fuzzy ratios is used.
func matchScore(text, name string) int {
	if strings.Contains(text, name) {
		return 100
	}
	best := fuzzy.Ratio(text, name)
	if s := fuzzy.PartialRatio(text, name); s > best {
		best = s
	}
	if s := fuzzy.TokenSortRatio(text, name); s > best {
		best = s
	}
	if s := fuzzy.TokenSetRatio(text, name); s > best {
		best = s
	}
	return best
}

// acceptThreshold adjusts the per-level threshold for name length.
// Very short names match too easily, so they need a higher score;
// long station names rarely appear verbatim, so they get slack.
func acceptThreshold(rc *config.RoutingConfig, e models.GeoEntry) int {
	threshold := rc.LevelThreshold(string(e.Level))
	n := utf8.RuneCountInString(e.Name)
	switch {
	case n <= 3:
		threshold += 10
	case n >= 8:
		threshold -= 5
	}
	if threshold < rc.MinConfidence {
		threshold = rc.MinConfidence
	}
	return threshold
}

// parentIndex maps every code in the table to its parent code
func (r *Resolver) parentIndex() map[string]string {
	idx := make(map[string]string)
	for _, e := range r.tables.Get().Entries() {
		if e.ParentCode != "" {
			idx[e.Code] = e.ParentCode
		}
	}
	return idx
}

// reduceCompound drops a coarse candidate when a finer candidate sits
// anywhere under it, so "武汉市东湖站" resolves to the station alone.
// Ancestry follows the table's parent chain, station through district
// to city.
func reduceCompound(candidates []models.GeoCandidate, parents map[string]string) []models.GeoCandidate {
	if len(candidates) < 2 {
		return candidates
	}
	covered := make(map[string]bool)
	for _, c := range candidates {
		for code := parents[c.Code]; code != ""; code = parents[code] {
			covered[code] = true
		}
	}
	out := candidates[:0]
	for _, c := range candidates {
		if covered[c.Code] {
			continue
		}
		out = append(out, c)
	}
	return out
}

// GroupByLevel buckets candidates by their administrative level
func GroupByLevel(candidates []models.GeoCandidate) map[models.GeoLevel][]models.GeoCandidate {
	groups := make(map[models.GeoLevel][]models.GeoCandidate)
	for _, c := range candidates {
		groups[c.Level] = append(groups[c.Level], c)
	}
	return groups
}
