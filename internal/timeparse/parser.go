// ABOUTME: Deterministic time phrase parser with prioritized pattern classes
// ABOUTME: Absolute dates beat calendar months beat relative phrases beat vague terms
package timeparse

import (
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/ecosense/aqroute/internal/models"
)

// Parser resolves time phrases in question text to concrete ranges.
// Now is injectable so relative phrases are testable.
type Parser struct {
	Now func() time.Time
}

// NewParser returns a parser anchored to the wall clock
func NewParser() *Parser {
	return &Parser{Now: time.Now}
}

// pattern couples a regexp with a resolver. Patterns are tried in order
// and a byte span of text claimed by an earlier pattern is never
// re-matched by a later one, so "2025年6月3日" is one date, not a date
// plus a stray month.
type pattern struct {
	re      *regexp.Regexp
	resolve func(p *Parser, m []string) (models.TimeRange, bool)
}

var patterns = []pattern{
	{regexp.MustCompile(`(\d{4})年(\d{1,2})月(\d{1,2})[日号]?`), resolveFullDate},
	{regexp.MustCompile(`(\d{1,2})月(\d{1,2})[日号]`), resolveMonthDay},
	{regexp.MustCompile(`(\d{4})年(\d{1,2})月`), resolveYearMonth},
	{regexp.MustCompile(`(\d{4})年(?:第)?([一二三四1-4])季度`), resolveYearQuarter},
	{regexp.MustCompile(`(\d{4})年上半年`), resolveFirstHalf},
	{regexp.MustCompile(`(\d{4})年下半年`), resolveSecondHalf},
	{regexp.MustCompile(`(?:最近|近|过去)(\d{1,3})天`), resolveRecentDays},
	{regexp.MustCompile(`(\d{1,3})天前`), resolveDaysAgo},
	{regexp.MustCompile(`(\d{4})年`), resolveYear},
	{regexp.MustCompile(`(\d{1,2})月`), resolveMonth},
	{regexp.MustCompile(`上上周`), relativeWeeks(-2)},
	{regexp.MustCompile(`上周`), relativeWeeks(-1)},
	{regexp.MustCompile(`本周|这周`), relativeWeeks(0)},
	{regexp.MustCompile(`上个?月`), relativeMonths(-1)},
	{regexp.MustCompile(`本月|这个月`), relativeMonths(0)},
	{regexp.MustCompile(`前天`), relativeDays(-2)},
	{regexp.MustCompile(`昨天|昨日`), relativeDays(-1)},
	{regexp.MustCompile(`今天|今日`), relativeDays(0)},
	{regexp.MustCompile(`前年`), relativeYears(-2)},
	{regexp.MustCompile(`去年`), relativeYears(-1)},
	{regexp.MustCompile(`今年`), relativeYears(0)},
	{regexp.MustCompile(`上季度`), relativeQuarters(-1)},
	{regexp.MustCompile(`本季度`), relativeQuarters(0)},
	{regexp.MustCompile(`最近|近期`), resolveVague},
}

// Parse extracts every time range mentioned in the text, ordered by
// appearance. Returns nil when no phrase resolves.
func (p *Parser) Parse(text string) []models.TimeRange {
	type hit struct {
		start, end int
		r          models.TimeRange
	}
	var hits []hit
	claimed := make([][2]int, 0, 4)

	overlaps := func(s, e int) bool {
		for _, c := range claimed {
			if s < c[1] && c[0] < e {
				return true
			}
		}
		return false
	}

	for _, pat := range patterns {
		for _, loc := range pat.re.FindAllStringSubmatchIndex(text, -1) {
			if overlaps(loc[0], loc[1]) {
				continue
			}
			m := make([]string, 0, len(loc)/2)
			for i := 0; i < len(loc); i += 2 {
				if loc[i] < 0 {
					m = append(m, "")
					continue
				}
				m = append(m, text[loc[i]:loc[i+1]])
			}
			// Claim the span even when resolution fails so a malformed
			// date is not reinterpreted piecemeal by later patterns.
			claimed = append(claimed, [2]int{loc[0], loc[1]})
			r, ok := pat.resolve(p, m)
			if !ok {
				continue
			}
			r.Source = m[0]
			hits = append(hits, hit{loc[0], loc[1], r})
		}
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].start < hits[j].start })

	out := make([]models.TimeRange, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.r)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func dayEnd(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

// weekStart returns the Monday beginning t's week
func weekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return dayStart(t.AddDate(0, 0, -offset))
}

func dayRange(t time.Time, precision models.TimePrecision) models.TimeRange {
	return models.TimeRange{Start: dayStart(t), End: dayEnd(t), Precision: precision}
}

func spanRange(start, end time.Time, precision models.TimePrecision) models.TimeRange {
	return models.TimeRange{Start: dayStart(start), End: dayEnd(end), Precision: precision}
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func resolveFullDate(p *Parser, m []string) (models.TimeRange, bool) {
	year, month, day := atoi(m[1]), atoi(m[2]), atoi(m[3])
	if !validDate(year, month, day) {
		return models.TimeRange{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, p.Now().Location())
	return dayRange(t, models.PrecisionAbsoluteDate), true
}

// Month-day phrases without a year take the current year
func resolveMonthDay(p *Parser, m []string) (models.TimeRange, bool) {
	now := p.Now()
	month, day := atoi(m[1]), atoi(m[2])
	if !validDate(now.Year(), month, day) {
		return models.TimeRange{}, false
	}
	t := time.Date(now.Year(), time.Month(month), day, 0, 0, 0, 0, now.Location())
	return dayRange(t, models.PrecisionAbsoluteDate), true
}

func resolveYearMonth(p *Parser, m []string) (models.TimeRange, bool) {
	year, month := atoi(m[1]), atoi(m[2])
	if month < 1 || month > 12 {
		return models.TimeRange{}, false
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, p.Now().Location())
	return spanRange(start, start.AddDate(0, 1, -1), models.PrecisionAbsoluteMonth), true
}

func resolveYearQuarter(p *Parser, m []string) (models.TimeRange, bool) {
	q := quarterIndex(m[2])
	if q == 0 {
		return models.TimeRange{}, false
	}
	start := time.Date(atoi(m[1]), time.Month(3*q-2), 1, 0, 0, 0, 0, p.Now().Location())
	return spanRange(start, start.AddDate(0, 3, -1), models.PrecisionAbsoluteMonth), true
}

func resolveFirstHalf(p *Parser, m []string) (models.TimeRange, bool) {
	start := time.Date(atoi(m[1]), time.January, 1, 0, 0, 0, 0, p.Now().Location())
	return spanRange(start, start.AddDate(0, 6, -1), models.PrecisionAbsoluteMonth), true
}

func resolveSecondHalf(p *Parser, m []string) (models.TimeRange, bool) {
	start := time.Date(atoi(m[1]), time.July, 1, 0, 0, 0, 0, p.Now().Location())
	return spanRange(start, start.AddDate(0, 6, -1), models.PrecisionAbsoluteMonth), true
}

// 最近N天 covers today and the N-1 days before it
func resolveRecentDays(p *Parser, m []string) (models.TimeRange, bool) {
	n := atoi(m[1])
	if n < 1 {
		return models.TimeRange{}, false
	}
	now := p.Now()
	return spanRange(now.AddDate(0, 0, -(n-1)), now, models.PrecisionRelativeRecent), true
}

func resolveDaysAgo(p *Parser, m []string) (models.TimeRange, bool) {
	n := atoi(m[1])
	if n < 1 {
		return models.TimeRange{}, false
	}
	return dayRange(p.Now().AddDate(0, 0, -n), models.PrecisionRelativeRecent), true
}

func resolveYear(p *Parser, m []string) (models.TimeRange, bool) {
	year := atoi(m[1])
	loc := p.Now().Location()
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	return spanRange(start, start.AddDate(1, 0, -1), models.PrecisionAbsoluteMonth), true
}

func resolveMonth(p *Parser, m []string) (models.TimeRange, bool) {
	now := p.Now()
	month := atoi(m[1])
	if month < 1 || month > 12 {
		return models.TimeRange{}, false
	}
	start := time.Date(now.Year(), time.Month(month), 1, 0, 0, 0, 0, now.Location())
	return spanRange(start, start.AddDate(0, 1, -1), models.PrecisionAbsoluteMonth), true
}

func relativeDays(offset int) func(*Parser, []string) (models.TimeRange, bool) {
	return func(p *Parser, _ []string) (models.TimeRange, bool) {
		return dayRange(p.Now().AddDate(0, 0, offset), models.PrecisionRelative), true
	}
}

func relativeWeeks(offset int) func(*Parser, []string) (models.TimeRange, bool) {
	return func(p *Parser, _ []string) (models.TimeRange, bool) {
		start := weekStart(p.Now()).AddDate(0, 0, 7*offset)
		return spanRange(start, start.AddDate(0, 0, 6), models.PrecisionRelative), true
	}
}

func relativeMonths(offset int) func(*Parser, []string) (models.TimeRange, bool) {
	return func(p *Parser, _ []string) (models.TimeRange, bool) {
		now := p.Now()
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, offset, 0)
		return spanRange(start, start.AddDate(0, 1, -1), models.PrecisionRelative), true
	}
}

func relativeYears(offset int) func(*Parser, []string) (models.TimeRange, bool) {
	return func(p *Parser, _ []string) (models.TimeRange, bool) {
		start := time.Date(p.Now().Year()+offset, time.January, 1, 0, 0, 0, 0, p.Now().Location())
		return spanRange(start, start.AddDate(1, 0, -1), models.PrecisionRelative), true
	}
}

func relativeQuarters(offset int) func(*Parser, []string) (models.TimeRange, bool) {
	return func(p *Parser, _ []string) (models.TimeRange, bool) {
		now := p.Now()
		q := (int(now.Month()) - 1) / 3
		start := time.Date(now.Year(), time.Month(3*q+1), 1, 0, 0, 0, 0, now.Location()).AddDate(0, 3*offset, 0)
		return spanRange(start, start.AddDate(0, 3, -1), models.PrecisionRelative), true
	}
}

// Bare 最近/近期 defaults to the trailing seven days
func resolveVague(p *Parser, _ []string) (models.TimeRange, bool) {
	now := p.Now()
	return spanRange(now.AddDate(0, 0, -6), now, models.PrecisionVague), true
}

func validDate(year, month, day int) bool {
	if month < 1 || month > 12 || day < 1 {
		return false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return t.Day() == day && int(t.Month()) == month
}

func quarterIndex(s string) int {
	switch s {
	case "一", "1":
		return 1
	case "二", "2":
		return 2
	case "三", "3":
		return 3
	case "四", "4":
		return 4
	}
	return 0
}
