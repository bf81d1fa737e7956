// Package aggregate derives the global rollup from stored session summaries.
package aggregate

import (
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/emiliopalmerini/claude-activity/internal/domain"
)

const chartLimit = 15

// Row is the per-session input to Build. Tool counts are the combined
// counts of the session and its subagents.
type Row struct {
	Project               string
	TotalTools            int64
	TotalActions          int64
	CostEstimate          float64
	SubagentCount         int64
	StartTime             string
	EndTime               string
	TotalActiveDurationMs int64
	ToolCounts            map[string]int64
	FileExtensions        map[string]int64
	Tokens                domain.TokenUsage
}

type window struct {
	days     float64
	tools    counter
	projects counter
	files    counter
	costs    map[string]float64
}

func newWindow(days float64) *window {
	return &window{
		days:     days,
		tools:    counter{},
		projects: counter{},
		files:    counter{},
		costs:    map[string]float64{},
	}
}

func (w *window) add(r Row) {
	w.tools.addAll(r.ToolCounts)
	w.files.addAll(r.FileExtensions)
	w.projects[r.Project] += r.TotalActions
	w.costs[r.Project] += r.CostEstimate
}

func (w *window) breakdown() domain.WindowBreakdown {
	return domain.WindowBreakdown{
		ToolDistribution: rankCounts(w.tools, 0),
		ProjectsChart:    rankCounts(w.projects, chartLimit),
		FileTypesChart:   rankCounts(w.files, chartLimit),
		ProjectCosts:     rankCosts(w.costs, chartLimit),
	}
}

// Build recomputes every aggregate from rows. Window membership is
// measured from now. It returns nil when there are no rows.
func Build(rows []Row, now time.Time) *domain.GlobalAggregate {
	if len(rows) == 0 {
		return nil
	}
	now = now.UTC()

	agg := &domain.GlobalAggregate{
		GeneratedAt:   now,
		TotalSessions: int64(len(rows)),
	}

	var (
		totalCost    float64
		projects     = counter{}
		projectCosts = map[string]float64{}
		tools        = counter{}
		files        = counter{}
		days         = counter{}
		weeks        = counter{}
		months       = counter{}
		dayActions   = actionBuckets{}
		weekActions  = actionBuckets{}
		monthActions = actionBuckets{}
		windows      = []*window{newWindow(1), newWindow(7), newWindow(30)}
		projectSet   = map[string]struct{}{}
	)

	for _, r := range rows {
		agg.TotalTools += r.TotalTools
		agg.TotalActions += r.TotalActions
		totalCost += r.CostEstimate
		agg.SubagentCount += r.SubagentCount
		agg.SubagentTools += r.TotalActions - r.TotalTools
		agg.TotalActiveMs += r.TotalActiveDurationMs
		agg.TotalInputTokens += r.Tokens.Input
		agg.TotalOutputTokens += r.Tokens.Output
		agg.TotalCacheReadTokens += r.Tokens.CacheRead
		agg.TotalCacheCreationTokens += r.Tokens.CacheCreation

		if r.StartTime != "" && (agg.DateRangeStart == "" || r.StartTime < agg.DateRangeStart) {
			agg.DateRangeStart = r.StartTime
		}
		if r.EndTime != "" && r.EndTime > agg.DateRangeEnd {
			agg.DateRangeEnd = r.EndTime
		}

		projectSet[r.Project] = struct{}{}
		projects[r.Project] += r.TotalActions
		projectCosts[r.Project] += r.CostEstimate
		tools.addAll(r.ToolCounts)
		files.addAll(r.FileExtensions)

		start, ok := ParseTimestamp(r.StartTime)
		if !ok {
			continue
		}

		day := start.Format(time.DateOnly)
		week := WeekStart(start).Format(time.DateOnly)
		month := start.Format("2006-01")
		days[day]++
		weeks[week]++
		months[month]++
		dayActions.add(day, r)
		weekActions.add(week, r)
		monthActions.add(month, r)

		age := now.Sub(start).Hours() / 24
		for _, w := range windows {
			if age <= w.days {
				w.add(r)
			}
		}
	}

	agg.TotalCost = domain.RoundCost(totalCost)
	agg.ProjectCount = int64(len(projectSet))
	agg.ProjectsList = lo.Keys(projectSet)
	slices.Sort(agg.ProjectsList)

	agg.ToolDistribution = rankCounts(tools, 0)
	agg.ProjectsChart = rankCounts(projects, chartLimit)
	agg.ProjectCosts = rankCosts(projectCosts, chartLimit)
	agg.FileTypesChart = rankCounts(files, chartLimit)

	agg.DailyTimeline = timeline(days)
	agg.WeeklyTimeline = timeline(weeks)
	agg.MonthlyTimeline = timeline(months)
	agg.DailyActions = dayActions.sorted()
	agg.WeeklyActions = weekActions.sorted()
	agg.MonthlyActions = monthActions.sorted()

	agg.Last1d = windows[0].breakdown()
	agg.Last7d = windows[1].breakdown()
	agg.Last30d = windows[2].breakdown()

	return agg
}

// ParseTimestamp accepts RFC 3339 timestamps, and naive ISO timestamps
// which are read as UTC.
func ParseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// WeekStart returns midnight of the Monday starting t's ISO week, in t's
// own location.
func WeekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	y, m, d := t.Date()
	return time.Date(y, m, d-offset, 0, 0, 0, 0, t.Location())
}

type counter map[string]int64

func (c counter) addAll(m map[string]int64) {
	for k, v := range m {
		c[k] += v
	}
}

// rankCounts orders by descending value, then key. limit <= 0 keeps all.
func rankCounts(c counter, limit int) []domain.RankedCount {
	ranked := lo.MapToSlice(c, func(k string, v int64) domain.RankedCount {
		return domain.RankedCount{Key: k, Value: v}
	})
	slices.SortFunc(ranked, func(a, b domain.RankedCount) int {
		if a.Value != b.Value {
			if a.Value > b.Value {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Key, b.Key)
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func rankCosts(costs map[string]float64, limit int) []domain.RankedCost {
	ranked := lo.MapToSlice(costs, func(k string, v float64) domain.RankedCost {
		return domain.RankedCost{Key: k, Value: domain.RoundCost(v)}
	})
	slices.SortFunc(ranked, func(a, b domain.RankedCost) int {
		if a.Value != b.Value {
			if a.Value > b.Value {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Key, b.Key)
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func timeline(c counter) []domain.RankedCount {
	entries := lo.MapToSlice(c, func(k string, v int64) domain.RankedCount {
		return domain.RankedCount{Key: k, Value: v}
	})
	slices.SortFunc(entries, func(a, b domain.RankedCount) int {
		return strings.Compare(a.Key, b.Key)
	})
	return entries
}

type actionBuckets map[string]*domain.ActionBucket

func (b actionBuckets) add(period string, r Row) {
	bucket, ok := b[period]
	if !ok {
		bucket = &domain.ActionBucket{Period: period}
		b[period] = bucket
	}
	bucket.Total += r.TotalActions
	bucket.Direct += r.TotalTools
	bucket.Subagent += r.TotalActions - r.TotalTools
	bucket.ActiveMs += r.TotalActiveDurationMs
}

func (b actionBuckets) sorted() []domain.ActionBucket {
	out := make([]domain.ActionBucket, 0, len(b))
	for _, bucket := range b {
		out = append(out, *bucket)
	}
	slices.SortFunc(out, func(x, y domain.ActionBucket) int {
		return strings.Compare(x.Period, y.Period)
	})
	return out
}
