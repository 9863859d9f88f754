// Package progress aggregates daily progress logs against the smoking baseline.
package progress

import (
	"math"
	"sort"
	"time"
)

// Mood values accepted on a log entry.
const (
	MoodExcellent = "excellent"
	MoodGood      = "good"
	MoodNormal    = "normal"
	MoodStressed  = "stressed"
	MoodDifficult = "difficult"
)

// ValidMood reports whether m is one of the known moods. Empty is allowed.
func ValidMood(m string) bool {
	switch m {
	case "", MoodExcellent, MoodGood, MoodNormal, MoodStressed, MoodDifficult:
		return true
	}
	return false
}

// Entry 单日记录
type Entry struct {
	Date             time.Time
	CigarettesPerDay int
	Mood             string
}

// Baseline 吸烟基线（与 quitplan.Baseline 同义，避免包间依赖）
type Baseline struct {
	CigarettesPerDay  float64
	PricePerCigarette float64
}

// DailyCost = cigarettesPerDay × pricePerCigarette.
func DailyCost(b Baseline) float64 {
	return b.CigarettesPerDay * b.PricePerCigarette
}

// CostOver is the baseline spend over days.
func CostOver(b Baseline, days int) float64 {
	if days <= 0 {
		return 0
	}
	return DailyCost(b) * float64(days)
}

// Statistics 统计
type Statistics struct {
	DaysLogged        int            `json:"daysLogged"`
	SmokeFreeDays     int            `json:"smokeFreeDays"`
	CurrentStreak     int            `json:"currentStreak"`
	LongestStreak     int            `json:"longestStreak"`
	AverageCigarettes float64        `json:"averageCigarettes"`
	CigarettesAvoided float64        `json:"cigarettesAvoided"`
	MoneySaved        float64        `json:"moneySaved"`
	MoodDistribution  map[string]int `json:"moodDistribution"`
}

// Summarize computes statistics for entries as of now. The current streak
// counts consecutive smoke-free logged days ending today or yesterday.
func Summarize(entries []Entry, baseline Baseline, now time.Time) Statistics {
	stats := Statistics{MoodDistribution: map[string]int{}}
	if len(entries) == 0 {
		return stats
	}

	sorted := dedupeByDay(entries, now.Location())
	total := 0
	for _, e := range sorted {
		total += e.CigarettesPerDay
		if e.CigarettesPerDay == 0 {
			stats.SmokeFreeDays++
		}
		if e.Mood != "" {
			stats.MoodDistribution[e.Mood]++
		}
		if avoided := baseline.CigarettesPerDay - float64(e.CigarettesPerDay); avoided > 0 {
			stats.CigarettesAvoided += avoided
		}
	}

	stats.DaysLogged = len(sorted)
	stats.AverageCigarettes = round2(float64(total) / float64(len(sorted)))
	stats.CigarettesAvoided = round2(stats.CigarettesAvoided)
	stats.MoneySaved = round2(stats.CigarettesAvoided * baseline.PricePerCigarette)
	stats.LongestStreak = longestStreak(sorted)
	stats.CurrentStreak = currentStreak(sorted, now)
	return stats
}

// ChartPoint 图表点，未记录的日期 Cigarettes 为 nil
type ChartPoint struct {
	Date       string `json:"date"`
	Cigarettes *int   `json:"cigarettes"`
	Mood       string `json:"mood,omitempty"`
}

// Series returns one point per calendar day for the last days days ending at
// now (inclusive), oldest first.
func Series(entries []Entry, days int, now time.Time) []ChartPoint {
	if days <= 0 {
		return nil
	}

	byDay := make(map[string]Entry, len(entries))
	for _, e := range entries {
		byDay[dayKey(e.Date.In(now.Location()))] = e
	}

	today := startOfDay(now)
	points := make([]ChartPoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		key := dayKey(today.AddDate(0, 0, -i))
		p := ChartPoint{Date: key}
		if e, ok := byDay[key]; ok {
			n := e.CigarettesPerDay
			p.Cigarettes = &n
			p.Mood = e.Mood
		}
		points = append(points, p)
	}
	return points
}

// dedupeByDay 按 loc 中的日历日去重，并把日期换算到 loc
func dedupeByDay(entries []Entry, loc *time.Location) []Entry {
	byDay := make(map[string]Entry, len(entries))
	for _, e := range entries {
		e.Date = e.Date.In(loc)
		byDay[dayKey(e.Date)] = e
	}
	out := make([]Entry, 0, len(byDay))
	for _, e := range byDay {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func longestStreak(sorted []Entry) int {
	best, run := 0, 0
	var prev time.Time
	for _, e := range sorted {
		if e.CigarettesPerDay != 0 {
			run = 0
			continue
		}
		if run > 0 && startOfDay(e.Date).Equal(startOfDay(prev).AddDate(0, 0, 1)) {
			run++
		} else {
			run = 1
		}
		prev = e.Date
		if run > best {
			best = run
		}
	}
	return best
}

func currentStreak(sorted []Entry, now time.Time) int {
	expect := startOfDay(now)
	last := sorted[len(sorted)-1]
	if !sameDay(last.Date, expect) {
		// 今天还没记录时从昨天开始算
		expect = expect.AddDate(0, 0, -1)
	}

	streak := 0
	for i := len(sorted) - 1; i >= 0; i-- {
		e := sorted[i]
		if !sameDay(e.Date, expect) || e.CigarettesPerDay != 0 {
			break
		}
		streak++
		expect = expect.AddDate(0, 0, -1)
	}
	return streak
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func sameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
