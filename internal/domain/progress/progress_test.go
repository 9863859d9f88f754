package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func TestCost(t *testing.T) {
	b := Baseline{CigarettesPerDay: 10, PricePerCigarette: 2000}

	assert.Equal(t, float64(20000), DailyCost(b))
	assert.Equal(t, float64(600000), CostOver(b, 30))
	assert.Equal(t, float64(0), CostOver(b, 0))
}

func TestSummarize(t *testing.T) {
	b := Baseline{CigarettesPerDay: 10, PricePerCigarette: 2000}
	entries := []Entry{
		{Date: day(1), CigarettesPerDay: 6, Mood: MoodStressed},
		{Date: day(2), CigarettesPerDay: 0, Mood: MoodGood},
		{Date: day(3), CigarettesPerDay: 0, Mood: MoodGood},
		{Date: day(5), CigarettesPerDay: 0, Mood: MoodExcellent},
		{Date: day(6), CigarettesPerDay: 0},
	}

	stats := Summarize(entries, b, day(6).Add(20*time.Hour))

	assert.Equal(t, 5, stats.DaysLogged)
	assert.Equal(t, 4, stats.SmokeFreeDays)
	assert.Equal(t, 2, stats.CurrentStreak)
	assert.Equal(t, 2, stats.LongestStreak)
	assert.Equal(t, 1.2, stats.AverageCigarettes)
	assert.Equal(t, float64(44), stats.CigarettesAvoided)
	assert.Equal(t, float64(88000), stats.MoneySaved)
	assert.Equal(t, map[string]int{MoodStressed: 1, MoodGood: 2, MoodExcellent: 1}, stats.MoodDistribution)
}

func TestSummarize_CurrentStreak(t *testing.T) {
	entries := []Entry{
		{Date: day(1), CigarettesPerDay: 0},
		{Date: day(2), CigarettesPerDay: 0},
		{Date: day(3), CigarettesPerDay: 0},
	}

	t.Run("not yet logged today", func(t *testing.T) {
		stats := Summarize(entries, Baseline{}, day(4).Add(9*time.Hour))
		assert.Equal(t, 3, stats.CurrentStreak)
	})

	t.Run("gap breaks the streak", func(t *testing.T) {
		stats := Summarize(entries, Baseline{}, day(5))
		assert.Equal(t, 0, stats.CurrentStreak)
		assert.Equal(t, 3, stats.LongestStreak)
	})

	t.Run("smoked today", func(t *testing.T) {
		withToday := append(append([]Entry{}, entries...), Entry{Date: day(4), CigarettesPerDay: 2})
		stats := Summarize(withToday, Baseline{}, day(4))
		assert.Equal(t, 0, stats.CurrentStreak)
	})
}

func TestSummarize_Empty(t *testing.T) {
	stats := Summarize(nil, Baseline{CigarettesPerDay: 10, PricePerCigarette: 2000}, day(1))

	assert.Zero(t, stats.DaysLogged)
	assert.NotNil(t, stats.MoodDistribution)
}

func TestSeries(t *testing.T) {
	entries := []Entry{
		{Date: day(3), CigarettesPerDay: 4, Mood: MoodNormal},
		{Date: day(5), CigarettesPerDay: 0},
		{Date: day(1), CigarettesPerDay: 9},
	}

	points := Series(entries, 4, day(5).Add(10*time.Hour))

	require.Len(t, points, 4)
	assert.Equal(t, "2024-03-02", points[0].Date)
	assert.Nil(t, points[0].Cigarettes)
	require.NotNil(t, points[1].Cigarettes)
	assert.Equal(t, 4, *points[1].Cigarettes)
	assert.Equal(t, MoodNormal, points[1].Mood)
	assert.Nil(t, points[2].Cigarettes)
	require.NotNil(t, points[3].Cigarettes)
	assert.Equal(t, 0, *points[3].Cigarettes)

	assert.Nil(t, Series(entries, 0, day(5)))
}

func TestSummarize_BucketsInNowLocation(t *testing.T) {
	hcm := time.FixedZone("ICT", 7*3600)
	// 3 月 1 日 20:00 UTC 在 +07 已是 3 月 2 日
	entries := []Entry{
		{Date: time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC), CigarettesPerDay: 0},
		{Date: time.Date(2024, 3, 2, 0, 0, 0, 0, hcm), CigarettesPerDay: 3},
	}
	now := time.Date(2024, 3, 2, 12, 0, 0, 0, hcm)

	stats := Summarize(entries, Baseline{}, now)
	points := Series(entries, 2, now)

	assert.Equal(t, 1, stats.DaysLogged)
	require.Len(t, points, 2)
	assert.Nil(t, points[0].Cigarettes)
	require.NotNil(t, points[1].Cigarettes)
	assert.Equal(t, stats.DaysLogged, countLogged(points))
}

func countLogged(points []ChartPoint) int {
	n := 0
	for _, p := range points {
		if p.Cigarettes != nil {
			n++
		}
	}
	return n
}

func TestValidMood(t *testing.T) {
	assert.True(t, ValidMood(""))
	assert.True(t, ValidMood(MoodDifficult))
	assert.False(t, ValidMood("great"))
}
