package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breathfree/quit_go_server/internal/domain/progress"
)

func TestGenerate(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 30)
	four := 4

	data, err := Generate(&Data{
		MemberName:        "Trần Thị Bình",
		GeneratedAt:       start.AddDate(0, 0, 10),
		CigarettesPerDay:  10,
		PricePerCigarette: 2000,
		PlanReason:        "Vì sức khỏe của gia đình",
		PlanStart:         &start,
		ExpectedQuitDate:  &end,
		Stages: []Stage{
			{Title: "Giai đoạn 1", Days: 7, Status: "completed", Progress: 100},
			{Title: "Giai đoạn 2", Days: 23, Status: "in_progress", Progress: 13},
		},
		Stats: progress.Statistics{DaysLogged: 5, SmokeFreeDays: 4, MoneySaved: 88000},
		Chart: []progress.ChartPoint{{Date: "2024-03-10", Cigarettes: &four, Mood: "normal"}, {Date: "2024-03-11"}},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestASCII(t *testing.T) {
	assert.Equal(t, "Bao cao tien do cai thuoc", ascii("Báo cáo tiến độ cai thuốc"))
	assert.Equal(t, "Dang thuc hien", ascii("Đang thực hiện"))
}

func TestVND(t *testing.T) {
	assert.Equal(t, "600.000 VND", vnd(600000))
	assert.Equal(t, "2.000 VND", vnd(2000))
	assert.Equal(t, "0 VND", vnd(0))
}
