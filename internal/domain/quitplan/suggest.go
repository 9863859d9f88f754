package quitplan

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrIneligible           = errors.New("Vui lòng khai báo tình trạng hút thuốc trước khi tạo kế hoạch")
	ErrNoActiveSubscription = errors.New("Bạn cần có gói thành viên còn hiệu lực để sử dụng chức năng này")
)

// Baseline 吸烟基线
type Baseline struct {
	CigarettesPerDay  float64 `json:"cigarettesPerDay"`
	PricePerCigarette float64 `json:"pricePerCigarette"`
}

// Declared reports whether both values are present and positive.
func (b Baseline) Declared() bool {
	return b.CigarettesPerDay > 0 && b.PricePerCigarette > 0
}

// DailyCost is cigarettesPerDay × pricePerCigarette.
func (b Baseline) DailyCost() float64 {
	return b.CigarettesPerDay * b.PricePerCigarette
}

// Recommendations 建议
type Recommendations struct {
	Difficulty  string   `json:"difficulty"`
	SuccessRate int      `json:"successRate"`
	Tips        []string `json:"tips"`
}

// Suggestion 服务端计算的计划模板
type Suggestion struct {
	CigarettesPerDay  float64         `json:"cigarettesPerDay"`
	SuggestedDuration int             `json:"suggestedDuration"`
	EstimatedSavings  float64         `json:"estimatedSavings"`
	Recommendations   Recommendations `json:"recommendations"`
	SuggestedStages   []StageFields   `json:"suggestedStages"`
}

type band struct {
	maxCigarettes float64
	difficulty    string
	successRate   int
	duration      int
	tips          []string
}

var bands = []band{
	{
		maxCigarettes: 10,
		difficulty:    "easy",
		successRate:   75,
		duration:      30,
		tips: []string{
			"Uống nhiều nước và ăn nhẹ khi thèm thuốc",
			"Tránh cà phê và rượu bia trong tuần đầu",
			"Chia sẻ kế hoạch với người thân để được hỗ trợ",
		},
	},
	{
		maxCigarettes: 20,
		difficulty:    "medium",
		successRate:   60,
		duration:      45,
		tips: []string{
			"Xác định thời điểm và tình huống dễ thèm thuốc nhất",
			"Thay thế thói quen hút thuốc bằng đi bộ hoặc hít thở sâu",
			"Ghi nhật ký mỗi ngày để theo dõi tiến độ",
			"Trao đổi với huấn luyện viên khi gặp khó khăn",
		},
	},
	{
		maxCigarettes: math.Inf(1),
		difficulty:    "hard",
		successRate:   45,
		duration:      60,
		tips: []string{
			"Giảm dần số điếu theo từng giai đoạn, không bỏ đột ngột",
			"Cân nhắc liệu pháp thay thế nicotine theo tư vấn y tế",
			"Loại bỏ thuốc lá, bật lửa khỏi nhà và nơi làm việc",
			"Trao đổi với huấn luyện viên ít nhất mỗi tuần",
		},
	},
}

// stage weights: three tapering stages then the quit stage
var stageWeights = []float64{0.2, 0.3, 0.3, 0.2}

// Suggest builds a suggested plan for baseline. The duration is capped at
// daysRemaining so that the template never plans beyond paid access.
func Suggest(baseline Baseline, daysRemaining int) (*Suggestion, error) {
	if daysRemaining <= 0 {
		return nil, ErrNoActiveSubscription
	}
	if !baseline.Declared() {
		return nil, ErrIneligible
	}

	b := bands[len(bands)-1]
	for _, candidate := range bands {
		if baseline.CigarettesPerDay <= candidate.maxCigarettes {
			b = candidate
			break
		}
	}

	duration := b.duration
	if duration > daysRemaining {
		duration = daysRemaining
	}

	tips := make([]string, len(b.tips))
	copy(tips, b.tips)

	return &Suggestion{
		CigarettesPerDay:  baseline.CigarettesPerDay,
		SuggestedDuration: duration,
		EstimatedSavings:  baseline.DailyCost() * float64(duration),
		Recommendations: Recommendations{
			Difficulty:  b.difficulty,
			SuccessRate: b.successRate,
			Tips:        tips,
		},
		SuggestedStages: buildStages(baseline.CigarettesPerDay, duration),
	}, nil
}

func buildStages(cigarettes float64, duration int) []StageFields {
	if duration < len(stageWeights) {
		return []StageFields{quitStage(1, duration)}
	}

	stages := make([]StageFields, 0, len(stageWeights))
	used := 0
	for i, w := range stageWeights[:len(stageWeights)-1] {
		days := int(math.Floor(float64(duration) * w))
		if days < 1 {
			days = 1
		}
		target := int(math.Ceil(cigarettes * (1 - 0.25*float64(i+1))))
		stages = append(stages, StageFields{
			Title:          fmt.Sprintf("Giai đoạn %d: Giảm còn %d điếu/ngày", i+1, target),
			Description:    fmt.Sprintf("Duy trì tối đa %d điếu mỗi ngày trong %d ngày", target, days),
			DaysToComplete: days,
		})
		used += days
	}

	return append(stages, quitStage(len(stageWeights), duration-used))
}

func quitStage(n, days int) StageFields {
	return StageFields{
		Title:          fmt.Sprintf("Giai đoạn %d: Ngừng hút thuốc hoàn toàn", n),
		Description:    "Không hút điếu nào và duy trì thói quen lành mạnh",
		DaysToComplete: days,
	}
}
