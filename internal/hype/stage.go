package hype

import "fmt"

// MaxLevel is the count at which the thermometer is full.
const MaxLevel = 6

// Stage is the presentation state for a given today-count. The ladder is a
// pure function of the count and must stay exactly reproducible: clients
// render it verbatim.
type Stage struct {
	Name        string  `json:"name"`
	Icon        string  `json:"icon"`
	Progress    float64 `json:"progress"` // min(count, 6) / 6
	NextMessage string  `json:"next_message"`
}

// StageFor maps a today-count to its thermometer stage.
func StageFor(todayCount int) Stage {
	stage := Stage{}

	switch {
	case todayCount <= 0:
		stage.Name = "しーん"
		stage.Icon = "🫧"
	case todayCount == 1:
		stage.Name = "ぬくもり"
		stage.Icon = "☁️"
	case todayCount == 2:
		stage.Name = "あったかい"
		stage.Icon = "🌤️"
	case todayCount == 3:
		stage.Name = "熱い"
		stage.Icon = "🔥"
	case todayCount == 4:
		stage.Name = "祭り"
		stage.Icon = "🎉"
	case todayCount == 5:
		stage.Name = "最高の雰囲気"
		stage.Icon = "✨"
		stage.NextMessage = "あと1件で「称賛デー」"
	default:
		stage.Name = "称賛デー"
		stage.Icon = "🏁"
		stage.NextMessage = "称賛デー！（いい感じです）"
	}

	// Counts 0-4 all aim at the fixed threshold of 5.
	if todayCount >= 0 && todayCount <= 4 {
		stage.NextMessage = fmt.Sprintf("あと%d件で「最高の雰囲気」", 5-todayCount)
	}

	level := todayCount
	if level > MaxLevel {
		level = MaxLevel
	}
	if level < 0 {
		level = 0
	}
	stage.Progress = float64(level) / float64(MaxLevel)

	return stage
}

// StreakText renders the streak in the non-blaming wording the widget uses.
func StreakText(streakDays int) string {
	if streakDays > 0 {
		return fmt.Sprintf("%d日連続！", streakDays)
	}
	return "今日はまだ0件（最初の1件で復活）"
}
