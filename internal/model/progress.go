package model

// DailyProgress is a derived snapshot of one date's completion counts.
// It is rebuilt from the task collection and never edited directly.
type DailyProgress struct {
	Date               string `json:"date"`
	CompletedTasks     int    `json:"completedTasks"`
	TotalTasks         int    `json:"totalTasks"`
	ProgressPercentage int    `json:"progressPercentage"` // 0-100
}

// EmptyProgress is what a date with no record, or no tasks, reports.
func EmptyProgress(date string) DailyProgress {
	return DailyProgress{Date: date}
}
