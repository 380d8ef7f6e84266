package tracker

import (
	"github.com/nakachan-ing/daytask/internal/model"
)

// ComputeProgress derives the snapshot for date from the full task list.
// The percentage is rounded half up and is 0 when the date has no tasks.
func ComputeProgress(tasks []model.Task, date string) model.DailyProgress {
	p := model.EmptyProgress(date)
	for _, t := range tasks {
		if t.Date != date {
			continue
		}
		p.TotalTasks++
		if t.IsCompleted {
			p.CompletedTasks++
		}
	}
	p.ProgressPercentage = percentage(p.CompletedTasks, p.TotalTasks)
	return p
}

func percentage(completed, total int) int {
	if total <= 0 {
		return 0
	}
	// integer form of round(completed/total*100) with halves rounded up
	return (completed*200 + total) / (total * 2)
}

// upsertProgress replaces the record for p.Date, keeping at most one per date.
// Other records keep their order and the new one goes last.
func upsertProgress(all []model.DailyProgress, p model.DailyProgress) []model.DailyProgress {
	out := make([]model.DailyProgress, 0, len(all)+1)
	for _, existing := range all {
		if existing.Date != p.Date {
			out = append(out, existing)
		}
	}
	return append(out, p)
}
