package tracker

import (
	"context"
	"sort"

	"github.com/nakachan-ing/daytask/internal/model"
)

// Summary aggregates progress snapshots over a date range.
type Summary struct {
	From               string
	To                 string
	ActiveDays         int // days with at least one task
	PerfectDays        int // days with every task completed
	CompletedTasks     int
	TotalTasks         int
	ProgressPercentage int
	Days               []model.DailyProgress
}

// Stats summarises stored progress between from and to inclusive. Either
// bound may be empty to leave that side open.
func (m *Manager) Stats(ctx context.Context, from, to string) Summary {
	return Summarize(m.ListAllProgress(ctx), from, to)
}

func Summarize(all []model.DailyProgress, from, to string) Summary {
	s := Summary{From: from, To: to, Days: []model.DailyProgress{}}
	for _, p := range all {
		// yyyy-mm-dd sorts lexically in date order
		if from != "" && p.Date < from {
			continue
		}
		if to != "" && p.Date > to {
			continue
		}
		s.Days = append(s.Days, p)
		if p.TotalTasks == 0 {
			continue
		}
		s.ActiveDays++
		s.CompletedTasks += p.CompletedTasks
		s.TotalTasks += p.TotalTasks
		if p.CompletedTasks == p.TotalTasks {
			s.PerfectDays++
		}
	}
	sort.Slice(s.Days, func(i, j int) bool { return s.Days[i].Date < s.Days[j].Date })
	s.ProgressPercentage = percentage(s.CompletedTasks, s.TotalTasks)
	return s
}
