package util

import (
	"strings"
	"time"

	"github.com/nakachan-ing/daytask/internal/model"
)

// FilterTasks keeps tasks whose title contains query (case-insensitive) and
// whose date falls within [fromDate, toDate]. Empty arguments do not filter.
func FilterTasks(tasks []model.Task, query, fromDate, toDate string) []model.Task {
	query = strings.ToLower(strings.TrimSpace(query))
	filtered := []model.Task{}

	for _, task := range tasks {
		if query != "" && !strings.Contains(strings.ToLower(task.Title), query) {
			continue
		}
		if !IsWithinDateRange(task.Date, fromDate, toDate) {
			continue
		}
		filtered = append(filtered, task)
	}

	return filtered
}

// IsWithinDateRange reports whether date lies in the inclusive range.
// Unparseable bounds are ignored; an unparseable date never matches a range.
func IsWithinDateRange(date string, fromDate, toDate string) bool {
	if fromDate == "" && toDate == "" {
		return true
	}

	t, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return false
	}

	if fromDate != "" {
		fromTime, err := time.Parse(model.DateLayout, fromDate)
		if err == nil && t.Before(fromTime) {
			return false
		}
	}

	if toDate != "" {
		toTime, err := time.Parse(model.DateLayout, toDate)
		if err == nil && t.After(toTime) {
			return false
		}
	}

	return true
}
