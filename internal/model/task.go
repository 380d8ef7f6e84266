package model

// DateLayout is the calendar date format every Task and DailyProgress is keyed by.
const DateLayout = "2006-01-02"

type Task struct {
	ID             string     `json:"id" yaml:"id" validate:"required"`
	Title          string     `json:"title" yaml:"title" validate:"required"`
	IsCompleted    bool       `json:"isCompleted" yaml:"completed"`
	Date           string     `json:"date" yaml:"date" validate:"required,datetime=2006-01-02"` // yyyy-mm-dd
	PostponedCount int        `json:"postponedCount" yaml:"postponed_count" validate:"gte=0"`
	Media          *TaskMedia `json:"media,omitempty" yaml:"media,omitempty"`
}

// Toggled returns a copy of t with the completion flag flipped.
func (t Task) Toggled() Task {
	t.IsCompleted = !t.IsCompleted
	return t
}

// Postponed returns a copy of t moved to nextDate with the counter bumped.
func (t Task) Postponed(nextDate string) Task {
	t.Date = nextDate
	t.PostponedCount++
	return t
}
