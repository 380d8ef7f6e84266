package tracker

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nakachan-ing/daytask/internal/logger"
	"github.com/nakachan-ing/daytask/internal/model"
	"github.com/nakachan-ing/daytask/internal/store"
)

var ErrEmptyTitle = errors.New("task title must not be empty")

// Manager applies task mutations as read-modify-write cycles over the store
// and keeps the per-date progress snapshots in step with them.
//
// Storage failures never reach the caller: they are logged and the
// operation degrades to an empty result or leaves things unchanged. Only
// validation errors are returned.
//
// One mutex serializes every cycle, so concurrent callers cannot interleave
// a read and a write and lose an update.
type Manager struct {
	mu    sync.Mutex
	store store.Store
	log   *logger.Logger
	clock Clock
	loc   *time.Location
	newID func() string
}

type Option func(*Manager)

func WithClock(clock Clock) Option {
	return func(m *Manager) { m.clock = clock }
}

func WithLocation(loc *time.Location) Option {
	return func(m *Manager) { m.loc = loc }
}

func WithIDGenerator(newID func() string) Option {
	return func(m *Manager) { m.newID = newID }
}

func NewManager(s store.Store, log *logger.Logger, opts ...Option) *Manager {
	m := &Manager{
		store: s,
		log:   log,
		clock: time.Now,
		loc:   time.Local,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Today is the date new tasks are created on.
func (m *Manager) Today() string {
	return Today(m.clock, m.loc)
}

func (m *Manager) loadTasks(ctx context.Context) []model.Task {
	return store.ReadCollection[model.Task](ctx, m.store, store.TasksKey, m.log)
}

func (m *Manager) loadProgress(ctx context.Context) []model.DailyProgress {
	return store.ReadCollection[model.DailyProgress](ctx, m.store, store.ProgressKey, m.log)
}

// saveTasks reports whether the write was confirmed.
func (m *Manager) saveTasks(ctx context.Context, tasks []model.Task) bool {
	if err := store.WriteCollection(ctx, m.store, store.TasksKey, tasks); err != nil {
		m.log.WithError(err).Errorw("failed to save tasks")
		return false
	}
	return true
}

func (m *Manager) ListTasksForDate(ctx context.Context, date string) []model.Task {
	m.mu.Lock()
	defer m.mu.Unlock()

	tasks := m.loadTasks(ctx)
	filtered := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Date == date {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

func (m *Manager) ListAllTasks(ctx context.Context) []model.Task {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.loadTasks(ctx)
}

// DatesWithTasks returns every date that has at least one task, ascending.
func (m *Manager) DatesWithTasks(ctx context.Context) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[string]bool)
	dates := []string{}
	for _, t := range m.loadTasks(ctx) {
		if !seen[t.Date] {
			seen[t.Date] = true
			dates = append(dates, t.Date)
		}
	}
	sort.Strings(dates)
	return dates
}

// FindTask looks a task up by exact id or by a unique id prefix.
func (m *Manager) FindTask(ctx context.Context, idOrPrefix string) (model.Task, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var match model.Task
	matches := 0
	for _, t := range m.loadTasks(ctx) {
		if t.ID == idOrPrefix {
			return t, true
		}
		if idOrPrefix != "" && strings.HasPrefix(t.ID, idOrPrefix) {
			match = t
			matches++
		}
	}
	return match, matches == 1
}

// CreateTask prepends a new task dated today. A blank title or invalid media
// is rejected before the store is touched.
func (m *Manager) CreateTask(ctx context.Context, title string, media *model.TaskMedia) (model.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return model.Task{}, ErrEmptyTitle
	}

	task := model.Task{
		ID:             m.newID(),
		Title:          title,
		IsCompleted:    false,
		Date:           m.Today(),
		PostponedCount: 0,
		Media:          media,
	}
	if err := model.Validate(task); err != nil {
		return model.Task{}, fmt.Errorf("invalid task: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	tasks := m.loadTasks(ctx)
	tasks = append([]model.Task{task}, tasks...)
	if m.saveTasks(ctx, tasks) {
		m.log.Infow("task created", "id", task.ID, "date", task.Date)
		m.recompute(ctx, tasks, task.Date)
	}
	return task, nil
}

// UpdateTask replaces the stored task with the same id. Unknown ids are
// ignored. Progress is refreshed for the old date and, if it moved, the new one.
func (m *Manager) UpdateTask(ctx context.Context, task model.Task) error {
	task.Title = strings.TrimSpace(task.Title)
	if task.Title == "" {
		return ErrEmptyTitle
	}
	if err := model.Validate(task); err != nil {
		return fmt.Errorf("invalid task: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	tasks := m.loadTasks(ctx)
	i := indexOf(tasks, task.ID)
	if i < 0 {
		m.log.Debugw("update of unknown task ignored", "id", task.ID)
		return nil
	}

	oldDate := tasks[i].Date
	tasks[i] = task
	if m.saveTasks(ctx, tasks) {
		m.recompute(ctx, tasks, oldDate)
		if task.Date != oldDate {
			m.recompute(ctx, tasks, task.Date)
		}
	}
	return nil
}

// DeleteTask removes the task with id. Deleting an absent id changes nothing.
func (m *Manager) DeleteTask(ctx context.Context, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tasks := m.loadTasks(ctx)
	i := indexOf(tasks, id)
	if i < 0 {
		m.log.Debugw("delete of unknown task ignored", "id", id)
		return
	}

	date := tasks[i].Date
	remaining := make([]model.Task, 0, len(tasks)-1)
	remaining = append(remaining, tasks[:i]...)
	remaining = append(remaining, tasks[i+1:]...)
	if m.saveTasks(ctx, remaining) {
		m.log.Infow("task deleted", "id", id)
		m.recompute(ctx, remaining, date)
	}
}

// ToggleCompletion flips the stored task's completion flag. The returned
// task is what the store now holds; if nothing could be saved it is the
// task as it was.
func (m *Manager) ToggleCompletion(ctx context.Context, task model.Task) model.Task {
	m.mu.Lock()
	defer m.mu.Unlock()

	tasks := m.loadTasks(ctx)
	i := indexOf(tasks, task.ID)
	if i < 0 {
		m.log.Debugw("toggle of unknown task ignored", "id", task.ID)
		return task
	}

	before := tasks[i]
	tasks[i] = before.Toggled()
	if !m.saveTasks(ctx, tasks) {
		return before
	}
	m.recompute(ctx, tasks, tasks[i].Date)
	return tasks[i]
}

// PostponeTask moves the task to the day after its current date and bumps
// its postpone counter. Both dates get fresh progress.
func (m *Manager) PostponeTask(ctx context.Context, task model.Task) model.Task {
	m.mu.Lock()
	defer m.mu.Unlock()

	tasks := m.loadTasks(ctx)
	i := indexOf(tasks, task.ID)
	if i < 0 {
		m.log.Debugw("postpone of unknown task ignored", "id", task.ID)
		return task
	}

	before := tasks[i]
	next, err := NextDay(before.Date, m.loc)
	if err != nil {
		m.log.WithError(err).Errorw("cannot postpone task with invalid date", "id", before.ID)
		return before
	}

	tasks[i] = before.Postponed(next)
	if !m.saveTasks(ctx, tasks) {
		return before
	}
	m.log.Infow("task postponed", "id", before.ID, "from", before.Date, "to", next, "count", tasks[i].PostponedCount)
	m.recompute(ctx, tasks, before.Date)
	m.recompute(ctx, tasks, next)
	return tasks[i]
}

// RecomputeProgress rebuilds and stores the snapshot for date.
func (m *Manager) RecomputeProgress(ctx context.Context, date string) model.DailyProgress {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.recompute(ctx, m.loadTasks(ctx), date)
}

func (m *Manager) recompute(ctx context.Context, tasks []model.Task, date string) model.DailyProgress {
	p := ComputeProgress(tasks, date)
	all := upsertProgress(m.loadProgress(ctx), p)
	if err := store.WriteCollection(ctx, m.store, store.ProgressKey, all); err != nil {
		m.log.WithError(err).Errorw("failed to save progress", "date", date)
	}
	return p
}

// GetProgress returns the stored snapshot for date. When there is none it
// returns the zero snapshot and false; callers should treat both the same.
func (m *Manager) GetProgress(ctx context.Context, date string) (model.DailyProgress, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.loadProgress(ctx) {
		if p.Date == date {
			return p, true
		}
	}
	return model.EmptyProgress(date), false
}

func (m *Manager) ListAllProgress(ctx context.Context) []model.DailyProgress {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.loadProgress(ctx)
}

func indexOf(tasks []model.Task, id string) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
