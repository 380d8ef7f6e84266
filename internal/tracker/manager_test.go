package tracker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nakachan-ing/daytask/internal/logger"
	"github.com/nakachan-ing/daytask/internal/model"
	"github.com/nakachan-ing/daytask/internal/store"
)

func fixedClock(date string) Clock {
	d, err := time.ParseInLocation(model.DateLayout, date, time.UTC)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return d.Add(9 * time.Hour) }
}

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("task-%03d", n)
	}
}

func newTestManager(t *testing.T, s store.Store, today string) *Manager {
	t.Helper()
	return NewManager(s, logger.NewNop(),
		WithClock(fixedClock(today)),
		WithLocation(time.UTC),
		WithIDGenerator(sequentialIDs()),
	)
}

// failingStore wraps a MemoryStore and rejects writes to the listed keys.
type failingStore struct {
	*store.MemoryStore
	mu   sync.Mutex
	fail map[string]bool
}

func (s *failingStore) Write(ctx context.Context, key string, data []byte) error {
	s.mu.Lock()
	fail := s.fail[key]
	s.mu.Unlock()
	if fail {
		return errors.New("disk full")
	}
	return s.MemoryStore.Write(ctx, key, data)
}

func (s *failingStore) setFail(key string, fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[key] = fail
}

func ids(tasks []model.Task) []string {
	out := []string{}
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func TestDailyScenario(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, store.NewMemoryStore(), "2024-01-01")

	a, err := m.CreateTask(ctx, "Buy milk", nil)
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	b, err := m.CreateTask(ctx, "Call dentist", nil)
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	a = m.ToggleCompletion(ctx, a)
	if !a.IsCompleted {
		t.Fatal("expected A to be completed")
	}

	p, ok := m.GetProgress(ctx, "2024-01-01")
	want := model.DailyProgress{Date: "2024-01-01", CompletedTasks: 1, TotalTasks: 2, ProgressPercentage: 50}
	if !ok || p != want {
		t.Errorf("GetProgress() = %+v, %v; want %+v", p, ok, want)
	}

	b = m.PostponeTask(ctx, b)
	if b.Date != "2024-01-02" || b.PostponedCount != 1 {
		t.Errorf("unexpected postponed task: %+v", b)
	}

	today := m.ListTasksForDate(ctx, "2024-01-01")
	if len(today) != 1 || today[0].ID != a.ID {
		t.Errorf("expected only A on 2024-01-01, got %v", ids(today))
	}
	tomorrow := m.ListTasksForDate(ctx, "2024-01-02")
	if len(tomorrow) != 1 || tomorrow[0].ID != b.ID || tomorrow[0].PostponedCount != 1 {
		t.Errorf("expected B on 2024-01-02, got %+v", tomorrow)
	}

	p, _ = m.GetProgress(ctx, "2024-01-01")
	want = model.DailyProgress{Date: "2024-01-01", CompletedTasks: 1, TotalTasks: 1, ProgressPercentage: 100}
	if p != want {
		t.Errorf("GetProgress(old date) = %+v, want %+v", p, want)
	}
	p, _ = m.GetProgress(ctx, "2024-01-02")
	want = model.DailyProgress{Date: "2024-01-02", CompletedTasks: 0, TotalTasks: 1, ProgressPercentage: 0}
	if p != want {
		t.Errorf("GetProgress(new date) = %+v, want %+v", p, want)
	}
}

func TestCreateTask(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, store.NewMemoryStore(), "2024-05-10")

	task, err := m.CreateTask(ctx, "  Water plants  ", model.DetectMedia("https://example.com/fern.png"))
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if task.Title != "Water plants" {
		t.Errorf("expected trimmed title, got %q", task.Title)
	}
	if task.Date != "2024-05-10" || task.IsCompleted || task.PostponedCount != 0 {
		t.Errorf("unexpected defaults: %+v", task)
	}
	if task.Media == nil || task.Media.Type != model.MediaImage {
		t.Errorf("expected image media, got %+v", task.Media)
	}

	found := m.ListTasksForDate(ctx, task.Date)
	if len(found) != 1 || !reflect.DeepEqual(found[0], task) {
		t.Errorf("created task not listed: %+v", found)
	}
}

func TestCreateTaskPrepends(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, store.NewMemoryStore(), "2024-01-01")

	for _, title := range []string{"first", "second", "third"} {
		if _, err := m.CreateTask(ctx, title, nil); err != nil {
			t.Fatalf("CreateTask(%s) failed: %v", title, err)
		}
	}

	got := ids(m.ListTasksForDate(ctx, "2024-01-01"))
	want := []string{"task-003", "task-002", "task-001"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestCreateTaskRejectsBlankTitle(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	m := newTestManager(t, mem, "2024-01-01")

	for _, title := range []string{"", "   ", "\t\n"} {
		if _, err := m.CreateTask(ctx, title, nil); !errors.Is(err, ErrEmptyTitle) {
			t.Errorf("CreateTask(%q) error = %v, want ErrEmptyTitle", title, err)
		}
	}

	if _, err := mem.Read(ctx, store.TasksKey); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("store should not be touched on validation failure, got %v", err)
	}
}

func TestCreateTaskRejectsInvalidMedia(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, store.NewMemoryStore(), "2024-01-01")

	_, err := m.CreateTask(ctx, "Read article", &model.TaskMedia{Type: "video", URL: "https://example.com"})
	if err == nil {
		t.Fatal("expected validation error for unknown media type")
	}
	if len(m.ListAllTasks(ctx)) != 0 {
		t.Error("invalid task must not be stored")
	}
}

func TestToggleCompletionIsItsOwnInverse(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, store.NewMemoryStore(), "2024-01-01")

	a, _ := m.CreateTask(ctx, "Buy milk", nil)
	if _, err := m.CreateTask(ctx, "Call dentist", nil); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	before, _ := m.GetProgress(ctx, "2024-01-01")

	once := m.ToggleCompletion(ctx, a)
	twice := m.ToggleCompletion(ctx, once)

	if twice.IsCompleted != a.IsCompleted {
		t.Errorf("double toggle changed completion: %v -> %v", a.IsCompleted, twice.IsCompleted)
	}
	after, _ := m.GetProgress(ctx, "2024-01-01")
	if after != before {
		t.Errorf("progress not restored: before %+v, after %+v", before, after)
	}
}

func TestPostponeIncrementsByOne(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, store.NewMemoryStore(), "2024-12-31")

	task, _ := m.CreateTask(ctx, "File taxes", nil)
	for i, want := range []string{"2025-01-01", "2025-01-02", "2025-01-03"} {
		oldDate := task.Date
		task = m.PostponeTask(ctx, task)
		if task.Date != want {
			t.Errorf("postpone %d: date = %s, want %s", i+1, task.Date, want)
		}
		if task.PostponedCount != i+1 {
			t.Errorf("postpone %d: count = %d", i+1, task.PostponedCount)
		}
		if len(m.ListTasksForDate(ctx, oldDate)) != 0 {
			t.Errorf("task still listed on %s", oldDate)
		}
	}
}

func TestPostponeAcrossDST(t *testing.T) {
	newYork, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	ctx := context.Background()
	clock := func() time.Time { return time.Date(2024, 3, 10, 12, 0, 0, 0, newYork) }
	m := NewManager(store.NewMemoryStore(), logger.NewNop(), WithClock(clock), WithLocation(newYork))

	task, _ := m.CreateTask(ctx, "Change clocks", nil)
	task = m.PostponeTask(ctx, task)
	if task.Date != "2024-03-11" {
		t.Errorf("expected 2024-03-11, got %s", task.Date)
	}
}

func TestPostponeUsesStoredDate(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, store.NewMemoryStore(), "2024-01-01")

	task, _ := m.CreateTask(ctx, "Stretch", nil)
	moved := m.PostponeTask(ctx, task)

	// postponing the stale copy still moves from the stored date
	again := m.PostponeTask(ctx, task)
	if again.Date != "2024-01-03" || again.PostponedCount != 2 {
		t.Errorf("expected second postpone from %s, got %+v", moved.Date, again)
	}
}

func TestRecomputeProgressIsIdempotent(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, store.NewMemoryStore(), "2024-01-01")

	a, _ := m.CreateTask(ctx, "one", nil)
	m.CreateTask(ctx, "two", nil)
	m.CreateTask(ctx, "three", nil)
	m.ToggleCompletion(ctx, a)

	first := m.RecomputeProgress(ctx, "2024-01-01")
	allFirst := m.ListAllProgress(ctx)
	second := m.RecomputeProgress(ctx, "2024-01-01")
	allSecond := m.ListAllProgress(ctx)

	if first != second {
		t.Errorf("recompute not idempotent: %+v vs %+v", first, second)
	}
	if !reflect.DeepEqual(allFirst, allSecond) {
		t.Errorf("progress collection changed: %+v vs %+v", allFirst, allSecond)
	}
	if first.ProgressPercentage != 33 {
		t.Errorf("expected 33%%, got %d", first.ProgressPercentage)
	}
}

func TestProgressBounds(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, store.NewMemoryStore(), "2024-01-01")

	tasks := []model.Task{}
	for i := 0; i < 7; i++ {
		task, _ := m.CreateTask(ctx, fmt.Sprintf("task %d", i), nil)
		tasks = append(tasks, task)
	}
	for i, task := range tasks {
		if i%2 == 0 {
			m.ToggleCompletion(ctx, task)
		}
		if i%3 == 0 {
			m.PostponeTask(ctx, task)
		}
	}
	m.RecomputeProgress(ctx, "2024-01-05")

	for _, p := range m.ListAllProgress(ctx) {
		if p.ProgressPercentage < 0 || p.ProgressPercentage > 100 {
			t.Errorf("%s: percentage %d out of range", p.Date, p.ProgressPercentage)
		}
		if p.TotalTasks == 0 && p.ProgressPercentage != 0 {
			t.Errorf("%s: expected 0%% with no tasks, got %d", p.Date, p.ProgressPercentage)
		}
		if p.CompletedTasks > p.TotalTasks {
			t.Errorf("%s: completed %d > total %d", p.Date, p.CompletedTasks, p.TotalTasks)
		}
	}
}

func TestGetProgressAbsent(t *testing.T) {
	m := newTestManager(t, store.NewMemoryStore(), "2024-01-01")

	p, ok := m.GetProgress(context.Background(), "1999-12-31")
	if ok {
		t.Error("expected no record")
	}
	if p != model.EmptyProgress("1999-12-31") {
		t.Errorf("expected zero progress, got %+v", p)
	}
}

func TestDeleteTask(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, store.NewMemoryStore(), "2024-01-01")

	a, _ := m.CreateTask(ctx, "keep", nil)
	b, _ := m.CreateTask(ctx, "drop", nil)
	m.ToggleCompletion(ctx, a)

	m.DeleteTask(ctx, b.ID)

	remaining := m.ListAllTasks(ctx)
	if len(remaining) != 1 || remaining[0].ID != a.ID {
		t.Errorf("unexpected tasks after delete: %v", ids(remaining))
	}
	p, _ := m.GetProgress(ctx, "2024-01-01")
	if p.TotalTasks != 1 || p.ProgressPercentage != 100 {
		t.Errorf("progress not refreshed after delete: %+v", p)
	}
}

func TestDeleteUnknownIDChangesNothing(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	m := newTestManager(t, mem, "2024-01-01")

	a, _ := m.CreateTask(ctx, "Buy milk", nil)
	m.ToggleCompletion(ctx, a)

	tasksBefore, _ := mem.Read(ctx, store.TasksKey)
	progressBefore, _ := mem.Read(ctx, store.ProgressKey)

	m.DeleteTask(ctx, "does-not-exist")
	m.DeleteTask(ctx, "does-not-exist")

	tasksAfter, _ := mem.Read(ctx, store.TasksKey)
	progressAfter, _ := mem.Read(ctx, store.ProgressKey)
	if string(tasksBefore) != string(tasksAfter) {
		t.Error("task collection changed")
	}
	if string(progressBefore) != string(progressAfter) {
		t.Error("progress collection changed")
	}
}

func TestUpdateTask(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, store.NewMemoryStore(), "2024-01-01")

	task, _ := m.CreateTask(ctx, "Draft", nil)
	task.Title = "  Final \n"
	task.IsCompleted = true
	task.Date = "2024-01-05"
	if err := m.UpdateTask(ctx, task); err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}

	got := m.ListTasksForDate(ctx, "2024-01-05")
	if len(got) != 1 || got[0].Title != "Final" {
		t.Errorf("update not stored: %+v", got)
	}
	oldP, _ := m.GetProgress(ctx, "2024-01-01")
	if oldP.TotalTasks != 0 {
		t.Errorf("old date progress not refreshed: %+v", oldP)
	}
	newP, _ := m.GetProgress(ctx, "2024-01-05")
	if newP.TotalTasks != 1 || newP.ProgressPercentage != 100 {
		t.Errorf("new date progress not refreshed: %+v", newP)
	}
}

func TestUpdateTaskValidation(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, store.NewMemoryStore(), "2024-01-01")

	task, _ := m.CreateTask(ctx, "Draft", nil)

	blank := task
	blank.Title = " "
	if err := m.UpdateTask(ctx, blank); !errors.Is(err, ErrEmptyTitle) {
		t.Errorf("expected ErrEmptyTitle, got %v", err)
	}

	badDate := task
	badDate.Date = "tomorrow"
	if err := m.UpdateTask(ctx, badDate); err == nil {
		t.Error("expected validation error for bad date")
	}

	if got := m.ListAllTasks(ctx); got[0].Title != "Draft" || got[0].Date != "2024-01-01" {
		t.Errorf("rejected update was stored: %+v", got[0])
	}
}

func TestUnknownIDIsNoOp(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, store.NewMemoryStore(), "2024-01-01")
	m.CreateTask(ctx, "real", nil)

	ghost := model.Task{ID: "ghost", Title: "ghost", Date: "2024-01-01"}
	if err := m.UpdateTask(ctx, ghost); err != nil {
		t.Errorf("UpdateTask(unknown) error = %v", err)
	}
	if got := m.ToggleCompletion(ctx, ghost); got != ghost {
		t.Errorf("ToggleCompletion(unknown) = %+v", got)
	}
	if got := m.PostponeTask(ctx, ghost); got != ghost {
		t.Errorf("PostponeTask(unknown) = %+v", got)
	}

	all := m.ListAllTasks(ctx)
	if len(all) != 1 || all[0].Title != "real" {
		t.Errorf("unexpected tasks: %+v", all)
	}
}

func TestDatesWithTasks(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, store.NewMemoryStore(), "2024-01-01")

	a, _ := m.CreateTask(ctx, "a", nil)
	m.CreateTask(ctx, "b", nil)
	m.PostponeTask(ctx, a)

	got := m.DatesWithTasks(ctx)
	want := []string{"2024-01-01", "2024-01-02"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DatesWithTasks() = %v, want %v", got, want)
	}
}

func TestFindTaskByPrefix(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, store.NewMemoryStore(), "2024-01-01")

	for i := 0; i < 12; i++ {
		m.CreateTask(ctx, fmt.Sprintf("t%d", i), nil)
	}

	if task, ok := m.FindTask(ctx, "task-007"); !ok || task.Title != "t6" {
		t.Errorf("exact lookup failed: %+v %v", task, ok)
	}
	if task, ok := m.FindTask(ctx, "task-012"); !ok || task.Title != "t11" {
		t.Errorf("exact lookup failed: %+v %v", task, ok)
	}
	if _, ok := m.FindTask(ctx, "task-01"); ok {
		t.Error("ambiguous prefix should not match")
	}
	if _, ok := m.FindTask(ctx, ""); ok {
		t.Error("empty id should not match")
	}
}

func TestStorageFailuresAreSwallowed(t *testing.T) {
	ctx := context.Background()
	fs := &failingStore{MemoryStore: store.NewMemoryStore(), fail: map[string]bool{}}
	m := newTestManager(t, fs, "2024-01-01")

	a, err := m.CreateTask(ctx, "Buy milk", nil)
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	fs.setFail(store.TasksKey, true)

	if _, err := m.CreateTask(ctx, "lost", nil); err != nil {
		t.Errorf("storage failure surfaced from CreateTask: %v", err)
	}
	if got := m.ToggleCompletion(ctx, a); got.IsCompleted {
		t.Error("toggle should report the unchanged task when the write fails")
	}
	if got := m.PostponeTask(ctx, a); got.Date != "2024-01-01" || got.PostponedCount != 0 {
		t.Errorf("postpone should report the unchanged task when the write fails: %+v", got)
	}
	m.DeleteTask(ctx, a.ID)

	fs.setFail(store.TasksKey, false)
	all := m.ListAllTasks(ctx)
	if len(all) != 1 || all[0].ID != a.ID || all[0].IsCompleted {
		t.Errorf("failed writes changed stored tasks: %+v", all)
	}
	p, _ := m.GetProgress(ctx, "2024-01-01")
	if p.TotalTasks != 1 || p.CompletedTasks != 0 {
		t.Errorf("progress drifted from stored tasks: %+v", p)
	}
}

func TestProgressWriteFailureKeepsTasks(t *testing.T) {
	ctx := context.Background()
	fs := &failingStore{MemoryStore: store.NewMemoryStore(), fail: map[string]bool{store.ProgressKey: true}}
	m := newTestManager(t, fs, "2024-01-01")

	a, _ := m.CreateTask(ctx, "Buy milk", nil)
	a = m.ToggleCompletion(ctx, a)
	if !a.IsCompleted {
		t.Error("task write should succeed independently of progress")
	}
	if _, ok := m.GetProgress(ctx, "2024-01-01"); ok {
		t.Error("no progress record should exist")
	}

	fs.setFail(store.ProgressKey, false)
	p := m.RecomputeProgress(ctx, "2024-01-01")
	if p.ProgressPercentage != 100 {
		t.Errorf("recompute should recover from tasks, got %+v", p)
	}
}

func TestStorageFailuresLogTheError(t *testing.T) {
	ctx := context.Background()
	logFile := filepath.Join(t.TempDir(), "daytask.log")
	log, err := logger.New(logger.Config{Level: "error", Format: "json", Output: "file", Filename: logFile})
	if err != nil {
		t.Fatalf("logger.New failed: %v", err)
	}

	fs := &failingStore{MemoryStore: store.NewMemoryStore(), fail: map[string]bool{store.ProgressKey: true}}
	m := NewManager(fs, log, WithClock(fixedClock("2024-01-01")), WithLocation(time.UTC))
	task, _ := m.CreateTask(ctx, "Buy milk", nil)

	fs.setFail(store.TasksKey, true)
	m.ToggleCompletion(ctx, task)
	log.Sync()

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	for _, want := range []string{
		`"msg":"failed to save progress"`,
		`"date":"2024-01-01"`,
		`"msg":"failed to save tasks"`,
		`"error":"failed to write tasks: disk full"`,
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("expected %s in log:\n%s", want, data)
		}
	}
}

func TestMalformedStoreReadsAsEmpty(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	mem.Write(ctx, store.TasksKey, []byte("not json"))
	m := newTestManager(t, mem, "2024-01-01")

	if got := m.ListTasksForDate(ctx, "2024-01-01"); len(got) != 0 {
		t.Errorf("expected no tasks, got %+v", got)
	}
	if _, err := m.CreateTask(ctx, "fresh start", nil); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if got := m.ListAllTasks(ctx); len(got) != 1 {
		t.Errorf("expected 1 task, got %d", len(got))
	}
}

func TestConcurrentCreatesLoseNothing(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, store.NewMemoryStore(), "2024-01-01")

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := m.CreateTask(ctx, fmt.Sprintf("task %d", i), nil); err != nil {
				t.Errorf("CreateTask failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if got := len(m.ListAllTasks(ctx)); got != n {
		t.Errorf("expected %d tasks, got %d", n, got)
	}
	p, _ := m.GetProgress(ctx, "2024-01-01")
	if p.TotalTasks != n {
		t.Errorf("expected progress total %d, got %d", n, p.TotalTasks)
	}
}

func TestFileStoreBackedManager(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	fs, err := store.NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	m := newTestManager(t, fs, "2024-01-01")
	a, _ := m.CreateTask(ctx, "persist me", nil)
	m.ToggleCompletion(ctx, a)

	reopened, err := store.NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	m2 := newTestManager(t, reopened, "2024-01-01")
	got := m2.ListTasksForDate(ctx, "2024-01-01")
	if len(got) != 1 || !got[0].IsCompleted {
		t.Errorf("unexpected tasks after reopen: %+v", got)
	}
	if p, ok := m2.GetProgress(ctx, "2024-01-01"); !ok || p.ProgressPercentage != 100 {
		t.Errorf("unexpected progress after reopen: %+v %v", p, ok)
	}
}
