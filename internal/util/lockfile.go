package util

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/nakachan-ing/daytask/internal/model"
	"gopkg.in/yaml.v3"
)

var ErrLocked = errors.New("data directory is locked by another process")

// AcquireLock creates lockFileName exclusively. A lock older than staleAfter
// is assumed abandoned and replaced. The returned func removes the lock.
func AcquireLock(lockFileName string, staleAfter time.Duration) (func() error, error) {
	info, err := lockInfo(time.Now())
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(lockFileName, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err == nil {
			_, werr := f.Write(info)
			cerr := f.Close()
			if werr != nil || cerr != nil {
				os.Remove(lockFileName)
				return nil, fmt.Errorf("failed to write lock file: %w", errors.Join(werr, cerr))
			}
			return func() error { return os.Remove(lockFileName) }, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("failed to create lock file: %w", err)
		}

		held, rerr := ReadLock(lockFileName)
		if rerr == nil && !isStale(held, staleAfter) {
			return nil, fmt.Errorf("%w (pid %d, user %s, since %s)", ErrLocked, held.Pid, held.User, held.TimeStamp)
		}
		if err := os.Remove(lockFileName); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to remove stale lock file: %w", err)
		}
	}
	return nil, ErrLocked
}

func ReadLock(lockFileName string) (model.LockFile, error) {
	var lock model.LockFile
	data, err := os.ReadFile(lockFileName)
	if err != nil {
		return lock, err
	}
	if err := yaml.Unmarshal(data, &lock); err != nil {
		return lock, fmt.Errorf("failed to parse lock file: %w", err)
	}
	return lock, nil
}

func isStale(lock model.LockFile, staleAfter time.Duration) bool {
	ts, err := time.Parse(time.RFC3339, lock.TimeStamp)
	if err != nil {
		return true
	}
	return time.Since(ts) > staleAfter
}

func lockInfo(t time.Time) ([]byte, error) {
	user := os.Getenv("USER")
	if user == "" {
		user = os.Getenv("USERNAME")
	}
	if user == "" {
		user = "unknown"
	}

	lockFile := model.LockFile{User: user, Pid: os.Getpid(), TimeStamp: t.UTC().Format(time.RFC3339)}
	info, err := yaml.Marshal(&lockFile)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return info, nil
}
