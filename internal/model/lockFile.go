package model

type LockFile struct {
	User      string `yaml:"user"`
	Pid       int    `yaml:"pid"`
	TimeStamp string `yaml:"timestamp"` // RFC3339
}
