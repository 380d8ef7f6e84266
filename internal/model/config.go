package model

type Config struct {
	DataDir  string `yaml:"data_dir"`
	Timezone string `yaml:"timezone"` // IANA name or "Local"
	Editor   string `yaml:"editor"`
	Storage  struct {
		Backend string `yaml:"backend"` // file, redis
		Redis   struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"storage"`
	Log struct {
		Level    string `yaml:"level"`
		Format   string `yaml:"format"` // console, json
		Output   string `yaml:"output"` // stderr, file
		Filename string `yaml:"filename"`
	} `yaml:"log"`
}

func DefaultConfig() Config {
	var c Config
	c.DataDir = "~/.config/daytask/data"
	c.Timezone = "Local"
	c.Editor = "vim"
	c.Storage.Backend = "file"
	c.Storage.Redis.Addr = "localhost:6379"
	c.Storage.Redis.Prefix = "daytask:"
	c.Log.Level = "warn"
	c.Log.Format = "console"
	c.Log.Output = "stderr"
	return c
}
