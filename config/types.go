package config

import (
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Loader reads PrepConfig from layered config files, environment variables and flags.
type Loader struct {
	instance   *viper.Viper
	opts       ConfigOptions
	files      []string
	watchOnce  sync.Once
	watchMutex sync.RWMutex
}

type ConfigOptions struct {
	BasePath  string
	FileName  string
	FileType  string
	EnvPrefix string
	Mode      Mode
	// ConfigFile, when set, is the only file read and must exist.
	ConfigFile string
	WatchAble  bool
	OnChange   func(e fsnotify.Event)
}
