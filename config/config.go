package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/creasty/defaults"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	apperrors "github.com/xXAI-botXx/3xM/errors"
)

// DefaultConfigOptions looks for dataprep.yaml in the working directory, or in
// DATAPREP_CONFIG_PATH when set.
func DefaultConfigOptions() ConfigOptions {
	basePath := os.Getenv("DATAPREP_CONFIG_PATH")
	if basePath == "" {
		basePath = "."
	}

	return ConfigOptions{
		BasePath:  basePath,
		FileName:  "dataprep",
		FileType:  "yaml",
		EnvPrefix: "DATAPREP",
		Mode:      ModeFromEnv(),
	}
}

// NewLoader creates a loader. Config files are optional unless opts.ConfigFile
// names one explicitly.
func NewLoader(optsArr ...ConfigOptions) (*Loader, error) {
	opts := DefaultConfigOptions()
	if len(optsArr) > 0 {
		opts = optsArr[0]
	}
	if opts.FileType == "" {
		opts.FileType = "yaml"
	}

	instance, files, err := CreateConfig(opts)
	if err != nil {
		return nil, err
	}
	return &Loader{instance: instance, opts: opts, files: files}, nil
}

// Files returns the config files that were read, lowest priority first.
func (l *Loader) Files() []string {
	return l.files
}

// Viper exposes the underlying instance.
func (l *Loader) Viper() *viper.Viper {
	return l.instance
}

// BindFlags binds command-line flags to config keys. Flags the user actually
// set override files and environment.
func (l *Loader) BindFlags(fs *pflag.FlagSet, keys map[string]string) error {
	for flagName, key := range keys {
		flag := fs.Lookup(flagName)
		if flag == nil {
			return fmt.Errorf("unknown flag %q", flagName)
		}
		if err := l.instance.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind flag %s: %w", flagName, err)
		}
	}
	return nil
}

// Set overrides a single key.
func (l *Loader) Set(key string, value any) {
	l.watchMutex.Lock()
	defer l.watchMutex.Unlock()
	l.instance.Set(key, value)
}

// Load decodes, defaults and validates a PrepConfig.
func (l *Loader) Load() (*PrepConfig, error) {
	l.watchMutex.RLock()
	defer l.watchMutex.RUnlock()

	cfg := &PrepConfig{}
	if err := l.bind(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// bind applies struct defaults, decodes every layer over them and fills what
// is still empty.
func (l *Loader) bind(instance any) error {
	if err := defaults.Set(instance); err != nil {
		return fmt.Errorf("failed to set defaults: %w", err)
	}
	if err := l.instance.Unmarshal(instance); err != nil {
		return apperrors.WrapWithType(err, apperrors.ErrorTypeInvalid,
			fmt.Sprintf("failed to decode config %v", l.files))
	}
	if err := defaults.Set(instance); err != nil {
		return fmt.Errorf("failed to set defaults after unmarshal: %w", err)
	}
	return nil
}

// Watch reloads the configuration when the highest-priority config file
// changes and passes the result to onChange. It reports false when no config
// file was read.
func (l *Loader) Watch(onChange func(*PrepConfig, error)) bool {
	if len(l.files) == 0 {
		return false
	}
	l.watchOnce.Do(func() {
		l.instance.OnConfigChange(func(e fsnotify.Event) {
			// viper re-reads only the watched file; restore the other layers.
			l.watchMutex.Lock()
			err := readFiles(l.instance, l.files)
			l.watchMutex.Unlock()
			if err != nil {
				onChange(nil, err)
				return
			}
			if l.opts.OnChange != nil {
				l.opts.OnChange(e)
			}
			onChange(l.Load())
		})
		l.instance.WatchConfig()
	})
	return true
}

// CreateConfig builds a viper instance from the layered files in opts and binds
// every PrepConfig key to its environment variable.
func CreateConfig(opts ConfigOptions) (*viper.Viper, []string, error) {
	var configPaths []string
	if opts.ConfigFile != "" {
		if _, err := os.Stat(opts.ConfigFile); err != nil {
			return nil, nil, apperrors.NewInvalid("config", opts.ConfigFile, "file not found")
		}
		configPaths = []string{opts.ConfigFile}
	} else {
		configPaths = getConfigFilePaths(opts)
	}

	v := viper.New()
	if opts.ConfigFile == "" {
		v.SetConfigType(opts.FileType)
	}
	if err := readFiles(v, configPaths); err != nil {
		return nil, nil, err
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	if opts.EnvPrefix != "" {
		v.SetEnvPrefix(opts.EnvPrefix)
	}
	v.AutomaticEnv()
	for _, key := range structKeys(reflect.TypeOf(PrepConfig{}), "") {
		if err := v.BindEnv(key); err != nil {
			return nil, nil, err
		}
	}
	setViperDefaults(v)

	return v, configPaths, nil
}

// readFiles reads files in order, each one overriding keys of the previous.
func readFiles(v *viper.Viper, files []string) error {
	for i, file := range files {
		v.SetConfigFile(file)
		var err error
		if i == 0 {
			err = v.ReadInConfig()
		} else {
			err = v.MergeInConfig()
		}
		if err != nil {
			return apperrors.WrapWithType(err, apperrors.ErrorTypeInvalid,
				fmt.Sprintf("error reading config file %s", file))
		}
	}
	return nil
}

// structKeys lists the dotted mapstructure keys of every leaf field of t.
func structKeys(t reflect.Type, prefix string) []string {
	var keys []string
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := strings.Split(field.Tag.Get("mapstructure"), ",")[0]
		if tag == "" || tag == "-" {
			continue
		}
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}
		if field.Type.Kind() == reflect.Struct && field.Type.String() != "time.Time" {
			keys = append(keys, structKeys(field.Type, key)...)
			continue
		}
		keys = append(keys, key)
	}
	return keys
}

// getConfigFilePaths returns the existing layered config files, lowest priority
// first: base, base.local, then the mode-specific variants.
func getConfigFilePaths(opts ConfigOptions) (configFiles []string) {
	mode := opts.Mode
	if mode == "" {
		mode = DevMode
	}

	fileNames := []string{
		opts.FileName,
		opts.FileName + ".local",
	}
	for _, suffix := range append(mode.aliases(), string(mode)) {
		fileNames = append(fileNames,
			fmt.Sprintf("%s.%s", opts.FileName, suffix),
			fmt.Sprintf("%s.%s.local", opts.FileName, suffix),
		)
	}

	for _, fileName := range fileNames {
		file := filepath.Join(opts.BasePath, fmt.Sprintf("%s.%s", fileName, opts.FileType))
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			configFiles = append(configFiles, file)
		}
	}
	return configFiles
}
