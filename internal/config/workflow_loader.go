package config

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/jwwelbor/shark-orchestrator/internal/models"
	"github.com/spf13/viper"
)

// WorkflowLoader loads the single workflow YAML file at its path into a
// WorkflowConfig snapshot and keeps it current via viper's file-watch
// support. Readers call Current() and always observe a fully-formed
// snapshot; a reload failure leaves the previous snapshot in place and
// is only reported through the optional error callback: a malformed
// document surfaces a load error but the previous snapshot stays live.
//
// The cache is an atomic.Pointer swapped exactly once per file-change
// event (pushed by fsnotify through viper.WatchConfig), giving readers a
// wait-free atomic load on the hot path instead of a mutex-guarded,
// lazily-revalidated cache.
type WorkflowLoader struct {
	v       *viper.Viper
	path    string
	current atomic.Pointer[WorkflowConfig]
	onError func(error)
}

// NewWorkflowLoader creates a loader for the YAML document at path. It
// performs an initial load immediately; if the file is missing, the
// default workflow is used and no error is returned — a missing file is
// not a failure. A malformed document IS an error.
func NewWorkflowLoader(path string) (*WorkflowLoader, error) {
	l := &WorkflowLoader{
		v:    viper.New(),
		path: path,
	}
	l.v.SetConfigFile(path)
	l.v.SetConfigType("yaml")

	if err := l.load(); err != nil {
		if os.IsNotExist(err) {
			l.current.Store(DefaultWorkflow())
		} else {
			return nil, err
		}
	}

	l.v.OnConfigChange(func(_ fsnotify.Event) {
		if err := l.load(); err != nil {
			if l.onError != nil {
				l.onError(models.NewConfigError(l.path, err))
			}
			return
		}
	})
	l.v.WatchConfig()

	return l, nil
}

// OnError registers a callback invoked whenever a hot-reload attempt
// fails. The previous snapshot remains active; this is purely informational.
func (l *WorkflowLoader) OnError(fn func(error)) {
	l.onError = fn
}

// load reads and parses the config file, validates it, and atomically
// swaps the current snapshot on success.
func (l *WorkflowLoader) load() error {
	if err := l.v.ReadInConfig(); err != nil {
		return err
	}

	cfg := &WorkflowConfig{}
	if err := l.v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("parse workflow config: %w", err)
	}
	if err := validateWorkflowConfig(cfg); err != nil {
		return err
	}
	if cfg.CompletionCleanup.RetainTags == nil {
		cfg.CompletionCleanup.RetainTags = DefaultRetainTags
	}

	l.current.Store(cfg)
	return nil
}

// Current returns the latest successfully-loaded snapshot. Never nil.
func (l *WorkflowLoader) Current() *WorkflowConfig {
	cfg := l.current.Load()
	if cfg == nil {
		return DefaultWorkflow()
	}
	return cfg
}

func validateWorkflowConfig(cfg *WorkflowConfig) error {
	if len(cfg.StatusProgression) == 0 {
		return fmt.Errorf("status_progression must define at least one entity type")
	}
	for entityType, prog := range cfg.StatusProgression {
		if len(prog.Roles) == 0 {
			return fmt.Errorf("status_progression.%s.roles must not be empty", entityType)
		}
	}
	return nil
}

// GetWorkflowOrDefault is a convenience constructor: on any loader
// construction failure it logs a single warning to stderr and falls
// back to the default workflow rather than propagating the error.
func GetWorkflowOrDefault(path string) *WorkflowConfig {
	loader, err := NewWorkflowLoader(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load workflow config from %s: %v (using defaults)\n", path, err)
		return DefaultWorkflow()
	}
	return loader.Current()
}
