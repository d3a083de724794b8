// Package config provides schema-validated configuration management for
// snmpinfo deployments.
//
// Configuration files are YAML or JSON, validated against a CUE schema
// before use. The package ships an embedded schema covering logging,
// device targets and classifier rule overrides; deployments with extra
// needs supply their own schema file. Environment variables are expanded
// in the raw file content (${VAR} and ${VAR:-default}) before parsing, and
// schema defaults are merged under the user configuration.
//
// Basic Usage:
//
//	mgr, err := config.NewManager(config.Options{ConfigPath: "snmpinfo.yaml"})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer mgr.Close()
//
//	level, _ := mgr.GetString("logging.level")
//	devices, _ := mgr.Devices()
//
// Hot Reload:
//
//	mgr, err := config.NewManager(config.Options{
//		ConfigPath:      "snmpinfo.yaml",
//		EnableHotReload: true,
//	})
//	mgr.OnChange(func(err error) {
//		if err != nil {
//			log.Printf("reload failed: %v", err)
//		}
//	})
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueyaml "cuelang.org/go/encoding/yaml"
	"github.com/fsnotify/fsnotify"

	"github.com/geekxflood/snmpinfo/classify"
)

//go:embed schema.cue
var defaultSchema string

// Options configures a Manager.
type Options struct {
	// SchemaPath points at a CUE schema file. Empty uses SchemaContent.
	SchemaPath string

	// SchemaContent is inline CUE schema source. Empty falls back to the
	// embedded snmpinfo schema.
	SchemaContent string

	// ConfigPath is the YAML or JSON configuration file. Empty yields a
	// manager serving schema defaults only.
	ConfigPath string

	// EnableHotReload watches ConfigPath and reloads on change.
	EnableHotReload bool
}

// Manager provides validated, type-safe access to configuration values by
// dot-notation path.
type Manager interface {
	GetString(path string, defaultValue ...string) (string, error)
	GetInt(path string, defaultValue ...int) (int, error)
	GetBool(path string, defaultValue ...bool) (bool, error)
	GetDuration(path string, defaultValue ...time.Duration) (time.Duration, error)
	GetStringSlice(path string, defaultValue ...[]string) ([]string, error)

	// GetValue returns the raw value at a path.
	GetValue(path string) (any, error)

	// Devices returns the per-target device configuration maps, ready to
	// hand to device.New.
	Devices() ([]map[string]any, error)

	// ClassifierRules returns the classifier rule overrides, in file
	// order.
	ClassifierRules() ([]classify.Rule, error)

	// OnChange registers a hot-reload callback. The callback receives nil
	// on a successful reload and the failure otherwise.
	OnChange(callback func(error))

	// Close stops the file watcher, if any.
	Close() error
}

type manager struct {
	mu        sync.RWMutex
	schema    cue.Value
	ctx       *cue.Context
	options   Options
	merged    map[string]any
	watcher   *fsnotify.Watcher
	done      chan struct{}
	callbacks []func(error)
	cbMu      sync.Mutex
}

// NewManager loads, validates and serves configuration per the options.
func NewManager(options Options) (Manager, error) {
	m := &manager{
		ctx:     cuecontext.New(),
		options: options,
	}

	if err := m.loadSchema(); err != nil {
		return nil, err
	}
	if err := m.load(); err != nil {
		return nil, err
	}
	if options.EnableHotReload && options.ConfigPath != "" {
		if err := m.startWatcher(); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *manager) loadSchema() error {
	content := m.options.SchemaContent
	if m.options.SchemaPath != "" {
		raw, err := os.ReadFile(filepath.Clean(m.options.SchemaPath))
		if err != nil {
			return fmt.Errorf("config: failed to read schema %s: %w", m.options.SchemaPath, err)
		}
		content = string(raw)
	}
	if content == "" {
		content = defaultSchema
	}

	schema := m.ctx.CompileString(content, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("config: invalid CUE schema: %w", err)
	}
	m.schema = schema
	return nil
}

// load reads, expands, validates and merges the configuration file with
// schema defaults.
func (m *manager) load() error {
	defaults, err := m.schemaDefaults()
	if err != nil {
		return err
	}

	userConfig := map[string]any{}
	if m.options.ConfigPath != "" {
		userConfig, err = m.loadConfigFile(m.options.ConfigPath)
		if err != nil {
			return err
		}
		if err := m.validate(userConfig); err != nil {
			return err
		}
	}

	m.mu.Lock()
	m.merged = mergeConfigs(defaults, userConfig)
	m.mu.Unlock()
	return nil
}

// schemaDefaults unifies the schema with an empty configuration to extract
// default values.
func (m *manager) schemaDefaults() (map[string]any, error) {
	unified := m.schema.Unify(m.ctx.Encode(map[string]any{}))
	if err := unified.Err(); err != nil {
		return nil, fmt.Errorf("config: failed to extract schema defaults: %w", err)
	}
	var defaults map[string]any
	if err := unified.Decode(&defaults); err != nil {
		return nil, fmt.Errorf("config: failed to decode schema defaults: %w", err)
	}
	return defaults, nil
}

// validate unifies a configuration with the schema and checks concreteness
// of the result.
func (m *manager) validate(config map[string]any) error {
	value := m.ctx.Encode(config)
	if err := value.Err(); err != nil {
		return fmt.Errorf("config: failed to encode configuration: %w", err)
	}
	unified := m.schema.Unify(value)
	if err := unified.Err(); err != nil {
		return fmt.Errorf("config: validation failed: %w", err)
	}
	if err := unified.Validate(); err != nil {
		return fmt.Errorf("config: validation failed: %w", err)
	}
	return nil
}

func (m *manager) loadConfigFile(path string) (map[string]any, error) {
	cleanPath := filepath.Clean(path)
	content, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read %s: %w", cleanPath, err)
	}
	content = expandEnvironmentVariables(content)
	if strings.TrimSpace(string(content)) == "" {
		return nil, fmt.Errorf("config: file %s is empty", cleanPath)
	}

	var parsed map[string]any
	switch strings.ToLower(filepath.Ext(cleanPath)) {
	case ".yaml", ".yml":
		astFile, err := cueyaml.Extract(cleanPath, content)
		if err != nil {
			return nil, fmt.Errorf("config: failed to parse YAML %s: %w", cleanPath, err)
		}
		value := m.ctx.BuildFile(astFile)
		if value.Err() != nil {
			return nil, fmt.Errorf("config: failed to build YAML %s: %w", cleanPath, value.Err())
		}
		if err := value.Decode(&parsed); err != nil {
			return nil, fmt.Errorf("config: failed to decode YAML %s: %w", cleanPath, err)
		}
	case ".json":
		value := m.ctx.CompileBytes(content, cue.Filename(cleanPath))
		if value.Err() != nil {
			return nil, fmt.Errorf("config: failed to parse JSON %s: %w", cleanPath, value.Err())
		}
		if err := value.Decode(&parsed); err != nil {
			return nil, fmt.Errorf("config: failed to decode JSON %s: %w", cleanPath, err)
		}
	default:
		return nil, fmt.Errorf("config: unsupported file format %s (supported: .yaml, .yml, .json)", cleanPath)
	}
	return parsed, nil
}

// envWithDefault matches ${VAR:-default} expressions.
var envWithDefault = regexp.MustCompile(`\$\{(\w+):-([^}]*)\}`)

// expandEnvironmentVariables substitutes $VAR, ${VAR} and ${VAR:-default}
// patterns with environment values.
func expandEnvironmentVariables(content []byte) []byte {
	expanded := envWithDefault.ReplaceAllStringFunc(string(content), func(match string) string {
		parts := envWithDefault.FindStringSubmatch(match)
		if v, ok := os.LookupEnv(parts[1]); ok {
			return v
		}
		return parts[2]
	})
	return []byte(os.ExpandEnv(expanded))
}

// mergeConfigs merges user configuration over defaults, recursing into
// nested maps.
func mergeConfigs(defaults, user map[string]any) map[string]any {
	result := make(map[string]any, len(defaults)+len(user))
	for k, v := range defaults {
		result[k] = v
	}
	for k, v := range user {
		if dm, ok := result[k].(map[string]any); ok {
			if um, ok := v.(map[string]any); ok {
				result[k] = mergeConfigs(dm, um)
				continue
			}
		}
		result[k] = v
	}
	return result
}

// GetValue returns the raw value at a dot-notation path.
func (m *manager) GetValue(path string) (any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if path == "" {
		return m.merged, nil
	}
	current := m.merged
	parts := strings.Split(path, ".")
	for i, part := range parts {
		value, exists := current[part]
		if !exists {
			return nil, fmt.Errorf("config: path %s not found", path)
		}
		if i == len(parts)-1 {
			return value, nil
		}
		next, ok := value.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("config: path %s: cannot navigate through non-map value", path)
		}
		current = next
	}
	return nil, fmt.Errorf("config: path %s not found", path)
}

func (m *manager) GetString(path string, defaultValue ...string) (string, error) {
	v, err := m.GetValue(path)
	if err != nil {
		if len(defaultValue) > 0 {
			return defaultValue[0], nil
		}
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("config: path %s is %T, not string", path, v)
	}
	return s, nil
}

func (m *manager) GetInt(path string, defaultValue ...int) (int, error) {
	v, err := m.GetValue(path)
	if err != nil {
		if len(defaultValue) > 0 {
			return defaultValue[0], nil
		}
		return 0, err
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("config: path %s is %T, not int", path, v)
	}
}

func (m *manager) GetBool(path string, defaultValue ...bool) (bool, error) {
	v, err := m.GetValue(path)
	if err != nil {
		if len(defaultValue) > 0 {
			return defaultValue[0], nil
		}
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("config: path %s is %T, not bool", path, v)
	}
	return b, nil
}

func (m *manager) GetDuration(path string, defaultValue ...time.Duration) (time.Duration, error) {
	v, err := m.GetValue(path)
	if err != nil {
		if len(defaultValue) > 0 {
			return defaultValue[0], nil
		}
		return 0, err
	}
	switch d := v.(type) {
	case string:
		parsed, err := time.ParseDuration(d)
		if err != nil {
			return 0, fmt.Errorf("config: path %s: %w", path, err)
		}
		return parsed, nil
	case int:
		return time.Duration(d) * time.Second, nil
	case int64:
		return time.Duration(d) * time.Second, nil
	case float64:
		return time.Duration(d * float64(time.Second)), nil
	default:
		return 0, fmt.Errorf("config: path %s is %T, not duration", path, v)
	}
}

func (m *manager) GetStringSlice(path string, defaultValue ...[]string) ([]string, error) {
	v, err := m.GetValue(path)
	if err != nil {
		if len(defaultValue) > 0 {
			return defaultValue[0], nil
		}
		return nil, err
	}
	switch s := v.(type) {
	case []string:
		return s, nil
	case []any:
		result := make([]string, 0, len(s))
		for _, item := range s {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("config: path %s contains non-string element %T", path, item)
			}
			result = append(result, str)
		}
		return result, nil
	default:
		return nil, fmt.Errorf("config: path %s is %T, not string slice", path, v)
	}
}

// Devices returns the per-target configuration maps from the "devices"
// list.
func (m *manager) Devices() ([]map[string]any, error) {
	v, err := m.GetValue("devices")
	if err != nil {
		return nil, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, errors.New("config: devices must be a list")
	}
	devices := make([]map[string]any, 0, len(items))
	for i, item := range items {
		dm, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("config: devices[%d] is %T, not a map", i, item)
		}
		devices = append(devices, dm)
	}
	return devices, nil
}

// ClassifierRules decodes classifier rule overrides from
// "classifier.rules", preserving file order. Rule order is significant:
// within a tier the last matching rule wins.
func (m *manager) ClassifierRules() ([]classify.Rule, error) {
	v, err := m.GetValue("classifier.rules")
	if err != nil {
		return nil, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, errors.New("config: classifier.rules must be a list")
	}
	rules := make([]classify.Rule, 0, len(items))
	for i, item := range items {
		rm, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("config: classifier.rules[%d] is %T, not a map", i, item)
		}
		rule := classify.Rule{}
		if tier, ok := rm["tier"]; ok {
			switch t := tier.(type) {
			case int:
				rule.Tier = t
			case int64:
				rule.Tier = int(t)
			case float64:
				rule.Tier = int(t)
			}
		}
		rule.Pattern, _ = rm["pattern"].(string)
		rule.Class, _ = rm["class"].(string)
		rules = append(rules, rule)
	}
	return rules, nil
}

// OnChange registers a hot-reload callback.
func (m *manager) OnChange(callback func(error)) {
	m.cbMu.Lock()
	defer m.cbMu.Unlock()
	m.callbacks = append(m.callbacks, callback)
}

func (m *manager) notify(err error) {
	m.cbMu.Lock()
	callbacks := make([]func(error), len(m.callbacks))
	copy(callbacks, m.callbacks)
	m.cbMu.Unlock()

	for _, cb := range callbacks {
		cb(err)
	}
}

func (m *manager) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: failed to create file watcher: %w", err)
	}
	if err := watcher.Add(m.options.ConfigPath); err != nil {
		watcher.Close()
		return fmt.Errorf("config: failed to watch %s: %w", m.options.ConfigPath, err)
	}

	m.watcher = watcher
	m.done = make(chan struct{})
	go m.watch()
	return nil
}

func (m *manager) watch() {
	for {
		select {
		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				// Small delay so the writer finishes before we read.
				time.Sleep(100 * time.Millisecond)
				m.notify(m.load())
			}
		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			m.notify(fmt.Errorf("config: file watcher error: %w", err))
		case <-m.done:
			return
		}
	}
}

// Close stops the file watcher, if hot reload was enabled.
func (m *manager) Close() error {
	if m.watcher == nil {
		return nil
	}
	close(m.done)
	err := m.watcher.Close()
	m.watcher = nil
	return err
}
