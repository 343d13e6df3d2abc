package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/vldom/internal/errors"
)

const (
	// ConfigFileName is the name of the JSON configuration file.
	ConfigFileName = "vldom.json"

	// YAMLConfigFileName is the name of the YAML configuration file.
	YAMLConfigFileName = "vldom.yaml"

	// DefaultPort is the default preview server port.
	DefaultPort = 3000

	// DefaultHost is the default preview server host.
	DefaultHost = "localhost"

	// DefaultNamespace is the default Prometheus metric namespace.
	DefaultNamespace = "vldom"

	// DefaultStatePath is the default navigation history database.
	DefaultStatePath = ".vldom/history.db"
)

// Location strategies.
const (
	LocationMemory = "memory"
	LocationHash   = "hash"
	LocationBolt   = "bolt"
)

// Parameter change policies.
const (
	ParamChangeUpdate  = "update"
	ParamChangeRemount = "remount"
)

// Config represents the complete project configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Location selects how the current path is stored: memory, hash or bolt.
	Location string `json:"location,omitempty" yaml:"location,omitempty"`

	// ParamChange selects what happens when only a layer's parameters
	// change: "update" keeps the instance, "remount" rebuilds it.
	ParamChange string `json:"paramChange,omitempty" yaml:"paramChange,omitempty"`

	// Dev contains preview server configuration.
	Dev DevConfig `json:"dev,omitempty" yaml:"dev,omitempty"`

	// Log contains logging configuration.
	Log LogConfig `json:"log,omitempty" yaml:"log,omitempty"`

	// Metrics contains Prometheus configuration.
	Metrics MetricsConfig `json:"metrics,omitempty" yaml:"metrics,omitempty"`

	// State contains persistent navigation history configuration.
	State StateConfig `json:"state,omitempty" yaml:"state,omitempty"`

	// Export contains static export configuration.
	Export ExportConfig `json:"export,omitempty" yaml:"export,omitempty"`

	configPath string
}

// DevConfig contains preview server settings.
type DevConfig struct {
	Port int    `json:"port,omitempty" yaml:"port,omitempty"`
	Host string `json:"host,omitempty" yaml:"host,omitempty"`

	// Live enables the websocket navigation channel.
	Live bool `json:"live,omitempty" yaml:"live,omitempty"`

	// Static is a directory served under /static/, relative to the
	// config file.
	Static string `json:"static,omitempty" yaml:"static,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty" yaml:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
}

// StateConfig contains the bolt location settings.
type StateConfig struct {
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// ExportConfig contains S3 export settings.
type ExportConfig struct {
	Bucket string `json:"bucket,omitempty" yaml:"bucket,omitempty"`
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Region string `json:"region,omitempty" yaml:"region,omitempty"`

	// Endpoint overrides the S3 endpoint (MinIO, LocalStack).
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`

	// PathStyle forces path-style bucket addressing.
	PathStyle bool `json:"pathStyle,omitempty" yaml:"pathStyle,omitempty"`

	// Paths lists the routes to export. Empty means every route
	// without parameters.
	Paths []string `json:"paths,omitempty" yaml:"paths,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Location:    LocationMemory,
		ParamChange: ParamChangeUpdate,
		Dev: DevConfig{
			Port: DefaultPort,
			Host: DefaultHost,
			Live: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: DefaultNamespace,
		},
		State: StateConfig{
			Path: DefaultStatePath,
		},
		Export: ExportConfig{
			Region: "us-east-1",
		},
	}
}

// Load reads configuration from the specified directory.
// vldom.json takes precedence over vldom.yaml.
func Load(dir string) (*Config, error) {
	for _, name := range []string{ConfigFileName, YAMLConfigFileName} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New("E141").
		WithDetail("No vldom.json or vldom.yaml found in " + dir).
		WithSuggestion("Create vldom.json or pass --config")
}

// LoadFile reads configuration from the specified file path. The
// format follows the file extension.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E141").
				WithDetail("No configuration found at " + path)
		}
		return nil, errors.New("E120").Wrap(err)
	}

	cfg := New()
	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.New("E120").
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			WithSuggestion("Check the file for syntax errors")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New("E120").Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E120").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

func (c *Config) applyDefaults() {
	if c.Location == "" {
		c.Location = LocationMemory
	}
	if c.ParamChange == "" {
		c.ParamChange = ParamChangeUpdate
	}
	if c.Dev.Port == 0 {
		c.Dev.Port = DefaultPort
	}
	if c.Dev.Host == "" {
		c.Dev.Host = DefaultHost
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.State.Path == "" {
		c.State.Path = DefaultStatePath
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Dev.Port < 0 || c.Dev.Port > 65535 {
		return errors.New("E121").
			WithDetail("dev.port must be between 0 and 65535")
	}
	switch c.Location {
	case LocationMemory, LocationHash, LocationBolt:
	default:
		return errors.New("E121").
			WithDetailf("location %q is not one of memory, hash, bolt", c.Location)
	}
	switch c.ParamChange {
	case ParamChangeUpdate, ParamChangeRemount:
	default:
		return errors.New("E121").
			WithDetailf("paramChange %q is not one of update, remount", c.ParamChange)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return errors.New("E121").
			WithDetailf("log.format %q is not one of text, json", c.Log.Format)
	}
	return nil
}

// DevAddress returns the address string for the preview server.
func (c *Config) DevAddress() string {
	return c.Dev.Host + ":" + strconv.Itoa(c.Dev.Port)
}

// DevURL returns the full URL for the preview server.
func (c *Config) DevURL() string {
	return "http://" + c.DevAddress()
}

// StatePath returns the absolute path to the navigation history database.
func (c *Config) StatePath() string {
	if filepath.IsAbs(c.State.Path) {
		return c.State.Path
	}
	return filepath.Join(c.Dir(), c.State.Path)
}

// StaticDir returns the absolute static directory, or "" when none is set.
func (c *Config) StaticDir() string {
	if c.Dev.Static == "" || filepath.IsAbs(c.Dev.Static) {
		return c.Dev.Static
	}
	return filepath.Join(c.Dir(), c.Dev.Static)
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	for _, name := range []string{ConfigFileName, YAMLConfigFileName} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// FindProjectRoot walks up directories to find the project root.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E141").
				WithDetail("No vldom.json or vldom.yaml found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working
// directory or its nearest configured ancestor. When no configuration
// exists it returns the defaults rooted at the working directory.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		cfg := New()
		cfg.configPath = filepath.Join(wd, ConfigFileName)
		return cfg, nil
	}

	return Load(root)
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
