package catchexport

import (
	"os"
	"path/filepath"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Output formats understood by Write.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Config holds all configuration options for an export.
type Config struct {
	// Notes API endpoint, e.g. "https://api.catch.com"
	Endpoint string `yaml:"endpoint" default:"https://api.catch.com" validate:"required,url"`
	// Account to export. Either Username and Password or Token is needed.
	Username string `yaml:"username" validate:"required_without=Token"`
	Password string `yaml:"password" validate:"required_with=Username"`
	Token    string `yaml:"token"`

	// Output file path. "-" writes to stdout.
	Output string `yaml:"output" default:"notes.yaml" validate:"required"`
	Format string `yaml:"format" default:"yaml" validate:"oneof=yaml json"`
	// Directory the image attachments are downloaded to. Empty skips them.
	MediaDir string `yaml:"media-dir"`
	// Include the comments of every note.
	Comments bool `yaml:"comments"`

	PageSize int           `yaml:"page-size" default:"100" validate:"min=1,max=100"`
	Timeout  time.Duration `yaml:"timeout" default:"30s" validate:"gte=0"`

	Log LogConfig `yaml:"log"`
}

// LogConfig configures the export's logger.
type LogConfig struct {
	Level string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
	// File to log to, stderr if empty.
	File string `yaml:"file"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	c := new(Config)
	defaults.MustSet(c)
	return c
}

// LoadConfig reads the YAML file at path. Keys missing from the file keep
// their defaults.
func LoadConfig(path string) (*Config, error) {
	c := new(Config)
	if err := defaults.Set(c); err != nil {
		return nil, errors.Wrap(err, "set default config failed")
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, errors.Wrap(err, "read config file failed")
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, errors.Wrap(err, "parse config file failed")
	}

	// defaults.Set only fills zero values, so an explicit "" in the file
	// falls back to the default.
	if err := defaults.Set(c); err != nil {
		return nil, errors.Wrap(err, "re-set default config failed")
	}
	return c, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return errors.Errorf("invalid config: %s failed on %q", verrs[0].Namespace(), verrs[0].Tag())
		}
		return errors.Wrap(err, "invalid config")
	}
	return nil
}

// Save writes the configuration as YAML to path.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal config failed")
	}
	return errors.Wrap(os.WriteFile(path, data, 0o600), "write config file failed")
}
