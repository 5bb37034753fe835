package bus2sqlite

import (
	"errors"
	"fmt"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidConfig = errors.New("invalid config")

const (
	DefaultStopsURL     = "https://tfl.gov.uk/tfl/syndication/feeds/bus-stops.csv"
	DefaultSequencesURL = "https://tfl.gov.uk/tfl/syndication/feeds/bus-sequences.csv"
)

// EnvPrefix prefixes every environment override, e.g. BUS2SQLITE_OUTPUT.
const EnvPrefix = "BUS2SQLITE_"

type Config struct {
	StopsURL     string `yaml:"stops_url" validate:"required,url"`
	SequencesURL string `yaml:"sequences_url" validate:"required,url"`
	// SkipFetch builds from the feed files already in WorkDir.
	SkipFetch    bool          `yaml:"skip_fetch"`
	FetchTimeout time.Duration `yaml:"fetch_timeout" validate:"gte=0"`

	// Relative paths below are resolved against WorkDir.
	WorkDir       string `yaml:"work_dir" validate:"required"`
	StopsFile     string `yaml:"stops_file" validate:"required"`
	SequencesFile string `yaml:"sequences_file" validate:"required"`
	Output        string `yaml:"output" validate:"required"`
	TempOutput    string `yaml:"temp_output"` // Defaults to <output>-temp<ext>

	AllowOutOfGrid  bool   `yaml:"allow_out_of_grid"`
	ClipFeature     string `yaml:"clip_feature"`
	CheckLinks      bool   `yaml:"check_links"`
	MetricsTextfile string `yaml:"metrics_textfile"`
}

func DefaultConfig() *Config {
	return &Config{
		StopsURL:      DefaultStopsURL,
		SequencesURL:  DefaultSequencesURL,
		WorkDir:       ".",
		StopsFile:     "bus-stops.csv",
		SequencesFile: "bus-sequences.csv",
		Output:        "database.sqlite",
	}
}

// LoadConfig starts from DefaultConfig, then applies the YAML file at path
// (if non-empty), then any BUS2SQLITE_* environment variables. envFiles are
// loaded into the environment first without overriding variables that are
// already set. Missing env files are ignored.
func LoadConfig(path string, envFiles ...string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
		}
	}

	for _, envFile := range envFiles {
		if _, err := os.Stat(envFile); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"STOPS_URL":        &c.StopsURL,
		"SEQUENCES_URL":    &c.SequencesURL,
		"WORK_DIR":         &c.WorkDir,
		"STOPS_FILE":       &c.StopsFile,
		"SEQUENCES_FILE":   &c.SequencesFile,
		"OUTPUT":           &c.Output,
		"TEMP_OUTPUT":      &c.TempOutput,
		"CLIP_FEATURE":     &c.ClipFeature,
		"METRICS_TEXTFILE": &c.MetricsTextfile,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok {
			*dst = v
		}
	}

	bools := map[string]*bool{
		"SKIP_FETCH":        &c.SkipFetch,
		"ALLOW_OUT_OF_GRID": &c.AllowOutOfGrid,
		"CHECK_LINKS":       &c.CheckLinks,
	}
	for key, dst := range bools {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%w: %s%s: %w", ErrInvalidConfig, EnvPrefix, key, err)
			}
			*dst = b
		}
	}

	if v, ok := os.LookupEnv(EnvPrefix + "FETCH_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %sFETCH_TIMEOUT: %w", ErrInvalidConfig, EnvPrefix, err)
		}
		c.FetchTimeout = d
	}
	return nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.TempPath() == c.OutputPath() {
		return fmt.Errorf("%w: temp_output must differ from output", ErrInvalidConfig)
	}
	if filepath.Dir(c.TempPath()) != filepath.Dir(c.OutputPath()) {
		return fmt.Errorf("%w: temp_output must be in the same directory as output", ErrInvalidConfig)
	}
	return nil
}

func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.WorkDir, path)
}

func (c *Config) StopsPath() string     { return c.resolve(c.StopsFile) }
func (c *Config) SequencesPath() string { return c.resolve(c.SequencesFile) }
func (c *Config) OutputPath() string    { return c.resolve(c.Output) }

func (c *Config) TempPath() string {
	if c.TempOutput != "" {
		return c.resolve(c.TempOutput)
	}
	out := c.OutputPath()
	ext := filepath.Ext(out)
	return strings.TrimSuffix(out, ext) + "-temp" + ext
}
