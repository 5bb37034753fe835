package bus2sqlite

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "bus-stops.csv", cfg.StopsPath())
	assert.Equal(t, "bus-sequences.csv", cfg.SequencesPath())
	assert.Equal(t, "database.sqlite", cfg.OutputPath())
	assert.Equal(t, "database-temp.sqlite", cfg.TempPath())
}

func TestConfigPaths(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WorkDir = "/srv/spidermap"
	cfg.Output = "/var/lib/spidermap/db.sqlite"
	assert.Equal(t, "/srv/spidermap/bus-stops.csv", cfg.StopsPath())
	assert.Equal(t, "/var/lib/spidermap/db.sqlite", cfg.OutputPath())
	assert.Equal(t, "/var/lib/spidermap/db-temp.sqlite", cfg.TempPath())

	cfg.TempOutput = "/var/lib/spidermap/building.sqlite"
	assert.Equal(t, "/var/lib/spidermap/building.sqlite", cfg.TempPath())
}

func TestLoadConfigYAML(t *testing.T) {
	dir := testTempdir(t)
	path := writeTestFile(t, dir, "bus2sqlite.yml", `
stops_url: https://example.com/stops.csv
work_dir: /tmp/feeds
output: snapshot.db
fetch_timeout: 90s
check_links: true
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/stops.csv", cfg.StopsURL)
	assert.Equal(t, DefaultSequencesURL, cfg.SequencesURL)
	assert.Equal(t, "/tmp/feeds", cfg.WorkDir)
	assert.Equal(t, "/tmp/feeds/snapshot.db", cfg.OutputPath())
	assert.Equal(t, "/tmp/feeds/snapshot-temp.db", cfg.TempPath())
	assert.Equal(t, 90*time.Second, cfg.FetchTimeout)
	assert.True(t, cfg.CheckLinks)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigBadYAML(t *testing.T) {
	dir := testTempdir(t)
	path := writeTestFile(t, dir, "bus2sqlite.yml", "output: [unterminated")

	_, err := LoadConfig(path)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadConfigEnv(t *testing.T) {
	t.Setenv("BUS2SQLITE_OUTPUT", "from-env.sqlite")
	t.Setenv("BUS2SQLITE_ALLOW_OUT_OF_GRID", "true")
	t.Setenv("BUS2SQLITE_FETCH_TIMEOUT", "5m")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "from-env.sqlite", cfg.Output)
	assert.True(t, cfg.AllowOutOfGrid)
	assert.Equal(t, 5*time.Minute, cfg.FetchTimeout)
}

func TestLoadConfigBadEnv(t *testing.T) {
	t.Setenv("BUS2SQLITE_SKIP_FETCH", "perhaps")

	_, err := LoadConfig("")
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadConfigEnvFile(t *testing.T) {
	dir := testTempdir(t)
	envFile := writeTestFile(t, dir, ".env", "BUS2SQLITE_STOPS_FILE=stops-from-dotenv.csv\nBUS2SQLITE_OUTPUT=dotenv.sqlite\n")
	// Already-set variables win over the env file.
	t.Setenv("BUS2SQLITE_OUTPUT", "explicit.sqlite")
	// Registered with t.Setenv so the value loaded from the file is undone.
	t.Setenv("BUS2SQLITE_STOPS_FILE", "")
	require.NoError(t, os.Unsetenv("BUS2SQLITE_STOPS_FILE"))

	cfg, err := LoadConfig("", envFile, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "explicit.sqlite", cfg.Output)
	assert.Equal(t, "stops-from-dotenv.csv", cfg.StopsFile)
}

func TestConfigValidate(t *testing.T) {
	cases := map[string]func(cfg *Config){
		"bad url":          func(cfg *Config) { cfg.StopsURL = "tfl bus stops" },
		"missing output":   func(cfg *Config) { cfg.Output = "" },
		"negative timeout": func(cfg *Config) { cfg.FetchTimeout = -time.Second },
		"temp is output":   func(cfg *Config) { cfg.TempOutput = "database.sqlite" },
		"temp elsewhere":   func(cfg *Config) { cfg.TempOutput = "/tmp/database-temp.sqlite" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(cfg)
			require.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}
