package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, BackendLocal, cfg.Backend)
	assert.Equal(t, 500, cfg.PageSize)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 5*time.Minute, cfg.PetsStaleTime)
	assert.Equal(t, 15*time.Second, cfg.RefreshRate)
	assert.Equal(t, 300*time.Millisecond, cfg.SearchDelay)
	assert.Equal(t, 2, cfg.SearchMinChars)
	assert.True(t, cfg.AutoRefresh)
	assert.True(t, cfg.ConfirmDelete)
	assert.Equal(t, zerolog.InfoLevel, cfg.LogLevel)
	assert.True(t, strings.HasSuffix(cfg.DataFile, "pawcal.db"))

	assert.Equal(t, "quit", cfg.ActionFor("q"))
	assert.Equal(t, "next_month", cfg.ActionFor(">"))
	assert.Equal(t, "", cfg.ActionFor("Z"))
}

func TestParseLine(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		line     string
		check    func(*Config) bool
		hasError bool
	}{
		{
			line:  "set backend http",
			check: func(c *Config) bool { return c.Backend == BackendHTTP },
		},
		{
			line:  `set api_url "http://vet.example.com/api/"`,
			check: func(c *Config) bool { return c.APIURL == "http://vet.example.com/api" },
		},
		{
			line:  "set auto_refresh false",
			check: func(c *Config) bool { return !c.AutoRefresh },
		},
		{
			line:  "set refresh_rate 60",
			check: func(c *Config) bool { return c.RefreshRate == 60*time.Second },
		},
		{
			line:  "bind x delete_reminder",
			check: func(c *Config) bool { return c.KeyBindings["x"] == "delete_reminder" },
		},
		{
			line:  "color today yellow",
			check: func(c *Config) bool { return c.Colors["today"] == "yellow" },
		},
		{
			line:     "set backend carrier-pigeon",
			hasError: true,
		},
		{
			line:     "invalid command",
			hasError: true,
		},
		{line: "# comment line"},
		{line: ""},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			err := cfg.parseLine(tt.line)
			if tt.hasError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				assert.True(t, tt.check(cfg), "check failed for line: %s", tt.line)
			}
		})
	}
}

func TestSetVariable(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		name     string
		value    string
		check    func(*Config) bool
		hasError bool
	}{
		{
			name:  "data_file",
			value: "~/vet/pawcal.db",
			check: func(c *Config) bool { return c.DataFile == filepath.Join(home, "vet", "pawcal.db") },
		},
		{
			name:  "page_size",
			value: "250",
			check: func(c *Config) bool { return c.PageSize == 250 },
		},
		{name: "page_size", value: "0", hasError: true},
		{name: "page_size", value: "lots", hasError: true},
		{
			name:  "request_timeout",
			value: "2s",
			check: func(c *Config) bool { return c.RequestTimeout == 2*time.Second },
		},
		{
			name:  "pets_stale_time",
			value: "10m",
			check: func(c *Config) bool { return c.PetsStaleTime == 10*time.Minute },
		},
		{
			name:  "search_delay",
			value: "500ms",
			check: func(c *Config) bool { return c.SearchDelay == 500*time.Millisecond },
		},
		{name: "search_min_chars", value: "0", hasError: true},
		{
			name:  "log_level",
			value: "DEBUG",
			check: func(c *Config) bool { return c.LogLevel == zerolog.DebugLevel },
		},
		{name: "log_level", value: "chatty", hasError: true},
		{
			name:  "confirm_delete",
			value: "no",
			check: func(c *Config) bool { return !c.ConfirmDelete },
		},
		{
			name:  "watch_store",
			value: "on",
			check: func(c *Config) bool { return c.WatchStore },
		},
		{
			name:  "refresh_rate",
			value: "5m",
			check: func(c *Config) bool { return c.RefreshRate == 5*time.Minute },
		},
		{name: "refresh_rate", value: "often", hasError: true},
		{name: "unknown_variable", value: "something", hasError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name+"="+tt.value, func(t *testing.T) {
			cfg := DefaultConfig()
			err := cfg.SetVariable(tt.name, tt.value)
			if tt.hasError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				assert.True(t, tt.check(cfg))
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "pawcalrc")

	content := `# Test config file
set backend http
set api_url http://localhost:9090/api
set page_size 100
set auto_refresh false
set refresh_rate 120
set date_format 2006-01-02

bind x delete_reminder
bind Q quit

color today cyan
color selected "reverse"
`
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0o644))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFile(configFile))

	assert.Equal(t, BackendHTTP, cfg.Backend)
	assert.Equal(t, "http://localhost:9090/api", cfg.APIURL)
	assert.Equal(t, 100, cfg.PageSize)
	assert.False(t, cfg.AutoRefresh)
	assert.Equal(t, 120*time.Second, cfg.RefreshRate)
	assert.Equal(t, "2006-01-02", cfg.DateFormat)
	assert.Equal(t, "delete_reminder", cfg.ActionFor("x"))
	assert.Equal(t, []string{"Q", "q", "ctrl+c"}, cfg.KeysFor("quit"))
	assert.Equal(t, "cyan", cfg.Colors["today"])
	assert.Equal(t, "reverse", cfg.Colors["selected"])
}

func TestLoadFileReportsLine(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "pawcalrc")
	require.NoError(t, os.WriteFile(configFile, []byte("set page_size 10\nset nonsense 1\n"), 0o644))

	err := DefaultConfig().LoadFile(configFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestLoadConfigFromEnv(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "custom")
	require.NoError(t, os.WriteFile(configFile, []byte("set listen_addr :9999\n"), 0o644))

	t.Setenv("PAWCAL_CONFIG", configFile)
	t.Setenv("XDG_CONFIG_HOME", dir)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.ListenAddr)

	assert.Equal(t, configFile, Paths()[0])
	assert.Equal(t, filepath.Join(dir, "pawcal", "pawcalrc"), Paths()[1])
}
