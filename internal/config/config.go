package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	BackendLocal = "local"
	BackendHTTP  = "http"
)

type Config struct {
	// Backend settings
	Backend        string
	APIURL         string
	DataFile       string
	PageSize       int
	RequestTimeout time.Duration
	PetsStaleTime  time.Duration

	// Server settings
	ListenAddr string

	// Logging
	LogFile  string
	LogLevel zerolog.Level

	// Display settings
	TimeFormat string
	DateFormat string
	WrapText   bool

	// UI settings
	Colors      map[string]string
	KeyBindings map[string]string // key -> action

	// Behavior settings
	AutoRefresh    bool
	RefreshRate    time.Duration
	ConfirmDelete  bool
	WatchStore     bool
	SearchDelay    time.Duration
	SearchMinChars int
}

func DefaultConfig() *Config {
	return &Config{
		Backend:        BackendLocal,
		APIURL:         "http://localhost:8080/api",
		DataFile:       filepath.Join(dataDir(), "pawcal.db"),
		PageSize:       500,
		RequestTimeout: 5 * time.Second,
		PetsStaleTime:  5 * time.Minute,

		ListenAddr: "localhost:8080",

		LogFile:  filepath.Join(stateDir(), "pawcal.log"),
		LogLevel: zerolog.InfoLevel,

		TimeFormat: "15:04",
		DateFormat: "Mon, Jan 2 2006",
		WrapText:   true,

		Colors: map[string]string{
			"today":    "11",
			"selected": "62",
			"weekend":  "4",
			"outside":  "240",
			"reminder": "2",
			"header":   "63",
			"error":    "9",
			"success":  "10",
		},

		KeyBindings: map[string]string{
			"q":      "quit",
			"?":      "help",
			"t":      "today",
			"r":      "refresh",
			"n":      "new_reminder",
			"e":      "edit_reminder",
			"d":      "delete_reminder",
			"s":      "cycle_status",
			"l":      "next_day",
			"right":  "next_day",
			"h":      "prev_day",
			"left":   "prev_day",
			"j":      "next_week",
			"down":   "next_week",
			"k":      "prev_week",
			"up":     "prev_week",
			">":      "next_month",
			"<":      "prev_month",
			"g":      "goto_date",
			"tab":    "next_reminder",
			"ctrl+c": "quit",
		},

		AutoRefresh:    true,
		RefreshRate:    15 * time.Second,
		ConfirmDelete:  true,
		WatchStore:     true,
		SearchDelay:    300 * time.Millisecond,
		SearchMinChars: 2,
	}
}

// Paths lists the locations LoadConfig tries, first match wins.
func Paths() []string {
	home, _ := os.UserHomeDir()
	paths := []string{os.Getenv("PAWCAL_CONFIG")}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "pawcal", "pawcalrc"))
	}
	if home != "" {
		paths = append(paths,
			filepath.Join(home, ".config", "pawcal", "pawcalrc"),
			filepath.Join(home, ".pawcalrc"),
		)
	}
	return paths
}

func LoadConfig() (*Config, error) {
	config := DefaultConfig()

	for _, path := range Paths() {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); err == nil {
			if err := config.LoadFile(path); err != nil {
				return nil, fmt.Errorf("error loading config from %s: %w", path, err)
			}
			break
		}
	}

	return config, nil
}

// LoadFile applies the settings in path over the current values.
func (c *Config) LoadFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if err := c.parseLine(line); err != nil {
			return fmt.Errorf("line %d: %w", lineNum, err)
		}
	}

	return scanner.Err()
}

var (
	setRe   = regexp.MustCompile(`^set\s+(\w+)\s+(.+)$`)
	bindRe  = regexp.MustCompile(`^bind\s+(\S+)\s+(\S+)$`)
	colorRe = regexp.MustCompile(`^color\s+(\w+)\s+(.+)$`)
)

func (c *Config) parseLine(line string) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	// set variable value
	if matches := setRe.FindStringSubmatch(line); matches != nil {
		return c.SetVariable(matches[1], matches[2])
	}

	// bind key action
	if matches := bindRe.FindStringSubmatch(line); matches != nil {
		c.KeyBindings[matches[1]] = matches[2]
		return nil
	}

	// color element color_spec
	if matches := colorRe.FindStringSubmatch(line); matches != nil {
		c.Colors[matches[1]] = strings.Trim(matches[2], `"'`)
		return nil
	}

	return fmt.Errorf("unknown config line: %s", line)
}

// SetVariable applies one "set" line. Command-line flags go through here
// too, so both accept the same values.
func (c *Config) SetVariable(name, value string) error {
	value = strings.Trim(strings.TrimSpace(value), `"'`)

	switch name {
	case "backend":
		switch strings.ToLower(value) {
		case BackendLocal, "sqlite":
			c.Backend = BackendLocal
		case BackendHTTP, "api":
			c.Backend = BackendHTTP
		default:
			return fmt.Errorf("invalid backend: %s", value)
		}

	case "api_url":
		c.APIURL = strings.TrimRight(value, "/")

	case "data_file":
		c.DataFile = expandHome(value)

	case "page_size":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid page_size: %s", value)
		}
		c.PageSize = n

	case "request_timeout":
		d, err := parseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid request_timeout: %s", value)
		}
		c.RequestTimeout = d

	case "pets_stale_time":
		d, err := parseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid pets_stale_time: %s", value)
		}
		c.PetsStaleTime = d

	case "listen_addr":
		c.ListenAddr = value

	case "log_file":
		c.LogFile = expandHome(value)

	case "log_level":
		level, err := zerolog.ParseLevel(strings.ToLower(value))
		if err != nil {
			return fmt.Errorf("invalid log_level: %s", value)
		}
		c.LogLevel = level

	case "time_format":
		c.TimeFormat = value

	case "date_format":
		c.DateFormat = value

	case "wrap_text":
		c.WrapText = parseBool(value)

	case "auto_refresh":
		c.AutoRefresh = parseBool(value)

	case "refresh_rate":
		d, err := parseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid refresh_rate: %s", value)
		}
		c.RefreshRate = d

	case "confirm_delete":
		c.ConfirmDelete = parseBool(value)

	case "watch_store":
		c.WatchStore = parseBool(value)

	case "search_delay":
		d, err := parseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid search_delay: %s", value)
		}
		c.SearchDelay = d

	case "search_min_chars":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("invalid search_min_chars: %s", value)
		}
		c.SearchMinChars = n

	default:
		return fmt.Errorf("unknown config variable: %s", name)
	}

	return nil
}

// ActionFor returns the action bound to key, or "".
func (c *Config) ActionFor(key string) string {
	return c.KeyBindings[key]
}

// KeysFor lists the keys bound to action, sorted for display.
func (c *Config) KeysFor(action string) []string {
	var keys []string
	for k, a := range c.KeyBindings {
		if a == action {
			keys = append(keys, k)
		}
	}
	slices.SortFunc(keys, func(a, b string) int {
		// Single characters before named keys.
		if (len(a) == 1) != (len(b) == 1) {
			if len(a) == 1 {
				return -1
			}
			return 1
		}
		return strings.Compare(a, b)
	})
	return keys
}

// parseDuration accepts Go durations and bare seconds.
func parseDuration(value string) (time.Duration, error) {
	if d, err := time.ParseDuration(value); err == nil {
		return d, nil
	}
	seconds, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return time.Duration(seconds) * time.Second, nil
}

func parseBool(value string) bool {
	switch strings.ToLower(value) {
	case "true", "1", "yes", "on":
		return true
	default:
		return false
	}
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

func dataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "pawcal")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "pawcal")
}

func stateDir() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "pawcal")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "pawcal")
}
