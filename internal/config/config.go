package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"

	"agendacal/internal/ics"
	"agendacal/internal/model"
)

// ICSConfig describes a single ICS subscription source.
type ICSConfig struct {
	// URL is the ICS subscription endpoint (http, https or file path).
	URL string `yaml:"url" json:"url"`
	// ID is an internal identifier used for de-dup and logging.
	ID string `yaml:"id" json:"id"`
	// Name is a human-friendly label.
	Name string `yaml:"name" json:"name"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the HTTP host.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// LayoutConfig tunes the agenda engine and its renderers.
type LayoutConfig struct {
	// ElevationStep is the stagger in percentage points for events starting
	// while others are ongoing. 0.5 suits wide screens, 2 narrow ones.
	ElevationStep float64 `yaml:"elevation_step" json:"elevation_step"`
	// ResizePad keeps the card edge under the cursor while resizing.
	ResizePad float64 `yaml:"resize_pad" json:"resize_pad"`
	// RowHeight is the pixel height of an hour row for hosts that lay rows
	// out themselves (page, terminal, offline commands).
	RowHeight float64 `yaml:"row_height" json:"row_height"`
	// AllowTopResize enables the top resize handle.
	AllowTopResize bool `yaml:"allow_top_resize" json:"allow_top_resize"`
	// DoubleClickMS is the window in which two presses count as a double
	// click on hosts that do not report click counts.
	DoubleClickMS int `yaml:"double_click_ms" json:"double_click_ms"`
}

// SeedEvent is an event placed on every planner day at startup, relative
// to that day's midnight. Hours may be negative or exceed 23 to cross
// midnight.
type SeedEvent struct {
	ID          string `yaml:"id,omitempty" json:"id,omitempty"`
	Description string `yaml:"description" json:"description"`
	StartHour   int    `yaml:"start_hour" json:"start_hour"`
	EndHour     int    `yaml:"end_hour" json:"end_hour"`
}

// LogConfig selects the log level and encoding.
type LogConfig struct {
	// Level is one of debug, info, error.
	Level string `yaml:"level" json:"level"`
	// Format is console or json.
	Format string `yaml:"format" json:"format"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the page and API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA zone every agenda computation uses.
	Timezone string `yaml:"timezone" json:"timezone"`

	// RefreshCron is a cron-style schedule string (e.g. "*/15 * * * *")
	// used to reload ICS sources.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// Days names the planner days; day i is today plus i days.
	Days []string `yaml:"days" json:"days"`

	Layout LayoutConfig `yaml:"layout" json:"layout"`

	// Events are seeded onto every day.
	Events []SeedEvent `yaml:"events" json:"events"`

	// ICS is the list of subscribed ICS sources.
	ICS []ICSConfig `yaml:"ics" json:"ics"`

	// ShowAllDay places all-day feed events on the grid as 24h spans.
	ShowAllDay bool `yaml:"show_all_day" json:"show_all_day"`

	// CacheDir keeps the last good body of every ICS source.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all endpoints
	// except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`

	Log LogConfig `yaml:"log" json:"log"`
}

const (
	defaultListen        = "127.0.0.1:8080"
	defaultTimezone      = "Local"
	defaultRefresh       = "*/15 * * * *"
	defaultElevationStep = 2.0
	defaultResizePad     = 15.0
	defaultRowHeight     = 48.0
	defaultDoubleClickMS = 400
	defaultCacheDir      = "~/.cache/agendacal/ics"
)

func defaultDays() []string { return []string{"Sunday", "Monday"} }

func defaultEvents() []SeedEvent {
	return []SeedEvent{
		{Description: "Sleep", StartHour: -3, EndHour: 6},
		{Description: "Work", StartHour: 7, EndHour: 17},
		{Description: "Sleep", StartHour: 21, EndHour: 30},
	}
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:      defaultListen,
		Timezone:    defaultTimezone,
		RefreshCron: defaultRefresh,
		Days:        defaultDays(),
		Layout: LayoutConfig{
			ElevationStep: defaultElevationStep,
			ResizePad:     defaultResizePad,
			RowHeight:     defaultRowHeight,
			DoubleClickMS: defaultDoubleClickMS,
		},
		Events: defaultEvents(),
		ICS:      []ICSConfig{},
		CacheDir: defaultCacheDir,
		Log:      LogConfig{Level: "info", Format: "console"},
	}
}

// Normalize fills in missing/zero values with defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	}
	if c.RefreshCron == "" {
		c.RefreshCron = defaultRefresh
	}
	if len(c.Days) == 0 {
		c.Days = defaultDays()
	}
	if c.Layout.ElevationStep <= 0 {
		c.Layout.ElevationStep = defaultElevationStep
	}
	if c.Layout.ResizePad <= 0 {
		c.Layout.ResizePad = defaultResizePad
	}
	if c.Layout.RowHeight <= 0 {
		c.Layout.RowHeight = defaultRowHeight
	}
	if c.Layout.DoubleClickMS <= 0 {
		c.Layout.DoubleClickMS = defaultDoubleClickMS
	}
	// nil means "not configured"; an explicit empty list disables seeding.
	if c.Events == nil {
		c.Events = defaultEvents()
	}
	if c.ICS == nil {
		c.ICS = []ICSConfig{}
	}
	if c.CacheDir == "" {
		c.CacheDir = defaultCacheDir
	}
	switch c.Log.Level {
	case "debug", "info", "error":
	default:
		c.Log.Level = "info"
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		c.Log.Format = "console"
	}
}

// Validate reports settings Normalize cannot repair.
func (c *Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}
	seen := make(map[string]bool, len(c.Days))
	for _, d := range c.Days {
		if d == "" {
			return errors.New("config: empty day name")
		}
		if seen[d] {
			return fmt.Errorf("config: duplicate day %q", d)
		}
		seen[d] = true
	}
	for i, e := range c.Events {
		if e.EndHour <= e.StartHour {
			return fmt.Errorf("config: event %d (%s) must end after it starts", i, e.Description)
		}
	}
	return nil
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// ResolvedCacheDir returns CacheDir with ~ expanded.
func (c *Config) ResolvedCacheDir() (string, error) {
	return expand(c.CacheDir)
}

// Sources converts the ICS entries for the fetcher. An entry without an id
// is keyed by its name, then by its position.
func (c *Config) Sources() []ics.Source {
	out := make([]ics.Source, 0, len(c.ICS))
	for i, s := range c.ICS {
		id := s.ID
		if id == "" {
			id = s.Name
		}
		if id == "" {
			id = fmt.Sprintf("ics%d", i)
		}
		out = append(out, ics.Source{ID: id, URL: s.URL})
	}
	return out
}

// DoubleClick is the double click window as a duration.
func (l LayoutConfig) DoubleClick() time.Duration {
	return time.Duration(l.DoubleClickMS) * time.Millisecond
}

// Event materializes the seed on the day whose midnight is midnight. A seed
// without an id gets a fresh one.
func (s SeedEvent) Event(midnight time.Time) model.Event {
	id := s.ID
	if id == "" {
		id = uuid.NewString()
	}
	return model.Event{
		ID:          id,
		Description: s.Description,
		Start:       midnight.Add(time.Duration(s.StartHour) * time.Hour),
		End:         midnight.Add(time.Duration(s.EndHour) * time.Hour),
	}
}

// SeedEvents materializes every configured seed on the given day.
func (c *Config) SeedEvents(midnight time.Time) []model.Event {
	out := make([]model.Event, 0, len(c.Events))
	for _, s := range c.Events {
		out = append(out, s.Event(midnight))
	}
	return out
}

// Load loads configuration from the given YAML path. A leading ~ is
// expanded to the user's home directory.
//
// Behavior:
//   - If the file does not exist, a default config is written with 0600
//     perms (creating the parent directory) and returned.
//   - Otherwise the YAML is read and normalized.
func Load(path string) (*Config, error) {
	path, err := expand(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes cfg to path atomically (temp file + rename) with 0600 perms,
// creating the parent directory with 0700.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	path, err := expand(path)
	if err != nil {
		return err
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".agendacal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

// Save delegates to the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}

func expand(path string) (string, error) {
	if path == "" {
		return "", errors.New("config path is empty")
	}
	return homedir.Expand(path)
}
