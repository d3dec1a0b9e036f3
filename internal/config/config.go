package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// DefaultPath is the config file read when no -config flag is given.
const DefaultPath = "webcanvas.toml"

// Duration wraps time.Duration so it can be written as "5s" in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Store selects and configures the document store backend.
type Store struct {
	// Backend is one of "memory", "file", "firestore" or "remote".
	Backend string `toml:"backend"`
	// Dir holds one JSON file per canvas for the file backend.
	Dir string `toml:"dir"`
	// Address is the host:port of a webcanvas server for the remote backend.
	// Empty means discover it on the LAN.
	Address     string   `toml:"address"`
	Project     string   `toml:"project"`
	Credentials string   `toml:"credentials"`
	Collection  string   `toml:"collection"`
	Timeout     Duration `toml:"timeout"`
}

type Editor struct {
	AutosaveInterval Duration `toml:"autosave_interval"`
	Width            float32  `toml:"width"`
	Height           float32  `toml:"height"`
	ExportScale      float64  `toml:"export_scale"`
}

type Server struct {
	Listen    string `toml:"listen"`
	Advertise bool   `toml:"advertise"`
}

type Config struct {
	Store  Store  `toml:"store"`
	Editor Editor `toml:"editor"`
	Server Server `toml:"server"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Store: Store{
			Backend:    "file",
			Dir:        "canvases",
			Collection: "canvases",
			Timeout:    Duration{30 * time.Second},
		},
		Editor: Editor{
			AutosaveInterval: Duration{5 * time.Second},
			Width:            1200,
			Height:           800,
			ExportScale:      2,
		},
		Server: Server{
			Listen:    ":8899",
			Advertise: true,
		},
	}
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Printf("[CONFIG] %s not found, using defaults", path)
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Store.Backend {
	case "memory", "file", "firestore", "remote":
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Store.Backend == "firestore" && c.Store.Project == "" {
		return errors.New("store.project is required for the firestore backend")
	}
	if c.Store.Backend == "file" && c.Store.Dir == "" {
		return errors.New("store.dir is required for the file backend")
	}
	if c.Editor.AutosaveInterval.Duration <= 0 {
		return errors.New("editor.autosave_interval must be positive")
	}
	if c.Editor.Width <= 0 || c.Editor.Height <= 0 {
		return errors.New("editor.width and editor.height must be positive")
	}
	if c.Editor.ExportScale <= 0 {
		return errors.New("editor.export_scale must be positive")
	}
	return nil
}
