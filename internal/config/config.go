package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	charmLog "github.com/charmbracelet/log"
	toml "github.com/pelletier/go-toml/v2"
)

// Backend selects the persistence adapter.
type Backend string

const (
	BackendJSON   Backend = "json"
	BackendSQLite Backend = "sqlite"
)

// Default file names inside the data directory.
const (
	DefaultIdeasFile = "ideas.json"
	DefaultIndexFile = "index.txt"
	DefaultDBFile    = "ideas.db"
)

type Config struct {
	Storage StorageConfig `toml:"storage"`
	Logging LoggingConfig `toml:"logging"`
	UI      UIConfig      `toml:"ui"`
}

type StorageConfig struct {
	Backend   Backend `toml:"backend"`
	DataDir   string  `toml:"data_dir"`
	IdeasFile string  `toml:"ideas_file"`
	IndexFile string  `toml:"index_file"`
	DBFile    string  `toml:"db_file"`
}

type LoggingConfig struct {
	Level   string        `toml:"level"`
	DevFile DevFileConfig `toml:"dev_file"`
}

type DevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type UIConfig struct {
	ModalWidthPercent  int  `toml:"modal_width_percent"`
	ModalHeightPercent int  `toml:"modal_height_percent"`
	MarkdownPreview    bool `toml:"markdown_preview"`
}

func Default(dataDir string) Config {
	return Config{
		Storage: StorageConfig{
			Backend:   BackendJSON,
			DataDir:   dataDir,
			IdeasFile: DefaultIdeasFile,
			IndexFile: DefaultIndexFile,
			DBFile:    DefaultDBFile,
		},
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileConfig{
				Enabled: true,
				Dir:     ".ideas/log",
			},
		},
		UI: UIConfig{
			ModalWidthPercent:  40,
			ModalHeightPercent: 40,
			MarkdownPreview:    true,
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Storage.Backend {
	case BackendJSON, BackendSQLite:
	default:
		return fmt.Errorf("invalid storage.backend: %q", c.Storage.Backend)
	}
	if strings.TrimSpace(c.Storage.DataDir) == "" {
		return errors.New("storage.data_dir is required")
	}
	for name, file := range map[string]string{
		"storage.ideas_file": c.Storage.IdeasFile,
		"storage.index_file": c.Storage.IndexFile,
		"storage.db_file":    c.Storage.DBFile,
	} {
		if strings.TrimSpace(file) == "" {
			return fmt.Errorf("%s is required", name)
		}
	}

	if _, err := charmLog.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}

	if c.UI.ModalWidthPercent < 10 || c.UI.ModalWidthPercent > 100 {
		return fmt.Errorf("ui.modal_width_percent must be within 10..100, got %d", c.UI.ModalWidthPercent)
	}
	if c.UI.ModalHeightPercent < 10 || c.UI.ModalHeightPercent > 100 {
		return fmt.Errorf("ui.modal_height_percent must be within 10..100, got %d", c.UI.ModalHeightPercent)
	}
	return nil
}

// IdeasPath resolves the ideas file against the data dir unless it is absolute.
func (c Config) IdeasPath() string {
	return c.resolve(c.Storage.IdeasFile)
}

// IndexPath resolves the index file against the data dir unless it is absolute.
func (c Config) IndexPath() string {
	return c.resolve(c.Storage.IndexFile)
}

// DBPath resolves the sqlite file against the data dir unless it is absolute.
func (c Config) DBPath() string {
	return c.resolve(c.Storage.DBFile)
}

func (c Config) resolve(file string) string {
	file = strings.TrimSpace(file)
	if filepath.IsAbs(file) {
		return filepath.Clean(file)
	}
	return filepath.Join(c.Storage.DataDir, file)
}

// Write encodes cfg as TOML at path, creating the parent directory.
func Write(path string, cfg Config) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("config path is required")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	content, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode toml: %w", err)
	}
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// EnsureConfigDir creates the directory holding path.
func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
