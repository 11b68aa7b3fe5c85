package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

type GlobalConfig struct {
	// LogLevel is a zerolog level name ("debug", "info", ...). Empty means "warn".
	LogLevel string `json:"logLevel,omitempty"`

	// Format is the default output format for read commands ("text", "json", "yaml").
	Format string `json:"format,omitempty"`

	// DataDir holds the palette database. Empty means the config dir.
	DataDir string `json:"dataDir,omitempty"`

	Export *ExportConfig `json:"export,omitempty"`

	// TUI holds optional user preferences for the interactive TUI.
	TUI *TUIConfig `json:"tui,omitempty"`
}

// ExportConfig holds the defaults of the export dialog.
type ExportConfig struct {
	// PageSize is one of A4|Letter|Legal.
	PageSize string `json:"pageSize,omitempty"`
	// Orientation is portrait|landscape.
	Orientation string `json:"orientation,omitempty"`
	// IncludeBookmarks defaults to true when unset.
	IncludeBookmarks *bool `json:"includeBookmarks,omitempty"`
	// OutDir is where exported files land when no path is given.
	OutDir string `json:"outDir,omitempty"`
}

type TUIConfig struct {
	// Glyphs selects the glyph set ("unicode", "ascii").
	Glyphs string `json:"glyphs,omitempty"`
	// ColorProfile forces a termenv profile ("ascii", "ansi", "ansi256", "truecolor").
	ColorProfile string `json:"colorProfile,omitempty"`
	// HidePreview starts the TUI with the glamour preview pane closed.
	HidePreview bool `json:"hidePreview,omitempty"`
}

func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.quire).
	if v := strings.TrimSpace(os.Getenv("QUIRE_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".quire"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

func LoadConfig() (*GlobalConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &GlobalConfig{}, nil
		}
		return nil, err
	}
	var cfg GlobalConfig
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}

func SaveConfig(cfg *GlobalConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return atomicWriteFile(dir, "config.json.*.tmp", path, b, 0o600)
}

// PaletteStore returns the on-disk store for the palette database.
func (c *GlobalConfig) PaletteStore() (Store, error) {
	if c != nil && strings.TrimSpace(c.DataDir) != "" {
		return Store{Dir: c.DataDir}, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return Store{}, err
	}
	return Store{Dir: dir}, nil
}

// ExportDefaults returns the configured export defaults with unset fields filled in.
func (c *GlobalConfig) ExportDefaults() ExportConfig {
	out := ExportConfig{PageSize: "A4", Orientation: "portrait"}
	yes := true
	out.IncludeBookmarks = &yes
	if c == nil || c.Export == nil {
		return out
	}
	if v := strings.TrimSpace(c.Export.PageSize); v != "" {
		out.PageSize = v
	}
	if v := strings.TrimSpace(c.Export.Orientation); v != "" {
		out.Orientation = v
	}
	if c.Export.IncludeBookmarks != nil {
		b := *c.Export.IncludeBookmarks
		out.IncludeBookmarks = &b
	}
	out.OutDir = strings.TrimSpace(c.Export.OutDir)
	return out
}
