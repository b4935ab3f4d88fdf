// Package config provides configuration loading for the viewer using TOML.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Fetcher settings for fragment fetching.
type Fetcher struct {
	BaseURL        string `toml:"base_url"`
	UserAgent      string `toml:"user_agent"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Translation settings.
type Translation struct {
	Instance       string `toml:"instance"`
	SourceLanguage string `toml:"source_language"`
}

// Rendering settings for the content viewport.
type Rendering struct {
	Width int `toml:"width"`
}

// Config is the main configuration struct.
type Config struct {
	Fetcher     Fetcher     `toml:"fetcher"`
	Translation Translation `toml:"translation"`
	Rendering   Rendering   `toml:"rendering"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Fetcher: Fetcher{
			BaseURL:        "https://compendium.copyright.gov",
			UserAgent:      "Compendium/1.0 (Terminal Viewer)",
			TimeoutSeconds: 30,
		},
		Translation: Translation{
			Instance:       "", // translate.DefaultInstance when empty
			SourceLanguage: "en",
		},
		Rendering: Rendering{
			Width: 80,
		},
	}
}

// Path returns the config file location.
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "compendium", "config.toml"), nil
}

// Load reads the user config, applying it over the defaults. A missing file
// is not an error.
func Load() (Config, error) {
	cfg := Default()

	path, err := Path()
	if err != nil {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// DefaultTOML renders the default configuration as a commented TOML file,
// suitable for writing to the config path.
func DefaultTOML() string {
	return `# Compendium viewer configuration

[fetcher]
base_url = "https://compendium.copyright.gov"
user_agent = "Compendium/1.0 (Terminal Viewer)"
timeout_seconds = 30

[translation]
# Lingva Translate instance for page translation; leave empty for the default.
instance = ""
source_language = "en"

[rendering]
width = 80
`
}
