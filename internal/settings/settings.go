package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultFile is the settings file looked up in the working directory when
// no --settings flag is given.
const DefaultFile = "a3sync_settings.toml"

const defaultWorkshopAppID = "107410"

// Settings holds everything a sync run needs. It is loaded once at process
// start and passed explicitly into each component.
type Settings struct {
	SteamCmd  string `toml:"steam_cmd"`
	SteamUser string `toml:"steam_user"`
	SteamPass string `toml:"steam_pass"`

	ServerID      string   `toml:"server_id"`
	DLCIDs        []string `toml:"dlc_ids"`
	ServerDir     string   `toml:"server_dir"`
	ModsDir       string   `toml:"mods_dir"`
	HTMLDir       string   `toml:"html_dir"`
	WorkshopAppID string   `toml:"workshop_app_id"`

	MaxTries int `toml:"max_tries"`

	Log     bool   `toml:"log"`
	LogDir  string `toml:"log_dir"`
	LogName string `toml:"log_name"`
}

// ConfigError reports a missing or invalid settings key. It is fatal and
// raised before any pipeline stage runs.
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("settings: %s: %s", e.Key, e.Reason)
}

// Load reads and validates the settings file at path.
func Load(path string) (*Settings, error) {
	var s Settings
	if _, err := toml.DecodeFile(path, &s); err != nil {
		if os.IsNotExist(err) {
			return nil, &ConfigError{Key: path, Reason: "settings file not found"}
		}
		return nil, &ConfigError{Key: path, Reason: err.Error()}
	}

	required := []struct {
		key, value string
	}{
		{"steam_cmd", s.SteamCmd},
		{"steam_user", s.SteamUser},
		{"steam_pass", s.SteamPass},
		{"server_id", s.ServerID},
		{"server_dir", s.ServerDir},
		{"mods_dir", s.ModsDir},
		{"html_dir", s.HTMLDir},
	}
	for _, r := range required {
		if r.value == "" {
			return nil, &ConfigError{Key: r.key, Reason: "required key is missing or empty"}
		}
	}

	if s.MaxTries == 0 {
		s.MaxTries = 3
	}
	if s.MaxTries < 0 {
		return nil, &ConfigError{Key: "max_tries", Reason: "must be a positive integer"}
	}
	if s.WorkshopAppID == "" {
		s.WorkshopAppID = defaultWorkshopAppID
	}
	if s.Log {
		if s.LogDir == "" {
			return nil, &ConfigError{Key: "log_dir", Reason: "required when log = true"}
		}
		if s.LogName == "" {
			return nil, &ConfigError{Key: "log_name", Reason: "required when log = true"}
		}
	}

	return &s, nil
}

// KeysDir returns the server key directory.
func (s *Settings) KeysDir() string {
	return filepath.Join(s.ServerDir, "keys")
}

// LogPath returns the timestamped log file path for a run starting at t.
func (s *Settings) LogPath(t time.Time) string {
	return filepath.Join(s.LogDir, fmt.Sprintf("%s-%s.log", s.LogName, t.Format("2006-01-02_15-04-05")))
}

// ModsRel returns the mods directory relative to the server directory when
// it nests inside it, so launch parameters can reference it from the server
// root. Falls back to the configured path otherwise.
func (s *Settings) ModsRel() string {
	rel, err := filepath.Rel(s.ServerDir, s.ModsDir)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return s.ModsDir
	}
	return rel
}
