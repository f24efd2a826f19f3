package prefs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const (
	// ConfigEnv переопределяет путь к файлу настроек
	ConfigEnv = "TODOCTL_CONFIG"

	DefaultServer = "http://localhost:8082"
)

// Prefs - настройки клиента в TOML
type Prefs struct {
	Server   string `toml:"server"`
	UserID   string `toml:"user_id"`
	Username string `toml:"username,omitempty"`
	Theme    string `toml:"theme"`
}

func Defaults() *Prefs {
	return &Prefs{
		Server: DefaultServer,
		Theme:  "system",
	}
}

// DefaultPath: $TODOCTL_CONFIG или ~/.config/todoctl/config.toml
func DefaultPath() (string, error) {
	if p := os.Getenv(ConfigEnv); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "todoctl", "config.toml"), nil
}

// Load читает файл настроек; отсутствующий файл - это настройки по умолчанию
func Load(path string) (*Prefs, error) {
	p := Defaults()
	if _, err := toml.DecodeFile(path, p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Defaults(), nil
		}
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if p.Server == "" {
		p.Server = DefaultServer
	}
	return p, nil
}

// Save записывает настройки атомарно через временный файл
func (p *Prefs) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".config-*.toml")
	if err != nil {
		return fmt.Errorf("create temp config: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := toml.NewEncoder(tmp).Encode(p); err != nil {
		tmp.Close()
		return fmt.Errorf("encode config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return fmt.Errorf("chmod config: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}
