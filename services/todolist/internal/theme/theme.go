package theme

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

type Mode string

const (
	Light  Mode = "light"
	Dark   Mode = "dark"
	System Mode = "system"
)

// Переменная для явного указания темы терминала вместо COLORFGBG
const SystemThemeEnv = "TODOCTL_SYSTEM_THEME"

var (
	mu      sync.RWMutex
	current = System
	persist func(Mode) error
)

func Parse(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case Light, Dark, System:
		return m, nil
	case "":
		return System, nil
	default:
		return "", fmt.Errorf("unknown theme %q (want light, dark or system)", s)
	}
}

// Init задаёт тему процесса из сохранённой настройки и функцию сохранения для Set
func Init(mode Mode, save func(Mode) error) {
	mu.Lock()
	defer mu.Unlock()
	current = mode
	persist = save
}

func Current() Mode {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Set - единственный способ сменить тему; новое значение сразу сохраняется
func Set(mode Mode) error {
	if mode == "" {
		return fmt.Errorf("theme required")
	}
	mode, err := Parse(string(mode))
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	if persist != nil {
		if err := persist(mode); err != nil {
			return fmt.Errorf("save theme: %w", err)
		}
	}
	current = mode
	return nil
}

// Effective возвращает light или dark с учётом настроек терминала
func Effective() Mode {
	return Resolve(Current())
}

func Resolve(mode Mode) Mode {
	if mode != System {
		return mode
	}
	return detectSystem()
}

// detectSystem: TODOCTL_SYSTEM_THEME, затем COLORFGBG ("fg;bg"), по умолчанию light
func detectSystem() Mode {
	if v := os.Getenv(SystemThemeEnv); v != "" {
		if m, err := Parse(v); err == nil && m != System {
			return m
		}
	}

	parts := strings.Split(os.Getenv("COLORFGBG"), ";")
	if len(parts) >= 2 {
		if bg, err := strconv.Atoi(parts[len(parts)-1]); err == nil {
			// 0-6 и 8 - тёмные цвета стандартной палитры
			if bg <= 6 || bg == 8 {
				return Dark
			}
			return Light
		}
	}
	return Light
}
