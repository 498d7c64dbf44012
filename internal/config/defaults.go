package config

import (
	"github.com/knadh/koanf/providers/confmap"
)

func DefaultConfig() map[string]interface{} {
	return map[string]interface{}{
		"data_dir": "", // empty means DefaultDataDir()
		"log": map[string]interface{}{
			"level": "info",
		},
		"reminders": map[string]interface{}{
			"enabled":          true,
			"interval_seconds": 60,
			"snooze_minutes":   30,
			"desktop":          true, // also send notify-send popups
		},
		"lock": map[string]interface{}{
			"idle_minutes":  10,
			"check_seconds": 60,
		},
		"backup": map[string]interface{}{
			"enabled":        true,
			"interval_hours": 24,
			"check_minutes":  60,
			"keep":           30, // data backups kept; 0 keeps all
		},
		"history": map[string]interface{}{
			"retention_days": 90, // 0 keeps everything
		},
		"ui": map[string]interface{}{
			"theme": "nord",
		},
	}
}

func NewDefaultProvider() *confmap.Confmap {
	return confmap.Provider(DefaultConfig(), ".")
}
