package app

import (
	"strings"

	"github.com/praxiscrm/praxis/pkg/logger"
)

// ConfigureLogging initialises the global logger from server settings,
// defaulting to info-level JSON output.
func ConfigureLogging(level, encoding string) error {
	level = strings.TrimSpace(level)
	if level == "" {
		level = "info"
	}
	encoding = strings.TrimSpace(encoding)
	if encoding == "" {
		encoding = "json"
	}
	return logger.Init(level, encoding)
}
