package main

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
)

// configureLogger applies the --log-level flag, falling back to the configured
// level (which already carries TASKBOARD_LOG_LEVEL) and then to info.
func configureLogger(flagLevel, configLevel string) error {
	level, err := selectLogLevel(flagLevel, configLevel)
	if err != nil {
		return err
	}
	log.SetLevel(level)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	return nil
}

func selectLogLevel(flagLevel, configLevel string) (log.Level, error) {
	raw, source := strings.TrimSpace(flagLevel), "--log-level"
	if raw == "" {
		raw, source = strings.TrimSpace(configLevel), "log_level"
	}
	if raw == "" {
		return log.InfoLevel, nil
	}
	level, err := log.ParseLevel(raw)
	if err != nil {
		return log.InfoLevel, fmt.Errorf("invalid %s %q", source, raw)
	}
	return level, nil
}
