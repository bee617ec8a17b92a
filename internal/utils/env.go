package utils

import (
	"os"
	"strconv"
	"strings"

	"github.com/foodenough/foodenough-backend/internal/logger"
)

// GetEnv returns the variable's value, or defaultVal when unset. Lookups are
// logged keyed by the variable name so credential-bearing values hit the
// logger's redaction list. The logger is optional.
func GetEnv(key, defaultVal string, log *logger.Logger) string {
	val, ok := os.LookupEnv(key)
	if !ok {
		if log != nil {
			log.Debug("env unset, using default", strings.ToLower(key), defaultVal)
		}
		return defaultVal
	}
	if log != nil {
		log.Debug("env resolved", strings.ToLower(key), val)
	}
	return val
}

func GetEnvAsInt(key string, defaultVal int, log *logger.Logger) int {
	raw, ok := os.LookupEnv(key)
	if !ok {
		if log != nil {
			log.Debug("env unset, using default", strings.ToLower(key), defaultVal)
		}
		return defaultVal
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		if log != nil {
			log.Warn("env not an integer, using default", strings.ToLower(key), raw, "default", defaultVal)
		}
		return defaultVal
	}
	return n
}

func GetEnvAsBool(key string, defaultVal bool, log *logger.Logger) bool {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return defaultVal
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	if log != nil {
		log.Warn("env not a boolean, using default", strings.ToLower(key), raw, "default", defaultVal)
	}
	return defaultVal
}
