package env

import (
	"os"
	"strings"
)

// Get reads an environment variable and falls back when it is unset or
// blank. Config proper goes through envconfig; this is for the few knobs
// read before config is loaded (log level, service name).
func Get(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}
