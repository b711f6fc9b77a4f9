package singleinstance

import (
	"os"
	"strconv"
	"strings"
)

const (
	PortStartEnv = "SINGLEINSTANCE_PORT_START"
	PortEndEnv   = "SINGLEINSTANCE_PORT_END"

	defaultPortStart = 49500
	defaultPortEnd   = 49550
	minPort          = 1024
	maxPort          = 65535
)

// getPortRange returns the inclusive port range. Unset or invalid values
// fall back to the defaults; the result is clamped to [1024, 65535] and
// swapped if reversed.
func getPortRange() (int, int) {
	start := envPort(PortStartEnv, defaultPortStart)
	end := envPort(PortEndEnv, defaultPortEnd)
	start = max(start, minPort)
	end = min(end, maxPort)
	if end < start {
		start, end = end, start
	}
	return start, end
}

func envPort(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// PortRange exposes the effective port range for logging.
func PortRange() (int, int) { return getPortRange() }
