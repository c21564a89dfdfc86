package config

import (
	"os"
	"strconv"
)

// applyEnvOverrides lets the environment override a few settings that are
// awkward to bake into a checked-in config file: which compiler to use and
// how chatty the file logs are.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("OBFORGE_COMPILER"); v != "" {
		c.Compile.Compiler = v
	}
	if v := os.Getenv("OBFORGE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("OBFORGE_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			c.Search.Workers = n
		}
	}
}
