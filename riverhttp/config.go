package riverhttp

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the env-derived settings for the reference Redis backend
// and the resume reader, read the same env-var-with-fallback way
// connect.ParseWiring reads RIG_WIRING/HOST/PORT (§6).
type Config struct {
	RedisURL           string
	KeyPrefix          string
	BlockDuration      time.Duration
	ReadCountCap       int64
	ResumeIterationCap int
}

// ParseConfig reads RIVER_REDIS_URL, RIVER_KEY_PREFIX,
// RIVER_BLOCK_DURATION_MS, RIVER_READ_COUNT_CAP and
// RIVER_RESUME_ITERATION_CAP from the environment, applying the documented
// defaults for anything unset (§6).
func ParseConfig() (Config, error) {
	cfg := Config{
		RedisURL:           os.Getenv("RIVER_REDIS_URL"),
		KeyPrefix:          "river:stream:",
		BlockDuration:      10 * time.Millisecond,
		ReadCountCap:       10,
		ResumeIterationCap: 1000,
	}

	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("RIVER_REDIS_URL must be set")
	}

	if v := os.Getenv("RIVER_KEY_PREFIX"); v != "" {
		cfg.KeyPrefix = v
	}
	if v := os.Getenv("RIVER_BLOCK_DURATION_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid RIVER_BLOCK_DURATION_MS %q: %w", v, err)
		}
		cfg.BlockDuration = time.Duration(ms) * time.Millisecond
	}
	if v := os.Getenv("RIVER_READ_COUNT_CAP"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid RIVER_READ_COUNT_CAP %q: %w", v, err)
		}
		cfg.ReadCountCap = n
	}
	if v := os.Getenv("RIVER_RESUME_ITERATION_CAP"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid RIVER_RESUME_ITERATION_CAP %q: %w", v, err)
		}
		cfg.ResumeIterationCap = n
	}

	return cfg, nil
}
