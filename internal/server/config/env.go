package config

import (
	"fmt"
	"strconv"
	"time"
)

const envPrefix = "HOBBYTRACKER_"

// parseEnv overlays config with HOBBYTRACKER_* environment variables.
// lookup is os.LookupEnv in production. Every Config field has a variable.
// Durations use time.ParseDuration syntax ("500ms", "1h"). Malformed values
// panic, the same way malformed flags do.
func parseEnv(config *Config, lookup func(string) (string, bool)) {
	str := func(name string, dst *string) {
		if v, ok := lookup(envPrefix + name); ok {
			*dst = v
		}
	}
	integer := func(name string, dst *int) {
		if v, ok := lookup(envPrefix + name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				panic(fmt.Errorf("%s%s: %w", envPrefix, name, err))
			}
			*dst = n
		}
	}
	duration := func(name string, dst *time.Duration) {
		if v, ok := lookup(envPrefix + name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				panic(fmt.Errorf("%s%s: %w", envPrefix, name, err))
			}
			*dst = d
		}
	}

	str("HTTP_ADDR", &config.EndpointAddrHTTP)
	str("GRPC_ADDR", &config.EndpointAddrGRPC)
	str("DATABASE_DRIVER", &config.DatabaseDriver)
	str("DATABASE_DSN", &config.DatabaseDSN)
	str("LOG_LEVEL", &config.LogLevel)
	integer("DATABASE_MAX_OPEN_CONNS", &config.DatabaseMaxOpenConns)
	integer("DATABASE_MAX_IDLE_CONNS", &config.DatabaseMaxIdleConns)
	duration("DATABASE_CONN_MAX_LIFETIME", &config.DatabaseConnMaxLifetime)
	duration("DATABASE_CONN_MAX_IDLE_TIME", &config.DatabaseConnMaxIdleTime)
	duration("HEALTH_CHECK_INTERVAL", &config.HealthCheckInterval)
	integer("BCRYPT_COST", &config.BcryptCost)
	integer("REGISTER_RATE_BURST", &config.RegisterRateBurst)

	if v, ok := lookup(envPrefix + "REGISTER_RATE_LIMIT"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			panic(fmt.Errorf("%sREGISTER_RATE_LIMIT: %w", envPrefix, err))
		}
		config.RegisterRateLimit = f
	}
}
