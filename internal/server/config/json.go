package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/hobbytracker/internal/flagx"
	"github.com/dmitrijs2005/hobbytracker/internal/timex"
)

// JsonConfig is the on-disk shape of the server configuration. Durations use
// timex.Duration so both "5m" and integer nanoseconds are accepted.
type JsonConfig struct {
	EndpointAddrHTTP        string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC        string         `json:"endpoint_addr_grpc"`
	DatabaseDriver          string         `json:"database_driver"`
	DatabaseDSN             string         `json:"database_dsn"`
	DatabaseMaxOpenConns    int            `json:"database_max_open_conns"`
	DatabaseMaxIdleConns    int            `json:"database_max_idle_conns"`
	DatabaseConnMaxLifetime timex.Duration `json:"database_conn_max_lifetime"`
	DatabaseConnMaxIdleTime timex.Duration `json:"database_conn_max_idle_time"`
	LogLevel                string         `json:"log_level"`
	BcryptCost              int            `json:"bcrypt_cost"`
	RegisterRateLimit       float64        `json:"register_rate_limit"`
	RegisterRateBurst       int            `json:"register_rate_burst"`
	HealthCheckInterval     timex.Duration `json:"health_check_interval"`
}

// parseJson overlays config with the JSON file named by -c / -config in args.
// Keys missing from the file keep their current values. A file that cannot
// be read or decoded is fatal and panics.
func parseJson(config *Config, args []string) {
	path := flagx.ConfigFilePath(args)
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{
		EndpointAddrHTTP:        config.EndpointAddrHTTP,
		EndpointAddrGRPC:        config.EndpointAddrGRPC,
		DatabaseDriver:          config.DatabaseDriver,
		DatabaseDSN:             config.DatabaseDSN,
		DatabaseMaxOpenConns:    config.DatabaseMaxOpenConns,
		DatabaseMaxIdleConns:    config.DatabaseMaxIdleConns,
		DatabaseConnMaxLifetime: timex.Duration{Duration: config.DatabaseConnMaxLifetime},
		DatabaseConnMaxIdleTime: timex.Duration{Duration: config.DatabaseConnMaxIdleTime},
		LogLevel:                config.LogLevel,
		BcryptCost:              config.BcryptCost,
		RegisterRateLimit:       config.RegisterRateLimit,
		RegisterRateBurst:       config.RegisterRateBurst,
		HealthCheckInterval:     timex.Duration{Duration: config.HealthCheckInterval},
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.EndpointAddrHTTP = c.EndpointAddrHTTP
	config.EndpointAddrGRPC = c.EndpointAddrGRPC
	config.DatabaseDriver = c.DatabaseDriver
	config.DatabaseDSN = c.DatabaseDSN
	config.DatabaseMaxOpenConns = c.DatabaseMaxOpenConns
	config.DatabaseMaxIdleConns = c.DatabaseMaxIdleConns
	config.DatabaseConnMaxLifetime = c.DatabaseConnMaxLifetime.Duration
	config.DatabaseConnMaxIdleTime = c.DatabaseConnMaxIdleTime.Duration
	config.LogLevel = c.LogLevel
	config.BcryptCost = c.BcryptCost
	config.RegisterRateLimit = c.RegisterRateLimit
	config.RegisterRateBurst = c.RegisterRateBurst
	config.HealthCheckInterval = c.HealthCheckInterval.Duration
}
