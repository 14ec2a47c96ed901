package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/hobbytracker/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8000")
//	-g string   gRPC health bind address (e.g., ":50051")
//	-r string   database driver: pgx or postgres
//	-d string   PostgreSQL DSN
//	-m int      max open database connections
//	-l string   log level
//	-b int      bcrypt cost
//	-q float    register requests per second per client IP (0 disables)
//	-u int      register burst
//	-i int      health check interval, seconds
//
// Only the flags above are read from args (see flagx.FilterArgs), so -c
// and unrelated flags do not trip the parser.
func parseFlags(config *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-g", "-r", "-d", "-m", "-l", "-b", "-q", "-u", "-i"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run HTTP server")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "address and port to run gRPC health server")
	fs.StringVar(&config.DatabaseDriver, "r", config.DatabaseDriver, "database driver (pgx or postgres)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.IntVar(&config.DatabaseMaxOpenConns, "m", config.DatabaseMaxOpenConns, "max open database connections")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.IntVar(&config.BcryptCost, "b", config.BcryptCost, "bcrypt cost")
	fs.Float64Var(&config.RegisterRateLimit, "q", config.RegisterRateLimit, "register requests per second per client (0 disables)")
	fs.IntVar(&config.RegisterRateBurst, "u", config.RegisterRateBurst, "register burst per client")

	healthCheckInterval := fs.Int("i", int(config.HealthCheckInterval.Seconds()), "health check interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// -i only has whole-second precision; keep a finer value from JSON or env
	// unless the flag was given.
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "i" {
			config.HealthCheckInterval = time.Duration(*healthCheckInterval) * time.Second
		}
	})
}
