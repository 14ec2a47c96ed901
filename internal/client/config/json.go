package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/hobbytracker/internal/flagx"
	"github.com/dmitrijs2005/hobbytracker/internal/timex"
)

// JsonConfig is the on-disk shape of the CLI configuration.
type JsonConfig struct {
	ServerURL string         `json:"server_url"`
	Timeout   timex.Duration `json:"timeout"`
}

// parseJson overlays cfg with the file named by -c / -config. Missing keys
// keep their current values; unreadable or invalid files panic.
func parseJson(cfg *Config, args []string) {
	path := flagx.ConfigFilePath(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	jc := JsonConfig{ServerURL: cfg.ServerURL, Timeout: timex.Duration{Duration: cfg.Timeout}}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	cfg.ServerURL = jc.ServerURL
	cfg.Timeout = jc.Timeout.Duration
}
