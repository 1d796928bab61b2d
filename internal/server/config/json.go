package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/sitestats/usersmanager/internal/flagx"
	"github.com/sitestats/usersmanager/internal/timex"
)

// JsonConfig is the intermediate DTO for reading JSON configuration files.
// It uses timex.Duration so interval fields accept both strings such as
// "30m" and integer nanoseconds. After unmarshalling, values are copied
// into the runtime Config.
type JsonConfig struct {
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	TokenAuthSalt                string         `json:"token_auth_salt"`
	SessionTokenValidityDuration timex.Duration `json:"session_token_validity_duration"`
}

// parseJson loads configuration values from the JSON file named by the -c
// or -config command-line flags. When neither flag is set, no file is
// loaded and config stays untouched. An unreadable or invalid file panics;
// startup cannot proceed on a half-applied config.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.TokenAuthSalt = c.TokenAuthSalt
	config.SessionTokenValidityDuration = time.Duration(c.SessionTokenValidityDuration.Duration)
}
