// Package config loads the login settings from the environment and an
// optional dotenv file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/acheong08/FlatpeakAuth/auth"
)

const (
	KeyEmail          = "EMAIL"
	KeyOtpCode        = "OTP_CODE"
	KeyBaseURL        = "BASE_URL"
	KeyTimeoutSeconds = "TIMEOUT_SECONDS"
	KeyUserAgent      = "USER_AGENT"
	KeyProxy          = "PROXY"
	KeyLogLevel       = "LOG_LEVEL"
)

var ErrMissingEmail = errors.New("EMAIL is required")

type Config struct {
	Email     string
	OtpCode   string
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	Proxy     string
	LogLevel  string
}

// Auth returns the settings shared by the pipeline components.
func (c Config) Auth() auth.Config {
	return auth.Config{
		BaseURL:   c.BaseURL,
		UserAgent: c.UserAgent,
		Timeout:   c.Timeout,
		Proxy:     c.Proxy,
	}
}

// Load reads settings from the environment, falling back to envFile. A
// missing envFile is not an error; environment variables take precedence.
func Load(envFile string) (Config, error) {
	v := viper.New()
	v.SetDefault(KeyBaseURL, auth.DefaultBaseURL)
	v.SetDefault(KeyTimeoutSeconds, int(auth.DefaultTimeout/time.Second))
	v.SetDefault(KeyUserAgent, auth.DefaultUserAgent)
	v.SetDefault(KeyLogLevel, "info")
	v.AutomaticEnv()

	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read %s: %w", envFile, err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		Email:     strings.TrimSpace(v.GetString(KeyEmail)),
		OtpCode:   strings.TrimSpace(v.GetString(KeyOtpCode)),
		BaseURL:   strings.TrimSpace(v.GetString(KeyBaseURL)),
		Timeout:   time.Duration(v.GetInt64(KeyTimeoutSeconds)) * time.Second,
		UserAgent: v.GetString(KeyUserAgent),
		Proxy:     strings.TrimSpace(v.GetString(KeyProxy)),
		LogLevel:  strings.ToLower(v.GetString(KeyLogLevel)),
	}

	if cfg.Email == "" {
		return Config{}, ErrMissingEmail
	}
	if cfg.Timeout <= 0 {
		return Config{}, fmt.Errorf("%s must be positive, got %q", KeyTimeoutSeconds, v.GetString(KeyTimeoutSeconds))
	}
	return cfg, nil
}
