// Package config loads service settings from defaults, an optional dotenv
// file and the process environment.
package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pricofy/translation-judge/internal/dispatch"
	"github.com/pricofy/translation-judge/internal/router"
)

// Keys. Each one is also the environment variable that overrides it.
const (
	KeyEndpoint       = "MENTORPIECE_ENDPOINT"
	KeyTimeout        = "MENTORPIECE_TIMEOUT"
	KeyAPIKey         = dispatch.CredentialEnv
	KeyTranslateModel = "TRANSLATE_MODEL"
	KeyJudgeModel     = "JUDGE_MODEL"
	KeyListenAddr     = "LISTEN_ADDR"
	KeyLogLevel       = "LOG_LEVEL"
)

// DefaultEnvFile is read from the working directory when present.
const DefaultEnvFile = ".env"

// Config holds the settings resolved at startup.
// The API key is deliberately not among them, see APIKey.
type Config struct {
	Endpoint       string
	Timeout        time.Duration
	TranslateModel string
	JudgeModel     string
	ListenAddr     string
	LogLevel       string

	v *viper.Viper
}

// Load resolves settings. envFile may be empty or point to a missing file.
func Load(envFile string) (*Config, error) {
	v := viper.New()
	v.SetDefault(KeyEndpoint, dispatch.DefaultEndpoint)
	v.SetDefault(KeyTimeout, dispatch.DefaultTimeout.String())
	v.SetDefault(KeyTranslateModel, router.DefaultTranslateModel)
	v.SetDefault(KeyJudgeModel, router.DefaultJudgeModel)
	v.SetDefault(KeyListenAddr, ":5000")
	v.SetDefault(KeyLogLevel, "info")
	v.AutomaticEnv()

	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			v.SetConfigFile(envFile)
			v.SetConfigType("env")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", envFile, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat %s: %w", envFile, err)
		}
	}

	timeout, err := ParseTimeout(v.GetString(KeyTimeout))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", KeyTimeout, err)
	}

	return &Config{
		Endpoint:       v.GetString(KeyEndpoint),
		Timeout:        timeout,
		TranslateModel: v.GetString(KeyTranslateModel),
		JudgeModel:     v.GetString(KeyJudgeModel),
		ListenAddr:     v.GetString(KeyListenAddr),
		LogLevel:       v.GetString(KeyLogLevel),
		v:              v,
	}, nil
}

// APIKey returns the MentorPiece credential as of now. The environment is
// consulted on every call so a key exported after startup is picked up.
func (c *Config) APIKey() string {
	return c.v.GetString(KeyAPIKey)
}

// ParseTimeout reads a positive timeout. A bare number is seconds, anything
// else must be a Go duration such as "1m30s".
func ParseTimeout(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	var d time.Duration
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		if math.IsNaN(secs) || math.IsInf(secs, 0) {
			return 0, fmt.Errorf("timeout must be finite, got %q", raw)
		}
		d = time.Duration(secs * float64(time.Second))
	} else {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return 0, fmt.Errorf("%q is neither seconds nor a duration", raw)
		}
		d = parsed
	}
	if d <= 0 {
		return 0, fmt.Errorf("timeout must be positive, got %q", raw)
	}
	return d, nil
}
