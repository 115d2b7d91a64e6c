// Package config resolves client settings from defaults, environment
// variables and command-line flags, in increasing order of precedence.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"xdao.co/wfledger/fault"
)

// Setting keys, shared by viper, flags and environment bindings.
const (
	KeyKeyFile        = "key_file"
	KeyValidatorURL   = "validator_url"
	KeyDialTimeout    = "dial_timeout"
	KeyRequestTimeout = "request_timeout"
	KeyLogLevel       = "log_level"
	KeyLogConsole     = "log_console"
)

// DefaultValidatorURL is the conventional validator address in a compose
// network. The client reaches it over gRPC, so the host must run
// wfledger-devnet or another server of the Validator service; a stock
// validator's ZMQ endpoint does not answer.
const DefaultValidatorURL = "tcp://sawtooth-0:4004"

// Config is passed explicitly to constructors; nothing reads the
// environment after Load.
type Config struct {
	KeyFile        string
	ValidatorURL   string
	DialTimeout    time.Duration
	RequestTimeout time.Duration
	LogLevel       string
	LogConsole     bool
}

// DefaultKeyFile is the validator client's conventional key location.
func DefaultKeyFile() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = "/root"
	}
	return filepath.Join(home, ".sawtooth", "keys", "client.priv")
}

// AddFlags registers the client flags on fs. Flag names use dashes.
func AddFlags(fs *pflag.FlagSet) {
	fs.String(flagName(KeyKeyFile), "", "private key file (default "+DefaultKeyFile()+")")
	fs.String(flagName(KeyValidatorURL), "", "gRPC validator endpoint, e.g. a wfledger-devnet listener (default "+DefaultValidatorURL+")")
	fs.Duration(flagName(KeyDialTimeout), 5*time.Second, "timeout for connecting to the validator")
	fs.Duration(flagName(KeyRequestTimeout), 0, "timeout per request; 0 waits for the transport")
	fs.String(flagName(KeyLogLevel), "info", "log level (debug, info, warn, error)")
	fs.Bool(flagName(KeyLogConsole), false, "human-readable log output")
}

// Bind attaches defaults, environment variables and the flags in fs (if not
// nil) to v.
func Bind(v *viper.Viper, fs *pflag.FlagSet) error {
	v.SetDefault(KeyKeyFile, DefaultKeyFile())
	v.SetDefault(KeyValidatorURL, DefaultValidatorURL)
	v.SetDefault(KeyDialTimeout, 5*time.Second)
	v.SetDefault(KeyRequestTimeout, time.Duration(0))
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogConsole, false)

	// The unprefixed names are the ones validator tooling already uses.
	binds := map[string][]string{
		KeyKeyFile:        {"WFLEDGER_KEY_FILE", "SAWTOOTH_PRIVATE_KEY"},
		KeyValidatorURL:   {"WFLEDGER_VALIDATOR_URL", "VALIDATOR_URL"},
		KeyDialTimeout:    {"WFLEDGER_DIAL_TIMEOUT"},
		KeyRequestTimeout: {"WFLEDGER_REQUEST_TIMEOUT"},
		KeyLogLevel:       {"WFLEDGER_LOG_LEVEL"},
		KeyLogConsole:     {"WFLEDGER_LOG_CONSOLE"},
	}
	for key, envs := range binds {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return fault.Wrap(fault.KindConfig, "WFL-CFG-001", "bind environment for "+key, err)
		}
	}

	if fs == nil {
		return nil
	}
	for key := range binds {
		f := fs.Lookup(flagName(key))
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fault.Wrap(fault.KindConfig, "WFL-CFG-002", "bind flag for "+key, err)
		}
	}
	return nil
}

// Load reads a validated Config out of v.
func Load(v *viper.Viper) (Config, error) {
	c := Config{
		KeyFile:        strings.TrimSpace(v.GetString(KeyKeyFile)),
		ValidatorURL:   strings.TrimSpace(v.GetString(KeyValidatorURL)),
		DialTimeout:    v.GetDuration(KeyDialTimeout),
		RequestTimeout: v.GetDuration(KeyRequestTimeout),
		LogLevel:       v.GetString(KeyLogLevel),
		LogConsole:     v.GetBool(KeyLogConsole),
	}
	return c, c.Validate()
}

func (c Config) Validate() error {
	if c.KeyFile == "" {
		return fault.New(fault.KindConfig, "WFL-CFG-010", "key file is required")
	}
	if c.ValidatorURL == "" {
		return fault.New(fault.KindConfig, "WFL-CFG-011", "validator url is required")
	}
	if c.DialTimeout < 0 || c.RequestTimeout < 0 {
		return fault.New(fault.KindConfig, "WFL-CFG-012", "timeouts must not be negative")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fault.Wrap(fault.KindConfig, "WFL-CFG-013", "invalid log level", err)
	}
	return nil
}

func flagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}
