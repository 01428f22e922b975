package config

// This file layers configuration sources with viper. Precedence, lowest to
// highest: DefaultConfig, config file, .env file and ARC2IPA_* environment,
// then CLI flags that were explicitly set.

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name, also used as the config file stem.
	AppName = "arc2ipa"
	// EnvPrefix prefixes every environment override, e.g. ARC2IPA_METHOD.
	EnvPrefix = "ARC2IPA"
)

// Keys shared by viper, the environment and the CLI flag set. Flag names
// must match these so BindPFlags lines up.
const (
	KeyInput          = "input"
	KeyOutput         = "output"
	KeyMethod         = "method"
	KeySigningStyle   = "signing-style"
	KeyTeamID         = "team-id"
	KeyAllowProvision = "allow-provisioning-updates"
	KeyExisting       = "existing"
	KeyDelegate       = "delegate"
	KeyTimeout        = "timeout"
	KeyPTY            = "pty"
	KeyReport         = "report"
	KeyLog            = "log"
	KeyColor          = "color"
	KeyVerbose        = "verbose"
	KeyCheck          = "check"
)

// LoadOptions defines explicit configuration loading inputs.
type LoadOptions struct {
	// ConfigFile forces loading from a specific file when set. Otherwise
	// arc2ipa.{yaml,toml,json} is looked up in the working directory.
	ConfigFile string
	// EnvFile is the dotenv file to load. Empty means ".env", which may be absent.
	EnvFile string
	// Flags is the parsed CLI flag set; only flags the user set override.
	Flags *pflag.FlagSet
}

// Load builds a Config from all sources. It returns the path of the config
// file that was read, or "" when none was found. The result is not
// validated; call [Config.Validate] and [Config.Resolve] afterwards.
func Load(opts LoadOptions) (Config, string, error) {
	if err := loadDotenv(opts.EnvFile); err != nil {
		return Config{}, "", err
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, "", fmt.Errorf("read config %s: %w", opts.ConfigFile, err)
		}
	} else {
		v.SetConfigName(AppName)
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, "", fmt.Errorf("read config: %w", err)
			}
		}
	}

	if opts.Flags != nil {
		if err := v.BindPFlags(opts.Flags); err != nil {
			return Config{}, "", fmt.Errorf("bind flags: %w", err)
		}
	}

	cfg := Config{
		InputDir:                 NormalizeDirArg(v.GetString(KeyInput)),
		OutputDir:                NormalizeDirArg(v.GetString(KeyOutput)),
		Method:                   Method(strings.ToLower(strings.TrimSpace(v.GetString(KeyMethod)))),
		SigningStyle:             SigningStyle(strings.ToLower(v.GetString(KeySigningStyle))),
		TeamID:                   strings.TrimSpace(v.GetString(KeyTeamID)),
		AllowProvisioningUpdates: v.GetBool(KeyAllowProvision),
		Existing:                 ExistingPolicy(strings.ToLower(v.GetString(KeyExisting))),
		Delegate:                 v.GetString(KeyDelegate),
		Timeout:                  v.GetDuration(KeyTimeout),
		UsePTY:                   v.GetBool(KeyPTY),
		ReportFile:               v.GetString(KeyReport),
		LogFile:                  v.GetString(KeyLog),
		ColorMode:                ColorMode(strings.ToLower(v.GetString(KeyColor))),
		Verbose:                  v.GetBool(KeyVerbose),
		CheckOnly:                v.GetBool(KeyCheck),
	}
	return cfg, v.ConfigFileUsed(), nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault(KeyInput, d.InputDir)
	v.SetDefault(KeyOutput, d.OutputDir)
	v.SetDefault(KeyMethod, string(d.Method))
	v.SetDefault(KeySigningStyle, string(d.SigningStyle))
	v.SetDefault(KeyTeamID, d.TeamID)
	v.SetDefault(KeyAllowProvision, d.AllowProvisioningUpdates)
	v.SetDefault(KeyExisting, string(d.Existing))
	v.SetDefault(KeyDelegate, d.Delegate)
	v.SetDefault(KeyTimeout, d.Timeout)
	v.SetDefault(KeyPTY, d.UsePTY)
	v.SetDefault(KeyReport, d.ReportFile)
	v.SetDefault(KeyLog, d.LogFile)
	v.SetDefault(KeyColor, string(d.ColorMode))
	v.SetDefault(KeyVerbose, d.Verbose)
	v.SetDefault(KeyCheck, d.CheckOnly)
}

// loadDotenv loads path (default ".env") into the process environment
// without overriding variables that are already set. A missing default
// file is fine; a missing explicit file is an error.
func loadDotenv(path string) error {
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}
