package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds all configuration for ama
type Config struct {
	User   UserConfig   `mapstructure:"user"`
	Init   InitConfig   `mapstructure:"init"`
	Update UpdateConfig `mapstructure:"update"`
}

// UserConfig overrides the commit author otherwise read from git configuration.
type UserConfig struct {
	Name  string `mapstructure:"name"`
	Email string `mapstructure:"email"`
}

// InitConfig holds repository scaffolding options
type InitConfig struct {
	Commit        bool   `mapstructure:"commit"`
	CommitMessage string `mapstructure:"commit_message"`
	Branch        string `mapstructure:"branch"`
}

// UpdateConfig holds reconciliation options
type UpdateConfig struct {
	// Ignore lists doublestar globs, relative to src/, never treated as extras.
	Ignore []string `mapstructure:"ignore"`
	// OnExtra is one of OnExtraPrompt, OnExtraKeep, OnExtraDelete.
	OnExtra string `mapstructure:"on_extra"`
	// RespectGitignore also skips files matched by .gitignore,
	// .git/info/exclude and .amaignore.
	RespectGitignore bool `mapstructure:"respect_gitignore"`
}

const (
	OnExtraPrompt = "prompt"
	OnExtraKeep   = "keep"
	OnExtraDelete = "delete"
)

var defaultConfig = Config{
	Init: InitConfig{
		Commit:        true,
		CommitMessage: "Amaterasu job repo init",
		Branch:        "master",
	},
	Update: UpdateConfig{
		Ignore:  []string{},
		OnExtra: OnExtraPrompt,
	},
}

// Default returns a copy of the built-in configuration.
func Default() *Config {
	c := defaultConfig
	c.Update.Ignore = append([]string(nil), defaultConfig.Update.Ignore...)
	return &c
}

// FlagBindings maps configuration keys to the command-line flags that may
// override them. Flags missing from a given FlagSet are skipped.
var FlagBindings = map[string]string{
	"user.name":                "author-name",
	"user.email":               "author-email",
	"init.commit_message":      "message",
	"init.branch":              "branch",
	"update.ignore":            "ignore",
	"update.on_extra":          "on-extra",
	"update.respect_gitignore": "respect-gitignore",
}

// LoadConfig loads configuration from defaults, an ama.yaml file, AMA_*
// environment variables and, when flags is non-nil, changed command-line
// flags. An empty configFile searches ".", $HOME and the ama home directory;
// a missing file is not an error in that case.
func LoadConfig(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault("user.name", "")
	v.SetDefault("user.email", "")
	v.SetDefault("init.commit", defaultConfig.Init.Commit)
	v.SetDefault("init.commit_message", defaultConfig.Init.CommitMessage)
	v.SetDefault("init.branch", defaultConfig.Init.Branch)
	v.SetDefault("update.ignore", defaultConfig.Update.Ignore)
	v.SetDefault("update.on_extra", defaultConfig.Update.OnExtra)
	v.SetDefault("update.respect_gitignore", defaultConfig.Update.RespectGitignore)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("ama")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
		if home, err := GetAmaHome(); err == nil {
			v.AddConfigPath(home)
		}
	}

	v.SetEnvPrefix("AMA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	if flags != nil {
		if err := BindFlags(v, flags); err != nil {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// BindFlags wires the flags named in FlagBindings into v.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for key, name := range FlagBindings {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding flag --%s: %w", name, err)
		}
	}
	return nil
}

// Validate checks values viper cannot constrain on its own.
func (c *Config) Validate() error {
	switch c.Update.OnExtra {
	case OnExtraPrompt, OnExtraKeep, OnExtraDelete:
	default:
		return fmt.Errorf("update.on_extra must be one of %s, %s, %s; got %q",
			OnExtraPrompt, OnExtraKeep, OnExtraDelete, c.Update.OnExtra)
	}
	if strings.TrimSpace(c.Init.Branch) == "" {
		return errors.New("init.branch must not be empty")
	}
	return nil
}

// GetAmaHome returns the ama home directory
func GetAmaHome() (string, error) {
	if home := os.Getenv("AMA_HOME"); home != "" {
		return home, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %v", err)
	}

	return filepath.Join(homeDir, ".ama"), nil
}
