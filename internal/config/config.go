// Package config provides Viper-based configuration loading for the battle simulator.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cory-johannsen/battlecore/internal/game/catalog"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// BattleConfig holds simulation settings.
type BattleConfig struct {
	// Seed of the random stream. 0 picks a fresh seed per battle.
	Seed uint64 `mapstructure:"seed"`
	// TickMs is the delta passed to every tick.
	TickMs int64 `mapstructure:"tick_ms"`
	// MaxTicks bounds a battle that never reaches an outcome.
	MaxTicks int `mapstructure:"max_ticks"`
	// ContentDir holds skills/, buffs/ and affinity.yaml.
	ContentDir string `mapstructure:"content_dir"`
	// ScriptDir holds Lua damage modifiers. Empty disables scripting.
	ScriptDir string `mapstructure:"script_dir"`
	// InstructionLimit caps the Lua instructions per hook call. 0 is unlimited.
	InstructionLimit int `mapstructure:"instruction_limit"`
	// ControlPlayers lets the AI drive the player side.
	ControlPlayers bool `mapstructure:"control_players"`
	// LogDraws logs every random draw at debug level.
	LogDraws bool `mapstructure:"log_draws"`
}

// DamageConfig mirrors catalog.Settings for configuration files.
type DamageConfig struct {
	MinimumDamage          int64 `mapstructure:"minimum_damage"`
	MaxCritChance          int64 `mapstructure:"max_crit_chance"`
	DefaultCritMultiplier  int64 `mapstructure:"default_crit_multiplier"`
	MaxCritMultiplier      int64 `mapstructure:"max_crit_multiplier"`
	MaxProtectionRate      int64 `mapstructure:"max_protection_rate"`
	MaxDamageReductionRate int64 `mapstructure:"max_damage_reduction_rate"`
	DefaultAttackSpeed     int64 `mapstructure:"default_attack_speed"`
}

// Settings converts d to damage-pipeline settings.
func (d DamageConfig) Settings() *catalog.Settings {
	return &catalog.Settings{
		MinimumDamage:          d.MinimumDamage,
		MaxCritChance:          d.MaxCritChance,
		DefaultCritMultiplier:  d.DefaultCritMultiplier,
		MaxCritMultiplier:      d.MaxCritMultiplier,
		MaxProtectionRate:      d.MaxProtectionRate,
		MaxDamageReductionRate: d.MaxDamageReductionRate,
		DefaultAttackSpeed:     d.DefaultAttackSpeed,
	}
}

// Config is the top-level application configuration.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	Database DatabaseConfig `mapstructure:"database"`
	Battle   BattleConfig   `mapstructure:"battle"`
	Damage   DamageConfig   `mapstructure:"damage"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateDatabase(c.Database); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateBattle(c.Battle); err != nil {
		errs = append(errs, err.Error())
	}
	if err := c.Damage.Settings().Validate(); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateBattle(b BattleConfig) error {
	var errs []string
	if b.TickMs < 1 {
		errs = append(errs, fmt.Sprintf("battle.tick_ms must be >= 1, got %d", b.TickMs))
	}
	if b.MaxTicks < 1 {
		errs = append(errs, fmt.Sprintf("battle.max_ticks must be >= 1, got %d", b.MaxTicks))
	}
	if b.ContentDir == "" {
		errs = append(errs, "battle.content_dir must not be empty")
	}
	if b.InstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("battle.instruction_limit must be >= 0, got %d", b.InstructionLimit))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromViper(v)
}

// New returns a Viper instance with defaults and BATTLE_ environment
// overrides applied, for callers that run without a config file.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("BATTLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "battle")
	v.SetDefault("database.password", "battle")
	v.SetDefault("database.name", "battle")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("battle.seed", 0)
	v.SetDefault("battle.tick_ms", 100)
	v.SetDefault("battle.max_ticks", 6000)
	v.SetDefault("battle.content_dir", "content")
	v.SetDefault("battle.script_dir", "scripts")
	v.SetDefault("battle.instruction_limit", 100000)
	v.SetDefault("battle.control_players", true)
	v.SetDefault("battle.log_draws", false)

	d := catalog.DefaultSettings()
	v.SetDefault("damage.minimum_damage", d.MinimumDamage)
	v.SetDefault("damage.max_crit_chance", d.MaxCritChance)
	v.SetDefault("damage.default_crit_multiplier", d.DefaultCritMultiplier)
	v.SetDefault("damage.max_crit_multiplier", d.MaxCritMultiplier)
	v.SetDefault("damage.max_protection_rate", d.MaxProtectionRate)
	v.SetDefault("damage.max_damage_reduction_rate", d.MaxDamageReductionRate)
	v.SetDefault("damage.default_attack_speed", d.DefaultAttackSpeed)
}
