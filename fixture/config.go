package fixture

import (
	"fmt"

	"github.com/kbukum/dbprime/config"
	"github.com/kbukum/dbprime/database"
	"github.com/kbukum/dbprime/logger"
)

// Config selects a driver and connection for a Factory.
//
//	driver: postgres
//	connection:
//	  host: localhost
//	  port: "5432"
//	  user: app
//	  database: app_test
//	  sslmode: disable
//	database:
//	  log_level: warn
//	logging:
//	  level: info
type Config struct {
	Driver     string           `mapstructure:"driver" validate:"required,oneof=postgres mysql sqlite"`
	Connection ConnectionConfig `mapstructure:"connection"`
	Database   database.Config  `mapstructure:"database"`
	Logging    logger.Config    `mapstructure:"logging"`
}

// ConnectionConfig holds the connection arguments handed to the driver.
type ConnectionConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"sslmode"`
	DSN      string `mapstructure:"dsn"`

	// Params are passed through as driver parameters.
	Params map[string]string `mapstructure:"params"`
}

// Args converts the connection settings to driver arguments. Empty fields
// are left out.
func (c ConnectionConfig) Args() database.Args {
	args := database.Args{}
	for k, v := range c.Params {
		args[k] = v
	}
	set := func(key, value string) {
		if value != "" {
			args[key] = value
		}
	}
	set(database.ArgHost, c.Host)
	set(database.ArgPort, c.Port)
	set(database.ArgUser, c.User)
	set(database.ArgPassword, c.Password)
	set(database.ArgDatabase, c.Database)
	set(database.ArgSSLMode, c.SSLMode)
	set(database.ArgDSN, c.DSN)
	return args
}

// ApplyDefaults sets defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	c.Database.ApplyDefaults()
	c.Logging.ApplyDefaults()
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := config.Validate(c); err != nil {
		return err
	}
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}

// LoadConfig reads name.yml, .env and DBPRIME_* variables, applies
// defaults and validates the result.
func LoadConfig(name string, opts ...config.LoaderOption) (Config, error) {
	var cfg Config
	if err := config.LoadConfig(name, &cfg, opts...); err != nil {
		return Config{}, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
