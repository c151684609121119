package core

import (
	"log"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config engines
const (
	EnginePostgres = "postgres"
	EngineSQLite   = "sqlite"
)

type (
	Config struct {
		AppName      string `mapstructure:"appname" validate:"required"`
		Env          string `mapstructure:"env"`
		Build        string `mapstructure:"build"`
		Debug        bool   `mapstructure:"debug"`
		TestMode     bool   `mapstructure:"testmode"`
		Operator     string `mapstructure:"operator"`
		RollbarToken string `mapstructure:"rollbartoken"`
		ConfigDir    string `mapstructure:"configdir"`

		Database DatabaseConfig        `mapstructure:"database"`
		Views    map[string]ViewConfig `mapstructure:"views" validate:"dive"`
	}

	DatabaseConfig struct {
		Engine     string `mapstructure:"engine" validate:"oneof=postgres sqlite"`
		Host       string `mapstructure:"host"`
		Port       int    `mapstructure:"port"`
		Name       string `mapstructure:"name" validate:"required"`
		User       string `mapstructure:"user"`
		Password   string `mapstructure:"password"`
		DisableTLS bool   `mapstructure:"disabletls"`
		Path       string `mapstructure:"path"` // sqlite file
	}

	// ViewConfig parameterizes one department view.
	ViewConfig struct {
		Denominator int    `mapstructure:"denominator" validate:"gt=0"`
		PassRemark  string `mapstructure:"passremark" validate:"oneof=COMPLETE PASSED"`
		Scale       string `mapstructure:"scale" validate:"oneof=coarse fine"`
	}
)

// Address returns the database host:port.
func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("appName", "Immersion")
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("build", "dev")
	v.SetDefault("operator", os.Getenv("USER"))
	v.SetDefault("rollbarToken", "")
	v.SetDefault("configDir", "config")

	v.SetDefault("database.engine", EngineSQLite)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "immersion")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.disableTLS", true)
	v.SetDefault("database.path", "immersion.db")

	v.SetDefault("views.support.denominator", 185)
	v.SetDefault("views.support.passRemark", "COMPLETE")
	v.SetDefault("views.support.scale", "coarse")
	v.SetDefault("views.production.denominator", 175)
	v.SetDefault("views.production.passRemark", "PASSED")
	v.SetDefault("views.production.scale", "coarse")
	v.SetDefault("views.technical.denominator", 201)
	v.SetDefault("views.technical.passRemark", "COMPLETE")
	v.SetDefault("views.technical.scale", "fine")
}

// LoadConfig reads the configuration from defaults, the optional `<configDir>/.env.<env>` file
// and `<ENV>_`-prefixed environment variables (e.g. DEV_DATABASE_ENGINE).
func LoadConfig() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(v.GetString("configDir"), ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err = godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "stat %s", dotEnvPath)
	}

	conf := new(Config)
	if err := v.Unmarshal(conf); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}
	conf.Env = env

	validate := NewValidator(NewTranslator())
	if err := validate.Struct(conf); err != nil {
		return nil, errors.Wrap(err, "validating config")
	}
	return conf, nil
}

// NewConfig loads the configuration and exits the program if it is invalid.
func NewConfig() *Config {
	conf, err := LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return conf
}
