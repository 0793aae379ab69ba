/*
config loads the gateway configuration from defaults, a YAML file, a .env
file and the environment, in increasing order of precedence. Command-line
flags are merged on top by the caller.
*/
package config

import (
	"errors"
	"os"
	"strings"
	"time"

	// Packages
	validator "github.com/go-playground/validator/v10"
	godotenv "github.com/joho/godotenv"
	weather "github.com/mutablelogic/go-weather"
	openweather "github.com/mutablelogic/go-weather/pkg/openweather"
	types "github.com/mutablelogic/go-server/pkg/types"
	trace "go.opentelemetry.io/otel/trace"
	zap "go.uber.org/zap"
	yaml "gopkg.in/yaml.v3"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type Config struct {
	APIKey   string        `yaml:"api_key" json:"api_key,omitempty" validate:"required"`
	Endpoint string        `yaml:"endpoint" json:"endpoint,omitempty" validate:"required,url"`
	Units    string        `yaml:"units" json:"units,omitempty" validate:"required,oneof=metric imperial standard"`
	Language string        `yaml:"lang" json:"lang,omitempty" validate:"required,min=2"`
	Timeout  time.Duration `yaml:"timeout" json:"timeout,omitempty" validate:"gt=0"`
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	EnvAPIKey   = "OPENWEATHER_API_KEY"
	EnvEndpoint = "OPENWEATHER_ENDPOINT"
	EnvUnits    = "OPENWEATHER_UNITS"
	EnvLanguage = "OPENWEATHER_LANG"
	EnvTimeout  = "OPENWEATHER_TIMEOUT"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// Default returns the configuration used when nothing else is set
func Default() Config {
	return Config{
		Endpoint: openweather.DefaultEndpoint,
		Units:    openweather.DefaultUnits,
		Language: openweather.DefaultLanguage,
		Timeout:  openweather.DefaultTimeout,
	}
}

// Load returns the defaults overlaid with the YAML file at path (if not
// empty), then any env files which exist, then the environment. Values in
// env files never override the environment. The result is not validated.
func Load(path string, envFiles ...string) (Config, error) {
	config := Default()

	// YAML file
	if path != "" {
		if file, err := ReadFile(path); err != nil {
			return config, err
		} else {
			config.Merge(file)
		}
	}

	// Env files
	dotenv, err := readEnvFiles(envFiles...)
	if err != nil {
		return config, err
	}

	// Environment
	env, err := fromEnv(func(key string) (string, bool) {
		if value, exists := os.LookupEnv(key); exists {
			return value, true
		}
		value, exists := dotenv[key]
		return value, exists
	})
	if err != nil {
		return config, err
	}
	config.Merge(env)

	// Return success
	return config, nil
}

// ReadFile decodes a YAML configuration file
func ReadFile(path string) (Config, error) {
	var config Config
	data, err := os.ReadFile(path)
	if err != nil {
		return config, weather.ErrConfiguration.Withf("read %q: %v", path, err)
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, weather.ErrConfiguration.Withf("parse %q: %v", path, err)
	}
	return config, nil
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Merge overwrites fields with the non-empty values of other
func (c *Config) Merge(other Config) {
	if v := strings.TrimSpace(other.APIKey); v != "" {
		c.APIKey = v
	}
	if v := strings.TrimSpace(other.Endpoint); v != "" {
		c.Endpoint = v
	}
	if v := strings.TrimSpace(other.Units); v != "" {
		c.Units = v
	}
	if v := strings.TrimSpace(other.Language); v != "" {
		c.Language = v
	}
	if other.Timeout != 0 {
		c.Timeout = other.Timeout
	}
}

// Validate returns a configuration error naming every invalid field
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return weather.ErrConfiguration.With(err)
	}
	var result error
	for _, fieldErr := range fieldErrs {
		result = errors.Join(result, weather.ErrConfiguration.Withf("%s: failed %q", fieldErr.Field(), fieldErr.Tag()))
	}
	return result
}

// Opts returns the gateway options for this configuration
func (c Config) Opts(log *zap.Logger, tracer trace.Tracer) []openweather.Opt {
	return []openweather.Opt{
		openweather.OptEndpoint(c.Endpoint),
		openweather.OptUnits(c.Units),
		openweather.OptLanguage(c.Language),
		openweather.OptTimeout(c.Timeout),
		openweather.OptLogger(log),
		openweather.OptTracer(tracer),
	}
}

// Client validates the configuration and returns a gateway client
func (c Config) Client(log *zap.Logger, tracer trace.Tracer) (*openweather.Client, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return openweather.New(c.APIKey, c.Opts(log, tracer)...)
}

///////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (c Config) String() string {
	if c.APIKey != "" {
		c.APIKey = "***"
	}
	c.Endpoint = openweather.RedactURL(c.Endpoint)
	return types.Stringify(c)
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// readEnvFiles reads the env files which exist, earlier files taking
// precedence over later ones
func readEnvFiles(paths ...string) (map[string]string, error) {
	result := make(map[string]string)
	for _, path := range paths {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		values, err := godotenv.Read(path)
		if err != nil {
			return nil, weather.ErrConfiguration.Withf("read %q: %v", path, err)
		}
		for key, value := range values {
			if _, exists := result[key]; !exists {
				result[key] = value
			}
		}
	}
	return result, nil
}

func fromEnv(lookup func(string) (string, bool)) (Config, error) {
	var config Config
	config.APIKey, _ = lookup(EnvAPIKey)
	config.Endpoint, _ = lookup(EnvEndpoint)
	config.Units, _ = lookup(EnvUnits)
	config.Language, _ = lookup(EnvLanguage)
	if value, exists := lookup(EnvTimeout); exists && strings.TrimSpace(value) != "" {
		timeout, err := time.ParseDuration(strings.TrimSpace(value))
		if err != nil {
			return config, weather.ErrConfiguration.Withf("%s: %v", EnvTimeout, err)
		}
		config.Timeout = timeout
	}
	return config, nil
}
