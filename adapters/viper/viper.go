// Package viper loads the mediator's deployment configuration from
// config/<environment>/config.yaml with MEDIATOR_* environment overrides.
package viper

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/abhissng/nhwr-mediator/blame"
	"github.com/abhissng/nhwr-mediator/utils/constant"
	"github.com/abhissng/nhwr-mediator/utils/helpers"
	"github.com/spf13/viper"
)

// Viper struct holds the configuration for the Viper client
type Viper struct {
	configName  string
	configType  string
	configPath  string
	environment string
	client      *viper.Viper
}

// ViperOption configures a Viper.
type ViperOption func(*Viper)

// WithEnvironment overrides the environment read from MEDIATOR_ENV / NODE_ENV.
func WithEnvironment(env string) ViperOption {
	return func(v *Viper) {
		v.environment = env
	}
}

// NewViper creates the viper configuration. configPath is the folder holding
// one sub folder per environment ("test", "production").
func NewViper(configName, configType, configPath string, opts ...ViperOption) *Viper {
	v := &Viper{
		configName:  configName,
		configType:  configType,
		environment: helpers.GetEnvironment(),
		client:      viper.New(),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.environment = helpers.GetEnvironmentSlug(v.environment)
	v.configPath = filepath.Join(strings.TrimSuffix(configPath, "/"), v.environment)
	return v
}

// Environment is the resolved environment slug.
func (v *Viper) Environment() string {
	return v.environment
}

// Client exposes the underlying viper instance.
func (v *Viper) Client() *viper.Viper {
	return v.client
}

// InitialiseViper reads the configuration file. Every key can be overridden
// through MEDIATOR_<KEY> with dots replaced by underscores, e.g.
// MEDIATOR_API_PASSWORD.
func (v *Viper) InitialiseViper() error {
	v.client.SetConfigName(v.configName)
	v.client.SetConfigType(v.configType)
	v.client.AddConfigPath(v.configPath)

	v.client.SetEnvPrefix(constant.EnvPrefix)
	v.client.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.client.AutomaticEnv()
	setDefaults(v.client)

	if err := v.client.ReadInConfig(); err != nil {
		return blame.ConfigLoadFailed(fmt.Errorf("error reading configuration file from %s: %w", v.configPath, err))
	}
	return nil
}

// UnmarshalConfig unmarshals the entire Viper configuration into the provided struct reference.
func UnmarshalConfig[T any](v *Viper, target *T) error {
	if target == nil {
		return fmt.Errorf("target struct cannot be nil")
	}
	if err := v.client.Unmarshal(target); err != nil {
		return blame.ConfigLoadFailed(fmt.Errorf("failed to unmarshal viper config: %w", err))
	}
	return nil
}
