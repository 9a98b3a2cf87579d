// Package mediator describes the mediator to the platform: its identity, the
// endpoints it exposes and the default configuration it ships with.
package mediator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/abhissng/nhwr-mediator/adapters/validator"
	"github.com/abhissng/nhwr-mediator/blame"
	"github.com/abhissng/nhwr-mediator/configstore"
	"gopkg.in/yaml.v3"
)

// Endpoint is an endpoint the platform can route to.
type Endpoint struct {
	Name    string `json:"name" yaml:"name" validate:"required"`
	Host    string `json:"host" yaml:"host" validate:"required"`
	Path    string `json:"path" yaml:"path"`
	Port    int    `json:"port" yaml:"port" validate:"required,min=1,max=65535"`
	Primary bool   `json:"primary" yaml:"primary"`
	Type    string `json:"type" yaml:"type"`
}

// Route is one route of the default channel.
type Route struct {
	Name    string `json:"name" yaml:"name"`
	Host    string `json:"host" yaml:"host"`
	Path    string `json:"path,omitempty" yaml:"path,omitempty"`
	Port    int    `json:"port" yaml:"port"`
	Primary bool   `json:"primary" yaml:"primary"`
	Type    string `json:"type" yaml:"type"`
}

// ChannelConfig is the channel the platform creates for the mediator.
type ChannelConfig struct {
	Name       string   `json:"name" yaml:"name"`
	URLPattern string   `json:"urlPattern" yaml:"urlPattern"`
	Routes     []Route  `json:"routes" yaml:"routes"`
	AllowIPs   []string `json:"allow,omitempty" yaml:"allow,omitempty"`
	Methods    []string `json:"methods,omitempty" yaml:"methods,omitempty"`
	Type       string   `json:"type" yaml:"type"`
}

// ConfigDef describes one configurable setting shown in the platform console.
type ConfigDef struct {
	Param       string      `json:"param" yaml:"param"`
	DisplayName string      `json:"displayName" yaml:"displayName"`
	Description string      `json:"description" yaml:"description"`
	Type        string      `json:"type" yaml:"type"`
	Values      []string    `json:"values,omitempty" yaml:"values,omitempty"`
	Template    []ConfigDef `json:"template,omitempty" yaml:"template,omitempty"`
}

// Definition is the payload presented to the platform on registration.
type Definition struct {
	URN                  string                    `json:"urn" yaml:"urn" validate:"required"`
	Version              string                    `json:"version" yaml:"version" validate:"required"`
	Name                 string                    `json:"name" yaml:"name" validate:"required"`
	Description          string                    `json:"description" yaml:"description"`
	DefaultChannelConfig []ChannelConfig           `json:"defaultChannelConfig,omitempty" yaml:"defaultChannelConfig,omitempty"`
	Endpoints            []Endpoint                `json:"endpoints" yaml:"endpoints" validate:"required,min=1,dive"`
	ConfigDefs           []ConfigDef               `json:"configDefs,omitempty" yaml:"configDefs,omitempty"`
	Config               configstore.Configuration `json:"config,omitempty" yaml:"config,omitempty"`
}

var validate = validator.Default

// Validate checks the fields the platform requires.
func (d *Definition) Validate() error {
	return validate.Struct(d)
}

// Port is the listening port advertised by the primary (first) endpoint.
func (d *Definition) Port() int {
	if len(d.Endpoints) == 0 {
		return 0
	}
	return d.Endpoints[0].Port
}

// StaticConfig returns a copy of the configuration shipped with the definition.
func (d *Definition) StaticConfig() configstore.Configuration {
	return d.Config.Clone()
}

// Load reads a definition from a .json, .yaml or .yml file.
func Load(path string) (*Definition, error) {
	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, blame.MediatorDefinitionInvalid(path, err)
	}
	def, err := Parse(raw, filepath.Ext(path))
	if err != nil {
		return nil, blame.MediatorDefinitionInvalid(path, err)
	}
	return def, nil
}

// Parse decodes raw according to ext and validates the result.
func Parse(raw []byte, ext string) (*Definition, error) {
	def := &Definition{}
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		var generic map[string]any
		if err := yaml.Unmarshal(raw, &generic); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
		// re-encode through JSON so yaml and json share one set of field rules
		asJSON, err := json.Marshal(generic)
		if err != nil {
			return nil, fmt.Errorf("normalise yaml: %w", err)
		}
		raw = asJSON
		fallthrough
	case ".json", "":
		dec := json.NewDecoder(bytes.NewReader(raw))
		if err := dec.Decode(def); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported definition format %q", ext)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	if def.Config == nil {
		def.Config = configstore.Configuration{}
	}
	return def, nil
}
