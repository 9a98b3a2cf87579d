// Package configstore holds the mediator's live configuration. The platform
// owns the content; the lifecycle replaces the whole value on every push and
// request handlers read a snapshot.
package configstore

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/abhissng/nhwr-mediator/utils/helpers"
	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
)

// Configuration maps a service name to its settings, e.g.
// {"nhwr": {"url": "...", "username": "...", "password": "..."}}.
// A stored Configuration must be treated as read-only.
type Configuration map[string]map[string]any

// Clone returns a deep copy of c.
func (c Configuration) Clone() Configuration {
	if c == nil {
		return Configuration{}
	}
	out := make(Configuration, len(c))
	for service, settings := range c {
		copied := make(map[string]any, len(settings))
		for key, value := range settings {
			copied[key] = cloneValue(value)
		}
		out[service] = copied
	}
	return out
}

func cloneValue(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, inner := range typed {
			out[k] = cloneValue(inner)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, inner := range typed {
			out[i] = cloneValue(inner)
		}
		return out
	default:
		return v
	}
}

// FromMap converts a loosely typed payload (decoded JSON, viper settings) into
// a Configuration. Entries whose value is not an object are ignored.
func FromMap(raw map[string]any) Configuration {
	out := make(Configuration, len(raw))
	for service, value := range raw {
		switch settings := value.(type) {
		case map[string]any:
			out[service] = settings
		case map[any]any:
			converted := make(map[string]any, len(settings))
			for k, v := range settings {
				converted[fmt.Sprint(k)] = v
			}
			out[service] = converted
		}
	}
	return out
}

// ServiceConfig is the typed view of one downstream service entry.
type ServiceConfig struct {
	URL      string `mapstructure:"url" validate:"required,url"`
	Username string `mapstructure:"username" validate:"required"`
	Password string `mapstructure:"password" validate:"required"`
}

var (
	// ErrServiceNotConfigured is returned when a service has no entry at all.
	ErrServiceNotConfigured = errors.New("service not configured")

	validate = validator.New()
)

// Service decodes the settings of the named service.
func (c Configuration) Service(name string) (ServiceConfig, error) {
	var sc ServiceConfig
	settings, ok := c[name]
	if !ok || helpers.IsEmpty(settings) {
		return sc, fmt.Errorf("%w: %s", ErrServiceNotConfigured, name)
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &sc,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return sc, err
	}
	if err := decoder.Decode(settings); err != nil {
		return sc, fmt.Errorf("decode %s settings: %w", name, err)
	}
	if err := validate.Struct(sc); err != nil {
		return sc, fmt.Errorf("invalid %s settings: %w", name, err)
	}
	return sc, nil
}

type snapshot struct {
	config  Configuration
	version uint64
}

// Store is a thread-safe holder of exactly one Configuration. Replace swaps
// the whole value atomically, so readers never see a partial update.
type Store struct {
	current atomic.Pointer[snapshot]
}

// New returns a Store holding an empty Configuration.
func New() *Store {
	s := &Store{}
	s.current.Store(&snapshot{config: Configuration{}})
	return s
}

// Get returns the current snapshot. It may be replaced at any moment, so
// callers that need a consistent view should call Get once and keep the result.
func (s *Store) Get() Configuration {
	return s.current.Load().config
}

// Replace stores a copy of cfg as the new Configuration and returns its version.
func (s *Store) Replace(cfg Configuration) uint64 {
	next := &snapshot{config: cfg.Clone()}
	for {
		prev := s.current.Load()
		next.version = prev.version + 1
		if s.current.CompareAndSwap(prev, next) {
			return next.version
		}
	}
}

// Version returns the number of replacements applied so far.
func (s *Store) Version() uint64 {
	return s.current.Load().version
}

// Service is a shortcut for Get().Service(name).
func (s *Store) Service(name string) (ServiceConfig, error) {
	return s.Get().Service(name)
}
