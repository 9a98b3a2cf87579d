package helpers

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

const (
	defaultMaxDepth  = 8
	defaultMaskValue = "****"
)

// Key names masked when no WithBlockedKeys is provided. Covers the platform
// API credentials, the OpenHIM auth headers and downstream basic auth.
var defaultBlockedKeys = []string{
	"password", "authorization", "auth-token", "auth-salt",
	"token", "secret", "cookie",
}

// DefaultSanitizer is a sanitizer with default blocked keys for use when no config is needed.
var DefaultSanitizer = NewSanitizer()

// Sanitizer masks sensitive fields in values for safe logging of
// configuration payloads, request headers and bodies.
type Sanitizer struct {
	blockedKeys map[string]struct{}
	maxDepth    int
	maskValue   string
}

// SanitizeOption configures a Sanitizer.
type SanitizeOption func(*Sanitizer)

// WithBlockedKeys adds field/key names to mask (case-insensitive).
func WithBlockedKeys(keys ...string) SanitizeOption {
	return func(s *Sanitizer) {
		for _, k := range keys {
			if k != "" {
				s.blockedKeys[strings.ToLower(k)] = struct{}{}
			}
		}
	}
}

// WithMaxDepth sets the maximum recursion depth. Beyond this, value is "[truncated]".
func WithMaxDepth(depth int) SanitizeOption {
	return func(s *Sanitizer) {
		if depth > 0 {
			s.maxDepth = depth
		}
	}
}

// NewSanitizer creates a Sanitizer with the given options.
func NewSanitizer(opts ...SanitizeOption) *Sanitizer {
	s := &Sanitizer{
		blockedKeys: make(map[string]struct{}, len(defaultBlockedKeys)),
		maxDepth:    defaultMaxDepth,
		maskValue:   defaultMaskValue,
	}
	for _, k := range defaultBlockedKeys {
		s.blockedKeys[k] = struct{}{}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sanitize returns a copy of v with blocked keys masked.
// If sanitization panics the original value is returned so logging does not fail.
func (s *Sanitizer) Sanitize(v any) (out any) {
	if s == nil || len(s.blockedKeys) == 0 {
		return v
	}
	defer func() {
		if recover() != nil {
			out = v
		}
	}()
	return s.sanitize(reflect.ValueOf(v), 0)
}

func (s *Sanitizer) blocked(key string) bool {
	_, ok := s.blockedKeys[strings.ToLower(key)]
	return ok
}

func (s *Sanitizer) sanitize(v reflect.Value, depth int) any {
	if !v.IsValid() {
		return nil
	}
	if depth > s.maxDepth {
		return "[truncated]"
	}
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Struct:
		out := make(map[string]any)
		t := v.Type()
		for i := 0; i < v.NumField(); i++ {
			field := t.Field(i)
			if field.PkgPath != "" {
				continue
			}
			name := field.Name
			if tag := field.Tag.Get("json"); tag != "" && tag != "-" {
				name = strings.Split(tag, ",")[0]
			}
			if s.blocked(name) {
				out[name] = s.maskValue
				continue
			}
			out[name] = s.sanitize(v.Field(i), depth+1)
		}
		return out
	case reflect.Map:
		if v.IsNil() {
			return nil
		}
		out := make(map[string]any, v.Len())
		for _, key := range v.MapKeys() {
			k := fmt.Sprint(key.Interface())
			if s.blocked(k) {
				out[k] = s.maskValue
				continue
			}
			out[k] = s.sanitize(v.MapIndex(key), depth+1)
		}
		return out
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			return nil
		}
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return s.sanitizeJSONString(string(v.Bytes()))
		}
		out := make([]any, v.Len())
		for i := 0; i < v.Len(); i++ {
			out[i] = s.sanitize(v.Index(i), depth+1)
		}
		return out
	case reflect.String:
		return s.sanitizeJSONString(v.String())
	default:
		return v.Interface()
	}
}

// sanitizeJSONString masks blocked keys inside JSON documents carried as strings.
// Non-JSON strings are returned unchanged.
func (s *Sanitizer) sanitizeJSONString(str string) string {
	trimmed := strings.TrimSpace(str)
	if trimmed == "" || (trimmed[0] != '{' && trimmed[0] != '[') {
		return str
	}
	var parsed any
	if err := json.Unmarshal([]byte(trimmed), &parsed); err != nil {
		return str
	}
	out, err := json.Marshal(s.sanitize(reflect.ValueOf(parsed), 0))
	if err != nil {
		return str
	}
	return string(out)
}

// SanitizeAny returns a copy of v with default sensitive fields masked.
func SanitizeAny(v any) any {
	return DefaultSanitizer.Sanitize(v)
}
