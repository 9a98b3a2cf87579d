package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizer_MasksConfiguration(t *testing.T) {
	cfg := map[string]map[string]any{
		"nhwr": {"url": "http://registry", "username": "u", "password": "secret"},
	}

	out := SanitizeAny(cfg).(map[string]any)
	nhwr := out["nhwr"].(map[string]any)

	assert.Equal(t, "****", nhwr["password"])
	assert.Equal(t, "http://registry", nhwr["url"])
	assert.Equal(t, "secret", cfg["nhwr"]["password"], "input must not be modified")
}

func TestSanitizer_StructsAndHeaders(t *testing.T) {
	type credentials struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Token    string
		hidden   string
	}
	out := SanitizeAny(&credentials{Username: "root", Password: "pw", Token: "t", hidden: "h"}).(map[string]any)

	assert.Equal(t, "root", out["username"])
	assert.Equal(t, "****", out["password"])
	assert.Equal(t, "****", out["Token"])
	assert.NotContains(t, out, "hidden")

	headers := SanitizeAny(map[string]string{"Authorization": "Basic dTpw", "Content-Type": "application/json"}).(map[string]any)
	assert.Equal(t, "****", headers["Authorization"])
	assert.Equal(t, "application/json", headers["Content-Type"])
}

func TestSanitizer_JSONStrings(t *testing.T) {
	s := NewSanitizer(WithBlockedKeys("nationalId"))

	assert.JSONEq(t, `{"name":"Jane","nationalId":"****"}`, s.Sanitize(`{"name":"Jane","nationalId":"123"}`).(string))
	assert.JSONEq(t, `{"password":"****"}`, s.Sanitize([]byte(`{"password":"x"}`)).(string))
	assert.Equal(t, "plain text", s.Sanitize("plain text"))
	assert.Equal(t, "{broken", s.Sanitize("{broken"))
}

func TestSanitizer_MaxDepth(t *testing.T) {
	s := NewSanitizer(WithMaxDepth(1))
	out := s.Sanitize(map[string]any{"a": map[string]any{"b": map[string]any{"c": 1}}}).(map[string]any)

	assert.Equal(t, "[truncated]", out["a"].(map[string]any)["b"])
}

func TestSanitizer_Nil(t *testing.T) {
	var s *Sanitizer
	assert.Equal(t, "x", s.Sanitize("x"))
	assert.Nil(t, SanitizeAny(nil))
}
