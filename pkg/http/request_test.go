package http_test

import (
	"net/http/httptest"
	"strings"
	"testing"

	pkghttp "github.com/BradenHooton/citywalk/pkg/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustIPConfig(t *testing.T, cidrs ...string) *pkghttp.IPConfig {
	t.Helper()
	cfg, err := pkghttp.NewIPConfig(cidrs)
	require.NoError(t, err)
	return cfg
}

// Forwarding headers from an untrusted peer must never be believed.
func TestExtractClientIP_DirectConnection_IgnoresHeaders(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "203.0.113.10:54321"
	req.Header.Set("X-Forwarded-For", "1.2.3.4, 5.6.7.8")
	req.Header.Set("X-Real-IP", "192.168.1.1")

	ip := pkghttp.ExtractClientIP(req, mustIPConfig(t, "10.0.0.0/8", "172.16.0.0/12", "127.0.0.1"))

	assert.Equal(t, "203.0.113.10", ip)
}

func TestExtractClientIP_TrustedProxy_UsesXForwardedFor(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.5:54321"
	req.Header.Set("X-Forwarded-For", "203.0.113.42, 10.0.0.5")

	ip := pkghttp.ExtractClientIP(req, mustIPConfig(t, "10.0.0.0/8"))

	assert.Equal(t, "203.0.113.42", ip)
}

func TestExtractClientIP_TrustedProxy_FallsBackToXRealIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.5:54321"
	req.Header.Set("X-Forwarded-For", "garbage")
	req.Header.Set("X-Real-IP", "198.51.100.7")

	ip := pkghttp.ExtractClientIP(req, mustIPConfig(t, "10.0.0.0/8"))

	assert.Equal(t, "198.51.100.7", ip)
}

func TestExtractClientIP_IPv6_TrustedProxy(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "[::1]:54321"
	req.Header.Set("X-Forwarded-For", "2001:db8::1")

	ip := pkghttp.ExtractClientIP(req, mustIPConfig(t, "::1"))

	assert.Equal(t, "2001:db8::1", ip)
}

func TestExtractClientIP_NoConfig_DefaultsSecurely(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "203.0.113.10:54321"
	req.Header.Set("X-Forwarded-For", "1.2.3.4")

	assert.Equal(t, "203.0.113.10", pkghttp.ExtractClientIP(req, nil))
	assert.Equal(t, "203.0.113.10", pkghttp.ExtractClientIP(req, mustIPConfig(t)))
}

func TestExtractClientIP_RemoteAddrWithoutPort(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "203.0.113.10"

	assert.Equal(t, "203.0.113.10", pkghttp.ExtractClientIP(req, nil))
}

func TestNewIPConfig_InvalidCIDR(t *testing.T) {
	_, err := pkghttp.NewIPConfig([]string{"10.0.0.0/8", "not-a-cidr"})
	assert.Error(t, err)
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	t.Run("single value", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"Mario"}`))
		var p payload
		require.NoError(t, pkghttp.DecodeJSON(httptest.NewRecorder(), req, &p))
		assert.Equal(t, "Mario", p.Name)
	})

	t.Run("empty body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", nil)
		var p payload
		assert.ErrorIs(t, pkghttp.DecodeJSON(httptest.NewRecorder(), req, &p), pkghttp.ErrEmptyBody)
	})

	t.Run("trailing data", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"a"}{"name":"b"}`))
		var p payload
		assert.Error(t, pkghttp.DecodeJSON(httptest.NewRecorder(), req, &p))
	})

	t.Run("malformed", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":`))
		var p payload
		assert.Error(t, pkghttp.DecodeJSON(httptest.NewRecorder(), req, &p))
	})
}
