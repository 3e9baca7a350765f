package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
)

// MaxBodyBytes caps JSON request bodies.
const MaxBodyBytes = 1 << 20

// ErrEmptyBody is returned by DecodeJSON when the request has no body.
var ErrEmptyBody = errors.New("request body is empty")

// IPConfig holds the proxies whose forwarding headers are trusted
type IPConfig struct {
	TrustedProxies []*net.IPNet
}

// NewIPConfig parses CIDR ranges of trusted proxies. Bare addresses are
// accepted as single-host ranges.
func NewIPConfig(cidrs []string) (*IPConfig, error) {
	cfg := &IPConfig{}
	for _, raw := range cidrs {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if !strings.Contains(raw, "/") {
			if ip := net.ParseIP(raw); ip != nil && ip.To4() != nil {
				raw += "/32"
			} else {
				raw += "/128"
			}
		}
		_, ipNet, err := net.ParseCIDR(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", raw, err)
		}
		cfg.TrustedProxies = append(cfg.TrustedProxies, ipNet)
	}
	return cfg, nil
}

// ExtractClientIP returns the client address. X-Forwarded-For and
// X-Real-IP are only honoured when the direct peer is a trusted proxy.
func ExtractClientIP(r *http.Request, config *IPConfig) string {
	remoteIP := getRemoteAddr(r)

	if config == nil || !config.trusts(remoteIP) {
		return remoteIP
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for _, ip := range strings.Split(xff, ",") {
			if ip = strings.TrimSpace(ip); net.ParseIP(ip) != nil {
				return ip
			}
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(xri) != nil {
		return xri
	}

	return remoteIP
}

func (c *IPConfig) trusts(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	for _, n := range c.TrustedProxies {
		if n.Contains(parsed) {
			return true
		}
	}
	return false
}

// getRemoteAddr extracts the IP address from RemoteAddr (removing port if present)
func getRemoteAddr(r *http.Request) string {
	if r.RemoteAddr == "" {
		return "unknown"
	}
	if ip, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return ip
	}
	return r.RemoteAddr
}

// DecodeJSON reads a single JSON value from the request body into dst.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	if r.Body == nil || r.Body == http.NoBody {
		return ErrEmptyBody
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return err
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON value")
	}
	return nil
}
