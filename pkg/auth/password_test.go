package auth

import (
	"strings"
	"testing"
)

func TestIsDigest(t *testing.T) {
	valid := HashPassword("correct horse battery staple")

	tests := []struct {
		name     string
		password string
		want     bool
	}{
		{name: "sha256 hex digest", password: valid, want: true},
		{name: "upper-case hex", password: strings.ToUpper(valid), want: true},
		{name: "empty", password: "", want: false},
		{name: "plaintext", password: "SecureP@ss123", want: false},
		{name: "63 characters", password: valid[:63], want: false},
		{name: "65 characters", password: valid + "a", want: false},
		{name: "64 non-hex characters", password: strings.Repeat("z", 64), want: false},
		{name: "0x prefix", password: "0x" + valid[:62], want: false},
		{name: "surrounding whitespace", password: " " + valid[:62] + " ", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsDigest(tt.password); got != tt.want {
				t.Errorf("IsDigest(%q) = %v, want %v", tt.password, got, tt.want)
			}
		})
	}
}

func TestHashPassword(t *testing.T) {
	// sha256("password")
	const want = "5e884898da28047151d0e56f8dc6292773603d0d6aabbdd62a11ef721d1542d8"

	if got := HashPassword("password"); got != want {
		t.Errorf("HashPassword() = %s, want %s", got, want)
	}
	if !IsDigest(HashPassword("anything")) {
		t.Error("HashPassword output should be a valid digest")
	}
}

func TestComparePassword(t *testing.T) {
	stored := HashPassword("SecureP@ss123")

	if err := ComparePassword(stored, stored); err != nil {
		t.Errorf("ComparePassword with matching digest failed: %v", err)
	}

	if err := ComparePassword(stored, strings.ToUpper(stored)); err != nil {
		t.Errorf("ComparePassword should ignore hex case: %v", err)
	}

	if err := ComparePassword(stored, HashPassword("WrongPassword123!")); err != ErrPasswordMismatch {
		t.Errorf("expected ErrPasswordMismatch, got %v", err)
	}

	if err := ComparePassword("", ""); err != ErrPasswordMismatch {
		t.Errorf("empty stored digest must never match, got %v", err)
	}
}
