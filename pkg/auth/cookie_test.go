package auth

import (
	"testing"
)

func TestDeriveCookieSettings_Localhost(t *testing.T) {
	tests := []struct {
		name     string
		baseURL  string
		expected CookieSettings
	}{
		{
			name:    "localhost with port",
			baseURL: "http://localhost:8080",
			expected: CookieSettings{
				Secure: false,
				Domain: "",
			},
		},
		{
			name:    "localhost without port",
			baseURL: "http://localhost",
			expected: CookieSettings{
				Secure: false,
				Domain: "",
			},
		},
		{
			name:    "127.0.0.1",
			baseURL: "http://127.0.0.1:8080",
			expected: CookieSettings{
				Secure: false,
				Domain: "",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DeriveCookieSettings(tt.baseURL, "")
			if result.Secure != tt.expected.Secure {
				t.Errorf("Secure: expected %v, got %v", tt.expected.Secure, result.Secure)
			}
			if result.Domain != tt.expected.Domain {
				t.Errorf("Domain: expected %q, got %q", tt.expected.Domain, result.Domain)
			}
		})
	}
}

func TestDeriveCookieSettings_Cloud(t *testing.T) {
	tests := []struct {
		name     string
		baseURL  string
		expected CookieSettings
	}{
		{
			name:    "dev cloud",
			baseURL: "https://eu.dev.tasklane.io",
			expected: CookieSettings{
				Secure: true,
				Domain: ".dev.tasklane.io",
			},
		},
		{
			name:    "prod cloud",
			baseURL: "https://eu.tasklane.io",
			expected: CookieSettings{
				Secure: true,
				Domain: ".tasklane.io",
			},
		},
		{
			name:    "enterprise internal",
			baseURL: "https://tasklane.internal",
			expected: CookieSettings{
				Secure: true,
				Domain: ".internal",
			},
		},
		{
			name:    "unknown custom domain is isolated",
			baseURL: "https://tasks.example.com",
			expected: CookieSettings{
				Secure: true,
				Domain: "",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DeriveCookieSettings(tt.baseURL, "")
			if result.Secure != tt.expected.Secure {
				t.Errorf("Secure: expected %v, got %v", tt.expected.Secure, result.Secure)
			}
			if result.Domain != tt.expected.Domain {
				t.Errorf("Domain: expected %q, got %q", tt.expected.Domain, result.Domain)
			}
		})
	}
}

func TestDeriveCookieSettings_ExplicitOverride(t *testing.T) {
	result := DeriveCookieSettings("https://eu.tasklane.io", ".example.org")
	if result.Domain != ".example.org" {
		t.Errorf("expected explicit domain override, got %q", result.Domain)
	}
	if !result.Secure {
		t.Error("expected Secure for HTTPS base URL")
	}

	result = DeriveCookieSettings("http://localhost:8080", ".example.org")
	if result.Secure {
		t.Error("expected Secure false for HTTP base URL with override")
	}
}

func TestDeriveCookieSettings_InvalidURL(t *testing.T) {
	result := DeriveCookieSettings("", "")
	if !result.Secure {
		t.Error("expected safe default Secure=true for empty base URL")
	}
	if result.Domain != "" {
		t.Errorf("expected empty domain, got %q", result.Domain)
	}
}
