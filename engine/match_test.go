package engine

import "testing"

func TestNewMatcher(t *testing.T) {
	tests := []struct {
		mode   string
		domain string
		url    string
		want   bool
	}{
		{"substring", "example.com", "https://www.example.com/page", true},
		{"substring", "example.com", "https://other.net/?ref=example.com", true},
		{"substring", "example.com", "https://notexample.com/", true},
		{"substring", "example.com", "https://example.org/", false},
		{"", "kgu.cn", "https://www.kgu.cn/", true},

		{"host", "example.com", "https://example.com/", true},
		{"host", "example.com", "https://www.example.com/page", true},
		{"host", "example.com", "https://WWW.EXAMPLE.COM./", true},
		{"host", "example.com", "https://other.net/?ref=example.com", false},
		{"host", "example.com", "https://notexample.com/", false},
		{"host", "Example.COM.", "https://blog.example.com/", true},
		{"host", "example.com", "::not a url", false},
	}

	for _, tt := range tests {
		m, err := NewMatcher(tt.mode, tt.domain)
		if err != nil {
			t.Fatalf("NewMatcher(%q, %q): %v", tt.mode, tt.domain, err)
		}
		if got := m(tt.url); got != tt.want {
			t.Errorf("%s/%s match %q = %v, want %v", tt.mode, tt.domain, tt.url, got, tt.want)
		}
	}
}

func TestNewMatcher_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mode   string
		domain string
	}{
		{"empty domain", "substring", ""},
		{"unknown mode", "regex", "example.com"},
		{"public suffix", "host", "com.cn"},
		{"bare tld", "host", "com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewMatcher(tt.mode, tt.domain); err == nil {
				t.Errorf("NewMatcher(%q, %q) succeeded, want error", tt.mode, tt.domain)
			}
		})
	}

	// Substring mode has no notion of hosts and accepts a public suffix.
	if _, err := NewMatcher("substring", "com.cn"); err != nil {
		t.Errorf("substring com.cn: %v", err)
	}
}
