package gemini

import (
	"net/url"
	"testing"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct{ In, Want string }{
		{"", "/"},
		{"/", "/"},
		{"/a/b", "/a/b"},
	}
	for _, test := range tests {
		if got := NormalizePath(test.In); got != test.Want {
			t.Errorf("NormalizePath(%q) = %q, want %q", test.In, got, test.Want)
		}
	}
}

func TestQueryValue(t *testing.T) {
	tests := []struct {
		Name     string
		RawURL   string
		WantVal  string
		WantSet  bool
	}{
		{Name: "no query", RawURL: "gemini://host/path", WantVal: "", WantSet: false},
		{Name: "plain query", RawURL: "gemini://host/path?hello", WantVal: "hello", WantSet: true},
		{Name: "percent-encoded query", RawURL: "gemini://host/path?hello%20world", WantVal: "hello world", WantSet: true},
		{Name: "empty forced query", RawURL: "gemini://host/path?", WantVal: "", WantSet: true},
	}
	for _, test := range tests {
		u, err := url.Parse(test.RawURL)
		if err != nil {
			t.Fatalf("%s: parsing %q: %v", test.Name, test.RawURL, err)
		}
		val, ok := QueryValue(u)
		if ok != test.WantSet {
			t.Errorf("%s: expected ok=%v, got %v", test.Name, test.WantSet, ok)
			continue
		}
		if ok && val != test.WantVal {
			t.Errorf("%s: expected value %q, got %q", test.Name, test.WantVal, val)
		}
	}
}

func TestNormalizeHost(t *testing.T) {
	tests := []struct{ In, Want string }{
		{"", ""},
		{"example.com", "example.com"},
		{"127.0.0.1", "127.0.0.1"},
		{"::1", "::1"},
		{"münchen.de", "xn--mnchen-3ya.de"},
	}
	for _, test := range tests {
		if got := NormalizeHost(test.In); got != test.Want {
			t.Errorf("NormalizeHost(%q) = %q, want %q", test.In, got, test.Want)
		}
	}
}
