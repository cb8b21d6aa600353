package models

import (
	"errors"
	"strings"
	"testing"
)

func TestCheckRequest_Defaults(t *testing.T) {
	req := &CheckRequest{Keyword: "  苏州空谷网络科技有限公司 ", Domain: " kgu.cn "}
	req.Defaults()

	if req.Keyword != "苏州空谷网络科技有限公司" || req.Domain != "kgu.cn" {
		t.Errorf("trim: %q %q", req.Keyword, req.Domain)
	}
	if req.Engine != EngineGoogle || req.Pages != DefaultPages || req.MatchMode != MatchSubstring {
		t.Errorf("defaults = %+v", req)
	}
}

func TestCheckRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     CheckRequest
		wantErr []string
	}{
		{"valid", CheckRequest{Keyword: "kw", Domain: "kgu.cn", Pages: 1}, nil},
		{"valid subdomain", CheckRequest{Keyword: "kw", Domain: "sub.domain.com", Pages: 1000}, nil},
		{"missing keyword", CheckRequest{Domain: "kgu.cn", Pages: 10}, []string{"Keyword is required"}},
		{"missing domain", CheckRequest{Keyword: "kw", Pages: 10}, []string{"Domain is required"}},
		{"domain with scheme", CheckRequest{Keyword: "kw", Domain: "https://kgu.cn", Pages: 10}, []string{"Domain must match"}},
		{"single label", CheckRequest{Keyword: "kw", Domain: "localhost", Pages: 10}, []string{"Domain must match"}},
		{"numeric tld", CheckRequest{Keyword: "kw", Domain: "10.0.0.1", Pages: 10}, []string{"Domain must match"}},
		{"zero pages", CheckRequest{Keyword: "kw", Domain: "kgu.cn", Pages: 0}, []string{"range 1-1000"}},
		{"too many pages", CheckRequest{Keyword: "kw", Domain: "kgu.cn", Pages: 1001}, []string{"range 1-1000"}},
		{"everything wrong", CheckRequest{Pages: -1}, []string{"Keyword is required", "Domain is required", "range 1-1000"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			if req.Engine == "" {
				req.Engine = EngineGoogle
			}
			if req.MatchMode == "" {
				req.MatchMode = MatchSubstring
			}

			err := req.Validate()
			if len(tt.wantErr) == 0 {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %v", tt.wantErr)
			}
			for _, want := range tt.wantErr {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("error %q does not mention %q", err, want)
				}
			}
		})
	}
}

func TestCheckRequest_ValidateEngineAndMode(t *testing.T) {
	req := CheckRequest{Keyword: "kw", Domain: "kgu.cn", Pages: 1, Engine: "bing", MatchMode: "regex"}
	err := req.Validate()
	if err == nil || !strings.Contains(err.Error(), "google, baidu") || !strings.Contains(err.Error(), "substring, host") {
		t.Errorf("err = %v", err)
	}
}

func TestProgressPercent(t *testing.T) {
	tests := []struct {
		value, min, max int
		want            int
	}{
		{1, 1, 100, 1},
		{100, 1, 100, 100},
		{50, 1, 100, 50},
		{0, 1, 100, 1},
		{500, 1, 100, 100},
		{2, 1, 3, 50},
		{5, 0, 10, 50},
		{3, 3, 3, 100},
		{2, 3, 3, 1},
	}
	for _, tt := range tests {
		if got := ProgressPercent(tt.value, tt.min, tt.max); got != tt.want {
			t.Errorf("ProgressPercent(%d, %d, %d) = %d, want %d", tt.value, tt.min, tt.max, got, tt.want)
		}
	}
}

func TestProgressText(t *testing.T) {
	if got := ProgressText(3, 10); got != "检查第3/10页 | Checking page 3/10..." {
		t.Errorf("ProgressText = %q", got)
	}
}

func TestCheckError(t *testing.T) {
	cause := errors.New("net::ERR_TIMED_OUT")
	err := NewCheckError(ErrCodeNetwork, NetworkErrorMessage, cause)

	if !errors.Is(err, cause) {
		t.Error("CheckError must unwrap to its cause")
	}
	d := err.ToDetail()
	if d.Code != ErrCodeNetwork || d.Message != NetworkErrorMessage {
		t.Errorf("detail = %+v", d)
	}
	if !strings.Contains(err.Error(), "ERR_TIMED_OUT") {
		t.Errorf("Error() = %q", err.Error())
	}
}
