package models

import (
	"errors"
	"regexp"
	"strings"
)

// Engine identifiers accepted by CheckRequest.Engine.
const (
	EngineGoogle = "google"
	EngineBaidu  = "baidu"
)

// Match modes accepted by CheckRequest.MatchMode.
const (
	MatchSubstring = "substring"
	MatchHost      = "host"
)

// Page bounds for CheckRequest.Pages.
const (
	MinPages     = 1
	MaxPages     = 1000
	DefaultPages = 100
)

var domainPattern = regexp.MustCompile(`^([a-zA-Z0-9-]+\.)+[a-zA-Z]{2,}$`)

// CheckRequest is the payload for POST /api/v1/check and POST /api/v1/jobs.
type CheckRequest struct {
	// Keyword is the search query submitted to the engine. Required.
	Keyword string `json:"keyword" form:"keyword"`

	// Domain is the target domain looked for in result URLs, e.g. "kgu.cn".
	Domain string `json:"domain" form:"domain"`

	// Engine selects the search engine: "google" (default) or "baidu".
	Engine string `json:"engine,omitempty" form:"engine" binding:"omitempty,oneof=google baidu"`

	// Pages is the maximum number of result pages to walk.
	// Default: 100. Range: 1-1000.
	Pages int `json:"pages,omitempty" form:"pages"`

	// MatchMode controls how result URLs are compared with Domain.
	// "substring" (default): plain substring test on the whole URL. This can
	// match the domain inside a path or query string.
	// "host": the URL's hostname must equal Domain or be a subdomain of it.
	MatchMode string `json:"match_mode,omitempty" form:"match_mode" binding:"omitempty,oneof=substring host"`

	// Timeout is the maximum duration in seconds for the whole check.
	// Default: the server's configured default. Max: the server's max.
	Timeout int `json:"timeout,omitempty" form:"timeout" binding:"omitempty,min=1"`

	// WebhookURL, if set, receives a signed "check.completed" event when an
	// asynchronous job finishes.
	WebhookURL string `json:"webhook_url,omitempty" binding:"omitempty,url"`

	// WebhookSecret signs webhook payloads with HMAC-SHA256.
	WebhookSecret string `json:"webhook_secret,omitempty"`
}

// Defaults applies default values to unset fields.
func (r *CheckRequest) Defaults() {
	r.Keyword = strings.TrimSpace(r.Keyword)
	r.Domain = strings.TrimSpace(r.Domain)
	if r.Engine == "" {
		r.Engine = EngineGoogle
	}
	if r.Pages == 0 {
		r.Pages = DefaultPages
	}
	if r.MatchMode == "" {
		r.MatchMode = MatchSubstring
	}
}

// Validate reports every problem with the request in one error.
// Defaults must be applied first.
func (r *CheckRequest) Validate() error {
	var errs []error
	if r.Keyword == "" {
		errs = append(errs, errors.New("关键字是必需的 | Keyword is required"))
	}
	switch {
	case r.Domain == "":
		errs = append(errs, errors.New("域名是必需的 | Domain is required"))
	case !domainPattern.MatchString(r.Domain):
		errs = append(errs, errors.New("域名必须与格式匹配: kgu.cn, sub.domain.com | Domain must match the format: kgu.cn, sub.domain.com"))
	}
	if r.Pages < MinPages || r.Pages > MaxPages {
		errs = append(errs, errors.New("页数必须在1-1000的范围内 | The number of pages must be in the range 1-1000"))
	}
	switch r.Engine {
	case EngineGoogle, EngineBaidu:
	default:
		errs = append(errs, errors.New("搜索引擎必须是google或baidu | Engine must be one of: google, baidu"))
	}
	switch r.MatchMode {
	case MatchSubstring, MatchHost:
	default:
		errs = append(errs, errors.New("匹配模式必须是substring或host | Match mode must be one of: substring, host"))
	}
	return errors.Join(errs...)
}
