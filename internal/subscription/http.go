package subscription

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

// Controller API endpoints the HTTP provider reads.
const (
	configPath   = "/api/v2/config/"
	mePath       = "/api/v2/me/"
	settingsPath = "/api/v2/settings/system/"
)

// ErrUnauthorized is returned when the controller rejects the credentials.
var ErrUnauthorized = errors.New("controller rejected credentials")

// HTTPOptions configures an HTTPProvider.
type HTTPOptions struct {
	BaseURL  string
	Token    string
	Username string
	Password string
	Timeout  time.Duration
	Insecure bool
}

// HTTPProvider builds a snapshot from the controller REST API.
type HTTPProvider struct {
	client *resty.Client
}

type configResponse struct {
	LicenseInfo LicenseInfo `json:"license_info"`
	Version     string      `json:"version"`
}

type meResponse struct {
	Count   int    `json:"count"`
	Results []User `json:"results"`
}

// NewHTTPProvider returns a provider talking to opts.BaseURL.
// A token takes precedence over basic auth credentials.
func NewHTTPProvider(opts HTTPOptions) *HTTPProvider {
	client := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetHeader("Accept", "application/json")
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}
	if opts.Insecure {
		client.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true}) //nolint:gosec // opt-in for lab controllers
	}
	switch {
	case opts.Token != "":
		client.SetAuthToken(opts.Token)
	case opts.Username != "":
		client.SetBasicAuth(opts.Username, opts.Password)
	}
	return &HTTPProvider{client: client}
}

// Snapshot reads license info, the current user and system settings.
func (p *HTTPProvider) Snapshot(ctx context.Context) (*Snapshot, error) {
	var cfg configResponse
	if err := p.get(ctx, configPath, &cfg); err != nil {
		return nil, err
	}

	var me meResponse
	if err := p.get(ctx, mePath, &me); err != nil {
		return nil, err
	}

	snap := &Snapshot{
		LicenseInfo: cfg.LicenseInfo,
		Version:     cfg.Version,
	}
	if len(me.Results) > 0 {
		snap.User = me.Results[0]
	}

	// Non-superusers may not be allowed to read system settings. The usage
	// model is then left undefined and the dependent rows stay hidden.
	var sys SystemConfig
	if err := p.get(ctx, settingsPath, &sys); err != nil {
		log.Warn().Err(err).Str("endpoint", settingsPath).Msg("system settings unavailable")
	} else {
		snap.SystemConfig = sys
	}

	log.Debug().
		Str("version", snap.Version).
		Str("usage_model", snap.SystemConfig.SubscriptionUsageModel).
		Bool("superuser", snap.User.IsSuperuser).
		Msg("fetched subscription snapshot")

	return snap, nil
}

func (p *HTTPProvider) get(ctx context.Context, path string, out interface{}) error {
	resp, err := p.client.R().
		SetContext(ctx).
		SetResult(out).
		Get(path)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	switch {
	case resp.StatusCode() == 401 || resp.StatusCode() == 403:
		return fmt.Errorf("GET %s: %w (%s)", path, ErrUnauthorized, resp.Status())
	case resp.IsError():
		return fmt.Errorf("GET %s: unexpected status %s", path, resp.Status())
	}
	// resty decodes only JSON bodies. A login page answering 200 leaves out
	// untouched, which must not pass for an empty subscription.
	if ct := resp.Header().Get("Content-Type"); !isJSON(ct) {
		return fmt.Errorf("GET %s: unexpected content type %q", path, ct)
	}
	return nil
}

func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}
