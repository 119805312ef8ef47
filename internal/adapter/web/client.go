// Package web resolves share links and downloads list pages over HTTP.
package web

import (
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
)

// DefaultUserAgent is a desktop Chrome user agent. The list page only embeds its data
// for browsers it recognizes.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

const maxRedirects = 10

// ClientOptions configures the shared HTTP client.
type ClientOptions struct {
	Timeout   time.Duration
	UserAgent string
	// Bypass wraps the transport with the cloudflare round-tripper.
	Bypass bool
}

// NewClient builds a resty client that presents itself as a desktop browser.
func NewClient(opts ClientOptions) *resty.Client {
	ua := opts.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}

	client := resty.New()
	if opts.Bypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}
	client.SetHeader("User-Agent", ua)
	client.SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	client.SetHeader("Accept-Language", "en-US,en;q=0.9")
	client.SetRedirectPolicy(resty.FlexibleRedirectPolicy(maxRedirects))
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}
	return client
}
