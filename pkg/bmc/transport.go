package bmc

import (
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"

	"github.com/davidroman0O/smcipmi/errors"
	"github.com/davidroman0O/smcipmi/pkg/config"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/publicsuffix"
)

// Console CGI endpoints
const (
	loginPath  = "/cgi/login.cgi"
	logoutPath = "/cgi/url_redirect.cgi?url_name=man_logout"
	ipmiPath   = "/cgi/ipmi.cgi"

	formContentType  = "application/x-www-form-urlencoded; charset=utf-8"
	maxResponseBytes = 1 << 20
)

// The console only answers requests that look like they come from its own web UI.
var browserHeaders = map[string]string{
	"User-Agent":          "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/140.0.0.0 Safari/537.36",
	"Accept":              "text/javascript, text/html, application/xml, text/xml, */*",
	"Accept-Language":     "en-US,en;q=0.9",
	"DNT":                 "1",
	"X-Prototype-Version": "1.5.0",
	"X-Requested-With":    "XMLHttpRequest",
}

// browserTransport stamps the browser headers on every outgoing request
type browserTransport struct {
	next http.RoundTripper
}

// RoundTrip implements http.RoundTripper
func (t *browserTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrippers must not modify the caller's request
	r := req.Clone(req.Context())
	for k, v := range browserHeaders {
		if r.Header.Get(k) == "" {
			r.Header.Set(k, v)
		}
	}
	return t.next.RoundTrip(r)
}

// newTransport builds the default transport for a profile.
// Certificate validation follows profile.InsecureSkipVerify.
func newTransport(profile config.ConnectionProfile) http.RoundTripper {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{
		InsecureSkipVerify: profile.InsecureSkipVerify, //nolint:gosec // opt-in per profile
	}
	return transport
}

// newHTTPClient builds the HTTP client holding the session cookie jar
func newHTTPClient(profile config.ConnectionProfile, base http.RoundTripper) (*http.Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfiguration, "failed to create cookie jar")
	}
	if base == nil {
		base = newTransport(profile)
	}

	return &http.Client{
		Transport: &browserTransport{next: base},
		Jar:       jar,
		Timeout:   profile.Timeout(),
	}, nil
}

// consoleResponse is a fully read console reply
type consoleResponse struct {
	StatusCode int
	Body       []byte
}

// OK reports a 2xx status
func (r *consoleResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// do sends a request to the console and reads the whole reply.
// Only failures to obtain a response are returned as errors; HTTP status
// classification is left to the caller.
func (c *Client) do(ctx context.Context, method, path, form string) (*consoleResponse, error) {
	var body io.Reader
	if form != "" {
		body = strings.NewReader(form)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.profile.BaseURL()+path, body)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTransport, "failed to build request")
	}
	if form != "" {
		req.Header.Set("Content-Type", formContentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTransport, "request failed")
	}
	defer resp.Body.Close()

	// one extra byte tells a reply of exactly the limit from a longer one
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTransport, "failed to read response body")
	}
	if len(data) > maxResponseBytes {
		data = data[:maxResponseBytes]
		c.log.WithFields(logrus.Fields{
			"host":  c.profile.Host,
			"path":  path,
			"limit": maxResponseBytes,
		}).Warn("Response body truncated")
	}

	return &consoleResponse{StatusCode: resp.StatusCode, Body: data}, nil
}
