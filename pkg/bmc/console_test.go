package bmc

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/davidroman0O/smcipmi/pkg/config"
	"github.com/stretchr/testify/require"
)

const (
	loginOKBody     = `<html><script>self.location="../cgi/url_redirect.cgi?url_name=mainmenu"</script></html>`
	loginDeniedBody = `<html><script>alert("Invalid Username or Password")</script></html>`
	sessionCookie   = "SID"
)

var fixedNow = time.Date(2025, 3, 14, 9, 26, 53, 0, time.FixedZone("CET", 3600))

// fakeConsole emulates the CGI endpoints of the console and records the traffic
type fakeConsole struct {
	t *testing.T

	mu          sync.Mutex
	loginStatus int
	loginBody   string
	ipmiStatus  int
	ipmiBody    string
	logoutCode  int

	loginCalls  int
	logoutCalls int
	ipmiCalls   int
	ipmiForms   []string
	lastLogin   url.Values
	headers     http.Header
	cookieSeen  bool
}

func newFakeConsole(t *testing.T) *fakeConsole {
	return &fakeConsole{
		t:           t,
		loginStatus: http.StatusOK,
		loginBody:   loginOKBody,
		ipmiStatus:  http.StatusOK,
		ipmiBody:    `<?xml version="1.0"?><IPMI><POWER_INFO><POWER STATUS="ON"/></POWER_INFO></IPMI>`,
		logoutCode:  http.StatusOK,
	}
}

func (f *fakeConsole) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	body, _ := io.ReadAll(r.Body)
	f.headers = r.Header.Clone()

	switch {
	case r.URL.Path == loginPath && r.Method == http.MethodPost:
		f.loginCalls++
		f.lastLogin, _ = url.ParseQuery(string(body))
		if f.loginStatus == http.StatusOK && strings.Contains(f.loginBody, loginSuccessMarker) {
			http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "abc123", Path: "/"})
		}
		w.WriteHeader(f.loginStatus)
		_, _ = io.WriteString(w, f.loginBody)
	case r.URL.Path == "/cgi/url_redirect.cgi" && r.URL.Query().Get("url_name") == "man_logout":
		f.logoutCalls++
		w.WriteHeader(f.logoutCode)
	case r.URL.Path == ipmiPath && r.Method == http.MethodPost:
		f.ipmiCalls++
		f.ipmiForms = append(f.ipmiForms, string(body))
		if c, err := r.Cookie(sessionCookie); err == nil && c.Value == "abc123" {
			f.cookieSeen = true
		}
		w.WriteHeader(f.ipmiStatus)
		_, _ = io.WriteString(w, f.ipmiBody)
	default:
		f.t.Errorf("unexpected request %s %s", r.Method, r.URL.String())
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeConsole) counts() (login, logout, ipmi int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loginCalls, f.logoutCalls, f.ipmiCalls
}

func (f *fakeConsole) forms() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.ipmiForms...)
}

func (f *fakeConsole) sawCookie() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cookieSeen
}

func (f *fakeConsole) lastRequest() (url.Values, http.Header) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastLogin, f.headers
}

// newTestClient starts a plain HTTP console and returns a client bound to it
func newTestClient(t *testing.T, console *fakeConsole, opts ...Option) *Client {
	t.Helper()

	server := httptest.NewServer(console)
	t.Cleanup(server.Close)

	profile := config.DefaultProfile()
	profile.Host = strings.TrimPrefix(server.URL, "http://")
	profile.UseHTTPS = false
	profile.TimeoutSeconds = 5

	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	client, err := New(profile, opts...)
	require.NoError(t, err)
	return client
}
