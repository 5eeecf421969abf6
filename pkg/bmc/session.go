package bmc

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/davidroman0O/smcipmi/errors"
	"github.com/sirupsen/logrus"
)

// The console answers 200 to every login attempt; only a successful one
// redirects the browser to the main menu.
const loginSuccessMarker = "url_redirect.cgi?url_name=mainmenu"

// SessionState reports the current session state
func (c *Client) SessionState() SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Client) setState(state SessionState) {
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
}

// Login authenticates against the console. It returns false on transport
// errors, non-2xx replies and replies that lack the main menu redirect.
func (c *Client) Login(ctx context.Context) bool {
	return c.login(ctx, c.opLogger("login"))
}

func (c *Client) login(ctx context.Context, log logrus.FieldLogger) bool {
	form := fmt.Sprintf("name=%s&pwd=%s", url.QueryEscape(c.profile.Username), url.QueryEscape(c.profile.Password))

	log.WithField("username", c.profile.Username).Info("Attempting to login to IPMI")

	resp, err := c.do(ctx, http.MethodPost, loginPath, form)
	if err != nil {
		failureLogger(log, errors.WithOp(err, "login")).Error("Error during IPMI login")
		return false
	}

	if !resp.OK() {
		err := errors.WithContext(
			errors.New(errors.ErrAuthentication, fmt.Sprintf("login rejected with status code %d", resp.StatusCode)),
			map[string]interface{}{"status_code": resp.StatusCode},
		)
		failureLogger(log, err).Error("Login failed")
		return false
	}

	if !strings.Contains(string(resp.Body), loginSuccessMarker) {
		c.setState(Unauthenticated)
		err := errors.New(errors.ErrAuthentication, "main menu redirect missing from login reply")
		failureLogger(log, err).Warn("Login failed - invalid credentials or server response")
		return false
	}

	c.setState(Authenticated)
	log.Info("Successfully logged in to IPMI")
	return true
}

// ensureSession logs in unless a session is already recorded. There is a
// single attempt and no retry.
func (c *Client) ensureSession(ctx context.Context, log logrus.FieldLogger) bool {
	if c.SessionState() == Authenticated {
		return true
	}
	return c.login(ctx, log)
}

// Logout ends the session. It is a no-op without a session; otherwise the
// logout request is sent and the session is cleared whatever its outcome.
func (c *Client) Logout(ctx context.Context) {
	if c.SessionState() != Authenticated {
		return
	}

	log := c.opLogger("logout")

	resp, err := c.do(ctx, http.MethodGet, logoutPath, "")
	switch {
	case err != nil:
		failureLogger(log, errors.WithOp(err, "logout")).Error("Error during IPMI logout")
	case !resp.OK():
		err := errors.WithContext(
			errors.New(errors.ErrProtocol, fmt.Sprintf("logout returned status code %d", resp.StatusCode)),
			map[string]interface{}{"status_code": resp.StatusCode},
		)
		failureLogger(log, err).Error("Logout returned a non-success status")
	}

	c.setState(Unauthenticated)
	log.Info("Logged out from IPMI")
}

// TestConnection checks the credentials by logging in and straight back out
func (c *Client) TestConnection(ctx context.Context) bool {
	if !c.Login(ctx) {
		return false
	}
	c.Logout(ctx)
	return true
}
