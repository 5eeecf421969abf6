// Package bmc implements a client for the Supermicro BMC web console.
//
// The console has no API: the client logs in through the same CGI form the
// browser UI uses, keeps the session cookie in a per-client jar and drives the
// POWER_INFO handler of ipmi.cgi for both power commands and status queries.
//
// A Client holds a single session and is meant for sequential use. Callers that
// share one Client between goroutines must serialize the operations themselves.
package bmc

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/davidroman0O/smcipmi/errors"
	"github.com/davidroman0O/smcipmi/pkg/config"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const loginFailedMessage = "Failed to login to IPMI interface"

// Client talks to a single BMC web console
type Client struct {
	profile config.ConnectionProfile
	http    *http.Client
	log     logrus.FieldLogger
	now     func() time.Time

	base http.RoundTripper

	mu    sync.Mutex
	state SessionState
}

// Option configures a Client
type Option func(*Client)

// WithLogger sets the logger used by the client
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Client) {
		if logger != nil {
			c.log = logger
		}
	}
}

// WithClock overrides the clock used to stamp results
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// WithRoundTripper replaces the underlying transport. The browser headers and
// the cookie jar are still applied on top of it, but the TLS settings of the
// profile are not: the supplied transport owns them.
func WithRoundTripper(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.base = rt
	}
}

// New creates a client for the console described by profile
func New(profile config.ConnectionProfile, opts ...Option) (*Client, error) {
	if err := profile.Validate(); err != nil {
		return nil, errors.WithOp(err, "bmc.New")
	}

	silent := logrus.New()
	silent.SetOutput(io.Discard)

	c := &Client{
		profile: profile,
		log:     silent,
		now:     time.Now,
		state:   Unauthenticated,
	}
	for _, opt := range opts {
		opt(c)
	}

	httpClient, err := newHTTPClient(profile, c.base)
	if err != nil {
		return nil, errors.WithOp(err, "bmc.New")
	}
	c.http = httpClient

	return c, nil
}

// opLogger returns a logger tagged with the host and a fresh correlation id
func (c *Client) opLogger(op string) logrus.FieldLogger {
	return c.log.WithFields(logrus.Fields{
		"host":  c.profile.Host,
		"op":    op,
		"op_id": uuid.NewString(),
	})
}

// failureLogger attaches err together with its category and context fields
func failureLogger(log logrus.FieldLogger, err error) logrus.FieldLogger {
	return log.WithError(err).
		WithField("category", errors.GetCode(err).String()).
		WithFields(logrus.Fields(errors.GetContext(err)))
}

// powerInfoForm encodes a POWER_INFO request. The console expects the comma
// inside r=(...) percent-encoded and the rest of the body left as is.
func powerInfoForm(write, code int) string {
	return fmt.Sprintf("op=POWER_INFO.XML&r=(%d%%2C%d)&_=", write, code)
}

// ExecuteCommand sends a power command, logging in first when the client has
// no session. A failed login aborts the call before anything is sent.
func (c *Client) ExecuteCommand(ctx context.Context, command PowerCommand) PowerCommandResult {
	result := PowerCommandResult{ExecutedAt: c.now().UTC()}
	log := c.opLogger("command").WithField("command", command.String())

	if !command.Valid() {
		err := errors.New(errors.ErrInvalidInput, fmt.Sprintf("unsupported power command: %s", command))
		failureLogger(log, err).Error("Rejected power command")
		result.Message = err.Error()
		return result
	}

	if !c.ensureSession(ctx, log) {
		result.Message = loginFailedMessage
		return result
	}

	log.Info("Executing power command")

	resp, err := c.do(ctx, http.MethodPost, ipmiPath, powerInfoForm(1, command.Code()))
	if err != nil {
		failureLogger(log, err).Error("Error executing power command")
		result.Message = fmt.Sprintf("Error executing power command: %v", err)
		return result
	}

	if !resp.OK() {
		err := errors.WithContext(
			errors.New(errors.ErrProtocol, fmt.Sprintf("unexpected status code %d", resp.StatusCode)),
			map[string]interface{}{"command": command.String(), "status_code": resp.StatusCode},
		)
		failureLogger(log, err).Error("Power command failed")
		result.Message = fmt.Sprintf("Power command failed with status code: %d", resp.StatusCode)
		return result
	}

	result.Success = true
	result.Message = fmt.Sprintf("Power command %s executed successfully", command)
	log.Info("Power command executed successfully")

	return result
}

// PowerOn turns the server on
func (c *Client) PowerOn(ctx context.Context) PowerCommandResult {
	return c.ExecuteCommand(ctx, PowerOn)
}

// PowerOff requests a graceful shutdown
func (c *Client) PowerOff(ctx context.Context) PowerCommandResult {
	return c.ExecuteCommand(ctx, PowerOff)
}

// Reset performs a hard reset
func (c *Client) Reset(ctx context.Context) PowerCommandResult {
	return c.ExecuteCommand(ctx, Reset)
}

// ForcePowerOff cuts power immediately
func (c *Client) ForcePowerOff(ctx context.Context) PowerCommandResult {
	return c.ExecuteCommand(ctx, ForcePowerOff)
}

// GetServerInfo returns the connection profile without the password
func (c *Client) GetServerInfo() ServerInfo {
	return ServerInfo{
		Host:           c.profile.Host,
		Username:       c.profile.Username,
		UseHTTPS:       c.profile.UseHTTPS,
		TimeoutSeconds: c.profile.TimeoutSeconds,
	}
}

// Close logs out and drops idle connections
func (c *Client) Close(ctx context.Context) {
	c.Logout(ctx)
	c.http.CloseIdleConnections()
}
