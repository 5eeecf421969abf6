// Package config provides the BMC connection profile and its loading utilities
package config

import (
	"fmt"
	"time"

	"github.com/davidroman0O/smcipmi/errors"
)

const (
	DefaultUsername       = "ADMIN"
	DefaultPassword       = "ADMIN"
	DefaultTimeoutSeconds = 30
)

// ConnectionProfile contains the BMC web console connection details
type ConnectionProfile struct {
	Host           string `yaml:"host" json:"host"`
	Username       string `yaml:"username" json:"username"`
	Password       string `yaml:"password" json:"password"`
	TimeoutSeconds int    `yaml:"timeoutSeconds" json:"timeoutSeconds"`
	UseHTTPS       bool   `yaml:"useHttps" json:"useHttps"`
	// Skip certificate validation; consoles usually ship a self-signed certificate
	InsecureSkipVerify bool `yaml:"insecureSkipVerify" json:"insecureSkipVerify"`
}

// DefaultProfile returns a profile populated with the console factory defaults
func DefaultProfile() ConnectionProfile {
	return ConnectionProfile{
		Username:           DefaultUsername,
		Password:           DefaultPassword,
		TimeoutSeconds:     DefaultTimeoutSeconds,
		UseHTTPS:           true,
		InsecureSkipVerify: true,
	}
}

// Scheme returns the URL scheme used to reach the console
func (p ConnectionProfile) Scheme() string {
	if p.UseHTTPS {
		return "https"
	}
	return "http"
}

// BaseURL returns the console root URL, e.g. https://10.0.0.5
func (p ConnectionProfile) BaseURL() string {
	return fmt.Sprintf("%s://%s", p.Scheme(), p.Host)
}

// Timeout returns the request timeout as a duration
func (p ConnectionProfile) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// Validate checks that the profile can be used to build a client
func (p ConnectionProfile) Validate() error {
	if p.Host == "" {
		return errors.WithOp(errors.New(errors.ErrConfiguration, "host is required"), "config.Validate")
	}
	if p.TimeoutSeconds <= 0 {
		return errors.WithContext(
			errors.WithOp(errors.New(errors.ErrConfiguration, "timeout must be positive"), "config.Validate"),
			map[string]interface{}{"timeoutSeconds": p.TimeoutSeconds},
		)
	}
	return nil
}
