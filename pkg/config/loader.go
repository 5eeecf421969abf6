package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/davidroman0O/smcipmi/errors"
	"gopkg.in/yaml.v3"
)

// Environment variables understood by ApplyEnv
const (
	EnvHost               = "IPMI_HOST"
	EnvUsername           = "IPMI_USERNAME"
	EnvPassword           = "IPMI_PASSWORD"
	EnvTimeout            = "IPMI_TIMEOUT"
	EnvUseHTTPS           = "IPMI_USE_HTTPS"
	EnvInsecureSkipVerify = "IPMI_INSECURE_SKIP_VERIFY"
)

// LookupFunc matches the signature of os.LookupEnv
type LookupFunc func(key string) (string, bool)

// LoadConfigFile loads a profile file on top of the defaults.
// Fields absent from the file keep their default value.
func LoadConfigFile(path string) (ConnectionProfile, error) {
	profile := DefaultProfile()

	data, err := os.ReadFile(path)
	if err != nil {
		return profile, errors.Wrap(err, errors.ErrConfiguration, "failed to read config file")
	}

	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &profile); err != nil {
			return profile, errors.Wrap(err, errors.ErrConfiguration, "failed to parse YAML config")
		}
	case ".json":
		if err := json.Unmarshal(data, &profile); err != nil {
			return profile, errors.Wrap(err, errors.ErrConfiguration, "failed to parse JSON config")
		}
	default:
		return profile, errors.New(errors.ErrConfiguration, fmt.Sprintf("unsupported config file format: %s", ext))
	}

	return profile, nil
}

// ApplyEnv overlays IPMI_* environment variables onto the profile.
// An IPMI_TIMEOUT that is not an integer leaves the timeout untouched, and an
// IPMI_USE_HTTPS that is not a boolean enables HTTPS.
func ApplyEnv(profile ConnectionProfile, lookup LookupFunc) ConnectionProfile {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	if v, ok := lookup(EnvHost); ok && v != "" {
		profile.Host = v
	}
	if v, ok := lookup(EnvUsername); ok && v != "" {
		profile.Username = v
	}
	if v, ok := lookup(EnvPassword); ok && v != "" {
		profile.Password = v
	}
	if v, ok := lookup(EnvTimeout); ok {
		if timeout, err := strconv.Atoi(v); err == nil {
			profile.TimeoutSeconds = timeout
		}
	}
	if v, ok := lookup(EnvUseHTTPS); ok {
		useHTTPS, err := strconv.ParseBool(v)
		profile.UseHTTPS = err != nil || useHTTPS
	}
	if v, ok := lookup(EnvInsecureSkipVerify); ok {
		if insecure, err := strconv.ParseBool(v); err == nil {
			profile.InsecureSkipVerify = insecure
		}
	}

	return profile
}
