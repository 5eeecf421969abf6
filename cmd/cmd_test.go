package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// consoleStub answers the three CGI endpoints used by the client
type consoleStub struct {
	loginOK    bool
	ipmiStatus int
	ipmiBody   string
	ipmiForms  []string
}

func (s *consoleStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	switch r.URL.Path {
	case "/cgi/login.cgi":
		if s.loginOK {
			_, _ = io.WriteString(w, `self.location="../cgi/url_redirect.cgi?url_name=mainmenu"`)
			return
		}
		_, _ = io.WriteString(w, `alert("Invalid Username or Password")`)
	case "/cgi/url_redirect.cgi":
		w.WriteHeader(http.StatusOK)
	case "/cgi/ipmi.cgi":
		s.ipmiForms = append(s.ipmiForms, string(body))
		w.WriteHeader(s.ipmiStatus)
		_, _ = io.WriteString(w, s.ipmiBody)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func runCLI(t *testing.T, env map[string]string, args ...string) (string, error) {
	t.Helper()

	// keep the test independent from the developer's environment
	root := newRootCommand(func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func startConsole(t *testing.T, stub *consoleStub) string {
	t.Helper()
	server := httptest.NewServer(stub)
	t.Cleanup(server.Close)
	return strings.TrimPrefix(server.URL, "http://")
}

func TestPowerOnCommand(t *testing.T) {
	stub := &consoleStub{loginOK: true, ipmiStatus: http.StatusOK}
	host := startConsole(t, stub)

	out, err := runCLI(t, nil, "power", "on", "--host", host, "--https=false")
	require.NoError(t, err)

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, true, result["success"])
	assert.Equal(t, "Power command PowerOn executed successfully", result["message"])
	assert.Contains(t, result, "executedAt")
	assert.Equal(t, []string{"op=POWER_INFO.XML&r=(1%2C1)&_="}, stub.ipmiForms)
}

func TestPowerCommand_Failure(t *testing.T) {
	stub := &consoleStub{loginOK: true, ipmiStatus: http.StatusServiceUnavailable}
	host := startConsole(t, stub)

	out, err := runCLI(t, nil, "power", "force-off", "--host", host, "--https=false")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ForcePowerOff")
	assert.Contains(t, out, "503")
	assert.Equal(t, []string{"op=POWER_INFO.XML&r=(1%2C5)&_="}, stub.ipmiForms)
}

func TestStatusCommand_YAML(t *testing.T) {
	stub := &consoleStub{
		loginOK:    true,
		ipmiStatus: http.StatusOK,
		ipmiBody:   `<IPMI><POWER_INFO><POWER STATUS="OFF"/></POWER_INFO></IPMI>`,
	}
	host := startConsole(t, stub)

	out, err := runCLI(t, nil, "status", "--host", host, "--https=false", "-o", "yaml")
	require.NoError(t, err)

	var status map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(out), &status))
	assert.Equal(t, false, status["isOn"])
	assert.Equal(t, "Off", status["powerState"])
}

func TestStatusCommand_LoginFailureIsNotAnError(t *testing.T) {
	stub := &consoleStub{loginOK: false}
	host := startConsole(t, stub)

	out, err := runCLI(t, nil, "status", "--host", host, "--https=false")
	require.NoError(t, err)
	assert.Contains(t, out, "Unknown - Login Failed")
	assert.Empty(t, stub.ipmiForms)
}

func TestTestConnectionCommand(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		host := startConsole(t, &consoleStub{loginOK: true})
		out, err := runCLI(t, nil, "test-connection", "--host", host, "--https=false")
		require.NoError(t, err)
		assert.Contains(t, out, "Successfully connected to IPMI interface")
	})

	t.Run("failure", func(t *testing.T) {
		host := startConsole(t, &consoleStub{loginOK: false})
		out, err := runCLI(t, nil, "test-connection", "--host", host, "--https=false")
		require.Error(t, err)
		assert.Contains(t, out, "Failed to connect to IPMI interface")
	})
}

func TestInfoCommand_Precedence(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "bmc.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("host: file-host\nusername: file-user\ntimeoutSeconds: 10\n"), 0644))

	env := map[string]string{
		"IPMI_USERNAME": "env-user",
		"IPMI_TIMEOUT":  "20",
	}

	out, err := runCLI(t, env, "info", "--config", cfgPath, "--timeout", "40")
	require.NoError(t, err)

	var info map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "file-host", info["host"])
	assert.Equal(t, "env-user", info["username"])
	assert.Equal(t, float64(40), info["timeoutSeconds"])
	assert.Equal(t, true, info["useHttps"])
	assert.NotContains(t, out, "password")
}

func TestMissingHost(t *testing.T) {
	_, err := runCLI(t, nil, "status")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "host is required")
}

func TestUnsupportedOutput(t *testing.T) {
	_, err := runCLI(t, nil, "info", "--host", "10.0.0.5", "-o", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}
