package bmc

import (
	"fmt"
	"time"
)

// PowerCommand is a power action understood by the console's POWER_INFO handler.
// The value is the numeric code sent on the wire.
type PowerCommand int

const (
	PowerOff      PowerCommand = 0
	PowerOn       PowerCommand = 1
	Reset         PowerCommand = 3
	ForcePowerOff PowerCommand = 5
)

var powerCommandNames = map[PowerCommand]string{
	PowerOff:      "PowerOff",
	PowerOn:       "PowerOn",
	Reset:         "Reset",
	ForcePowerOff: "ForcePowerOff",
}

// PowerCommands lists every supported command
func PowerCommands() []PowerCommand {
	return []PowerCommand{PowerOn, PowerOff, Reset, ForcePowerOff}
}

// String returns the command name
func (c PowerCommand) String() string {
	if name, ok := powerCommandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("PowerCommand(%d)", int(c))
}

// Valid reports whether the command belongs to the supported set
func (c PowerCommand) Valid() bool {
	_, ok := powerCommandNames[c]
	return ok
}

// Code returns the numeric code the console expects
func (c PowerCommand) Code() int {
	return int(c)
}

// PowerState is the normalized power state reported by the console
type PowerState string

const (
	PowerStateOn  PowerState = "On"
	PowerStateOff PowerState = "Off"
)

// PowerCommandResult is the outcome of a single power command
type PowerCommandResult struct {
	Success    bool      `json:"success" yaml:"success"`
	Message    string    `json:"message" yaml:"message"`
	ExecutedAt time.Time `json:"executedAt" yaml:"executedAt"`
}

// ServerStatus is the outcome of a single status query.
// PowerState is "On", "Off", or a descriptive "Unknown - ..." / "Error - ..." string.
type ServerStatus struct {
	IsOn        bool      `json:"isOn" yaml:"isOn"`
	PowerState  string    `json:"powerState" yaml:"powerState"`
	LastChecked time.Time `json:"lastChecked" yaml:"lastChecked"`
}

// ServerInfo is the non-secret view of the connection profile
type ServerInfo struct {
	Host           string `json:"host" yaml:"host"`
	Username       string `json:"username" yaml:"username"`
	UseHTTPS       bool   `json:"useHttps" yaml:"useHttps"`
	TimeoutSeconds int    `json:"timeoutSeconds" yaml:"timeoutSeconds"`
}

// SessionState tracks whether the client holds an authenticated console session
type SessionState int

const (
	Unauthenticated SessionState = iota
	Authenticated
)

// String implements fmt.Stringer
func (s SessionState) String() string {
	switch s {
	case Authenticated:
		return "Authenticated"
	default:
		return "Unauthenticated"
	}
}
