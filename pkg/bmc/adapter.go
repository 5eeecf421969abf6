package bmc

import "context"

// BMC defines the operations offered on a vendor BMC web console.
// None of the command or status methods return an error: failures are carried
// by the Success/Message and PowerState fields of the results.
type BMC interface {
	// Login authenticates against the console and records the session
	Login(ctx context.Context) bool

	// Logout ends the session on a best-effort basis
	Logout(ctx context.Context)

	// ExecuteCommand sends a power command, logging in first if needed
	ExecuteCommand(ctx context.Context, command PowerCommand) PowerCommandResult

	// PowerOn turns the server on
	PowerOn(ctx context.Context) PowerCommandResult

	// PowerOff requests a graceful shutdown
	PowerOff(ctx context.Context) PowerCommandResult

	// Reset performs a hard reset
	Reset(ctx context.Context) PowerCommandResult

	// ForcePowerOff cuts power immediately
	ForcePowerOff(ctx context.Context) PowerCommandResult

	// GetServerStatus queries the current power state
	GetServerStatus(ctx context.Context) ServerStatus

	// TestConnection logs in and immediately logs out
	TestConnection(ctx context.Context) bool

	// GetServerInfo returns the connection profile without the password
	GetServerInfo() ServerInfo

	// SessionState reports the current session state
	SessionState() SessionState
}

var _ BMC = (*Client)(nil)
