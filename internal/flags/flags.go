package flags

// Package flags defines canonical CLI flag names shared across the CLI.
// Keeping these as constants helps avoid drift between Cobra flag wiring
// and other code paths that need to reference flags.
// IMPORTANT: These are flag *names* without leading dashes.
const (
	// Targeting
	FlagOrg            = "org"
	FlagProject        = "project"
	FlagStatus         = "status"
	FlagIncludeDrafts  = "include-drafts"
	FlagIncludeSecrets = "include-secrets"

	// Auth
	FlagPAT = "pat"

	// Output
	FlagOut           = "out"
	FlagEmit          = "emit"
	FlagOutFormat     = "out-format"
	FlagConsoleFormat = "console-format"
	FlagNoConsole     = "no-console"

	// Runtime
	FlagThrottle = "throttle"
	FlagTimeout  = "timeout"
	FlagConfig   = "config"
	FlagVerbose  = "verbose"
)
