package utils

// Messages shared between the entry point and the CLI.
const (
	// LoggerInitializationFailedMessageFormat reports a failure to construct the application logger.
	LoggerInitializationFailedMessageFormat = "failed to initialize logger: %w"
	// ApplicationExecutionFailedMessage reports a fatal application error.
	ApplicationExecutionFailedMessage = "application failed"
)

// applicationVersion is injected at build time via -ldflags.
var applicationVersion = "dev"

// GetApplicationVersion returns the application version.
func GetApplicationVersion() string {
	return applicationVersion
}
