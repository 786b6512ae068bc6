// Package utils exposes reusable helpers consumed by the CLI commands.
//
// ConfigurationLoader integrates Viper, environment variables and decode hooks,
// LoggerFactory builds the zap loggers, and CommandContextAccessor carries
// per-invocation values such as the run identifier through command contexts.
package utils
