// Package utils carries the ambient plumbing of gitidentity.
//
// ConfigurationLoader merges the embedded defaults, config.yaml and
// GITIDENTITY_* environment variables through Viper. LoggerFactory builds the
// zap loggers selected by common.log_level and common.log_format.
// CommandContextAccessor passes the resolved configuration file and lookup
// table paths to subcommands through the cobra context.
package utils
