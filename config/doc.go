// Package config loads layered configuration for lazyseq binaries.
//
// LoadConfig resolves a config.yml and an optional .env file for a named
// service, reads them with Viper, overlays environment variables and
// unmarshals the result into a struct through mapstructure tags.
//
//	var cfg MyConfig
//	err := config.LoadConfig("seqq", &cfg, config.WithConfigFile(path))
//
// Environment variables are matched to nested keys by splitting on
// underscores, so SEQQ_LOGGING_LEVEL sets logging.level when the prefix
// SEQQ is configured with WithEnvPrefix.
//
// ServiceConfig holds the fields every binary shares (name, environment,
// logging, telemetry) and is meant to be embedded with mapstructure squash.
package config
