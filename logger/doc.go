// Package logger provides structured logging for lazyseq using zerolog.
//
// Pipelines and operators log under component-scoped loggers at debug level
// (stage attachment, queue replay, pipeline close), so the default info level
// keeps the library silent. Binaries call Init with a Config to turn it up.
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "json"
//	  output: "stderr"
//
// # Usage
//
//	log := logger.Get("query")
//	log.Debug("terminal finished", logger.Fields(logger.FieldOperator, "sum"))
package logger
