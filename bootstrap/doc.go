// Package bootstrap runs lazyseq binaries through a small lifecycle.
//
// NewApp applies config defaults, validates, and initializes the global
// logger. RunTask then runs start hooks, the task under a signal-aware
// context, and stop hooks under a graceful timeout.
//
//	app, err := bootstrap.NewApp(&cfg)
//	if err != nil {
//	    return err
//	}
//	return app.RunTask(ctx, evaluate)
//
// When telemetry is enabled the OTLP tracer and meter providers are
// installed before the task and flushed after it.
package bootstrap
