package bootstrap

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/lazyseq/logger"
)

// App runs a finite task with a uniform lifecycle. The type parameter C is
// the config type; any struct embedding config.ServiceConfig satisfies Config.
//
// Example:
//
//	app, err := bootstrap.NewApp(&cfg)
//	if err != nil {
//	    return err
//	}
//	return app.RunTask(ctx, func(ctx context.Context) error {
//	    return evaluate(ctx, app.Cfg)
//	})
type App[C Config] struct {
	Name    string
	Version string
	Cfg     C
	Logger  *logger.Logger
	Summary *Summary

	gracefulTimeout time.Duration
	signals         bool

	onStart []Hook
	onStop  []Hook
}

// NewApp creates an application from a typed config. It applies defaults,
// validates the config, initializes the logger and, when telemetry is
// enabled, registers the tracer and meter providers as start and stop hooks.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	base := cfg.GetServiceConfig()

	app := &App[C]{
		Name:            base.Name,
		Version:         base.Version,
		Cfg:             cfg,
		gracefulTimeout: 15 * time.Second,
		signals:         true,
	}

	o := resolveOptions(opts)
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}
	if o.noSignals {
		app.signals = false
	}

	if o.logger != nil {
		app.Logger = o.logger
	} else {
		logger.Init(base.Logging)
		app.Logger = logger.GetGlobalLogger()
	}

	app.Summary = NewSummary(base.Name, base.Version, base.Environment)
	if base.Telemetry.Enabled {
		app.registerTelemetry(base.Telemetry)
	}
	return app, nil
}

// RunTask executes a finite task: OnStart hooks, the task itself, then OnStop
// hooks within the graceful timeout. The task context is canceled on SIGINT or
// SIGTERM. OnStop hooks run even when the task fails; the task error wins
// over a shutdown error.
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	start := time.Now()
	a.Logger.Debug("starting task", logger.Fields("name", a.Name, "version", a.Version))

	if err := runHooks(ctx, a.onStart); err != nil {
		// Hooks that did start may hold exporters open.
		_ = a.stop()
		return fmt.Errorf("onStart hook failed: %w", err)
	}
	a.Summary.SetStartupDuration(time.Since(start))

	taskCtx, cancel := a.taskContext(ctx)
	defer cancel()

	taskStart := time.Now()
	taskErr := task(taskCtx)
	a.Summary.SetTaskResult(time.Since(taskStart), taskErr)

	stopErr := a.stop()
	a.Summary.Log(a.Logger)

	if taskErr != nil {
		return taskErr
	}
	return stopErr
}

func (a *App[C]) taskContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if !a.signals {
		return context.WithCancel(ctx)
	}
	return signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
}

// Shutdown runs the OnStop hooks. Use it when managing the lifecycle manually.
func (a *App[C]) Shutdown() error {
	return a.stop()
}

// stop runs the OnStop hooks within the graceful timeout. Hooks run in
// reverse registration order and every hook runs even if an earlier one fails.
func (a *App[C]) stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var shutdownErr error
	for i := len(a.onStop) - 1; i >= 0; i-- {
		if err := a.onStop[i](ctx); err != nil {
			a.Logger.Error("OnStop hook error", logger.ErrorFields("shutdown", err))
			if shutdownErr == nil {
				shutdownErr = err
			}
		}
	}
	return shutdownErr
}
