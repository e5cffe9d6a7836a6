package cmd

import (
	"os"

	"github.com/spf13/viper"

	"github.com/psantana5/vaultmod/internal/coerce"
	"github.com/psantana5/vaultmod/internal/overrides"
	"github.com/psantana5/vaultmod/internal/report"
	"github.com/psantana5/vaultmod/internal/schema"
	"github.com/psantana5/vaultmod/internal/typeresolve"
	"github.com/psantana5/vaultmod/pkg/logging"
)

// runtime is the wired coercion stack shared by the subcommands
type runtime struct {
	logger   *logging.Logger
	registry *schema.Registry
	resolver *typeresolve.Resolver
	metrics  *report.Metrics
	coercer  *coerce.Coercer
	failures *report.FailureLog
	applier  *overrides.Applier
}

func newRuntime() (*runtime, error) {
	logger, err := newLogger()
	if err != nil {
		return nil, err
	}

	registry := schema.Default()
	if path := viper.GetString("schema"); path != "" {
		loaded, err := schema.Load(path)
		if err != nil {
			logger.Close()
			return nil, err
		}
		registry = registry.Merge(loaded)
		logger.Debug("schema loaded", logging.Fields{"path": path, "wrappers": len(registry.WrapperTypes())})
	}

	rt := &runtime{
		logger:   logger,
		registry: registry,
		failures: report.NewFailureLog(viper.GetInt("failure_history")),
	}
	rt.metrics = report.NewMetrics(func() float64 { return float64(rt.resolver.Len()) })
	rt.resolver = typeresolve.NewResolver(registry,
		typeresolve.WithLogger(logger),
		typeresolve.WithRecorder(rt.metrics),
	)
	rt.coercer = coerce.New(rt.resolver,
		coerce.WithLogger(logger),
		coerce.WithRecorder(rt.metrics),
	)
	rt.applier = overrides.NewApplier(rt.coercer, registry, logger, rt.failures)
	return rt, nil
}

// newLogger builds the process logger. With log_file set, entries are
// appended to that file and mirrored to stderr.
func newLogger() (*logging.Logger, error) {
	level := logging.ParseLevel(viper.GetString("log_level"))
	jsonFormat := viper.GetString("log_format") == "json"
	if path := viper.GetString("log_file"); path != "" {
		return logging.NewFileLogger(path, level, jsonFormat)
	}
	return logging.NewLogger(level, jsonFormat, os.Stderr), nil
}

// Close releases the log file, if any
func (rt *runtime) Close() error {
	return rt.logger.Close()
}
