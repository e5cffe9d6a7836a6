// Package shutdown runs registered cleanup steps when the process is asked
// to stop.
package shutdown

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/psantana5/vaultmod/pkg/logging"
)

// Manager handles graceful shutdown
type Manager struct {
	funcs   []namedFunc
	mu      sync.Mutex
	timeout time.Duration
	logger  *logging.Logger
}

type namedFunc struct {
	name string
	fn   func(context.Context) error
}

// New creates a shutdown manager whose steps share one timeout
func New(timeout time.Duration, logger *logging.Logger) *Manager {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Manager{timeout: timeout, logger: logger}
}

// Register adds a shutdown step. Steps run in reverse registration order.
func (m *Manager) Register(name string, fn func(context.Context) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.funcs = append(m.funcs, namedFunc{name: name, fn: fn})
}

// Shutdown runs every registered step and returns the first error seen.
// A failing step does not stop the others.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	var first error
	for i := len(m.funcs) - 1; i >= 0; i-- {
		f := m.funcs[i]
		m.logger.Debug("stopping", logging.Fields{"component": f.name})
		if err := f.fn(ctx); err != nil {
			m.logger.Error("shutdown step failed", logging.Fields{"component": f.name, "error": err.Error()})
			if first == nil {
				first = fmt.Errorf("%s: %w", f.name, err)
			}
		}
	}
	m.funcs = nil
	m.logger.Info("graceful shutdown complete")
	return first
}

// WaitWithContext blocks until SIGINT/SIGTERM or ctx is done, then runs
// Shutdown. A signal yields Shutdown's error; ctx yields ctx.Err() after
// the steps ran.
func (m *Manager) WaitWithContext(ctx context.Context) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		m.logger.Info("received signal, shutting down", logging.Fields{"signal": sig.String()})
		return m.Shutdown()
	case <-ctx.Done():
		if err := m.Shutdown(); err != nil {
			return err
		}
		return ctx.Err()
	}
}

// StopHTTPServer wraps an http.Server for registration
func StopHTTPServer(server interface{ Shutdown(context.Context) error }) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to stop HTTP server: %w", err)
		}
		return nil
	}
}
