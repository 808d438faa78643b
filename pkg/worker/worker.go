// Package worker runs the moderation queue handlers as a single process.
// Handlers are stateless and independently restartable; correctness under
// concurrent or duplicate delivery comes from the lifecycle idempotency
// guards, not from coordination between handlers.
package worker

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ormstack/moderation-go/pkg/handlers"
)

// Worker owns a set of registered handlers.
type Worker struct {
	logger     *logrus.Logger
	handlers   map[string]handlers.Handler
	handlersMu sync.RWMutex
}

// Config holds the configuration for the Worker.
type Config struct {
	Logger *logrus.Logger
}

// New creates a new Worker instance.
func New(config Config) (*Worker, error) {
	if config.Logger == nil {
		config.Logger = logrus.New()
	}

	return &Worker{
		logger:   config.Logger,
		handlers: make(map[string]handlers.Handler),
	}, nil
}

// RegisterHandler adds a handler to the worker.
func (w *Worker) RegisterHandler(h handlers.Handler) error {
	w.handlersMu.Lock()
	defer w.handlersMu.Unlock()

	if _, exists := w.handlers[h.Name()]; exists {
		return fmt.Errorf("handler %s already registered", h.Name())
	}

	w.handlers[h.Name()] = h
	return nil
}

// Run starts all registered handlers and blocks until the context is
// canceled or a handler fails.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("Starting worker with all registered handlers")

	var wg sync.WaitGroup
	errChan := make(chan error, len(w.handlers))

	w.handlersMu.RLock()
	for name, h := range w.handlers {
		wg.Add(1)
		go func(h handlers.Handler, name string) {
			defer wg.Done()
			w.logger.WithField("handler", name).Info("Starting handler")

			if err := h.Execute(ctx); err != nil && err != context.Canceled {
				w.logger.WithError(err).WithField("handler", name).Error("Handler failed")
				errChan <- fmt.Errorf("handler %s failed: %w", name, err)
			}
		}(h, name)
	}
	w.handlersMu.RUnlock()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
		close(errChan)
	}()

	select {
	case <-ctx.Done():
		w.logger.Info("Context canceled, initiating shutdown")
		w.Stop()
		<-done
		return ctx.Err()
	case err := <-errChan:
		w.logger.WithError(err).Error("Handler error occurred")
		w.Stop()
		<-done
		return err
	case <-done:
		w.logger.Info("All handlers completed normally")
		return nil
	}
}

// Stop stops all registered handlers.
func (w *Worker) Stop() {
	w.handlersMu.RLock()
	defer w.handlersMu.RUnlock()

	for name, h := range w.handlers {
		w.logger.WithField("handler", name).Info("Stopping handler")
		h.Stop()
	}
}
