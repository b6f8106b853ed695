package watch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cfgschema/schemac/internal/compiler/driver"
	"github.com/cfgschema/schemac/internal/logging"
)

// SessionConfig holds configuration for a watch session
type SessionConfig struct {
	// Dir is the definitions directory
	Dir      string
	Debounce time.Duration
	Options  driver.Options
	// Hub, when set, receives building, success and error events
	Hub *EventHub
	// OnResult is called after every build attempt
	OnResult func(*Result, error)
}

// Session ties a file watcher to a rebuilder: every debounced batch of
// changes triggers one rebuild.
type Session struct {
	rebuilder *Rebuilder
	watcher   *FileWatcher
	hub       *EventHub
	onResult  func(*Result, error)
	logger    *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	buildMutex sync.Mutex
	isBuilding bool
	pending    []string
}

// NewSession creates a watch session
func NewSession(cfg SessionConfig) (*Session, error) {
	s := &Session{
		rebuilder: NewRebuilder(cfg.Dir, cfg.Options),
		hub:       cfg.Hub,
		onResult:  cfg.OnResult,
		logger:    logging.OrNop(cfg.Options.Logger).Named("session"),
	}

	var err error
	s.watcher, err = NewFileWatcher(WatcherConfig{
		Root:     cfg.Dir,
		Debounce: cfg.Debounce,
		Logger:   cfg.Options.Logger,
	}, s.handleFileChange)
	if err != nil {
		return nil, err
	}

	return s, nil
}

// Rebuilder returns the session's rebuilder, the source of the current schema
func (s *Session) Rebuilder() *Rebuilder {
	return s.rebuilder
}

// Start performs the initial build and starts watching. A failing initial
// build is reported but does not stop the session, so the author can fix it.
func (s *Session) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	s.build(nil)

	if err := s.watcher.Start(); err != nil {
		s.cancel()
		return fmt.Errorf("failed to start file watcher: %w", err)
	}

	s.logger.Info("watching for changes")
	return nil
}

// Stop stops watching and cancels any rebuild in progress
func (s *Session) Stop() error {
	if s.cancel != nil {
		s.cancel()
	}
	return s.watcher.Stop()
}

// handleFileChange queues changes arriving during a rebuild and runs them
// as one follow-up rebuild.
func (s *Session) handleFileChange(files []string) error {
	s.buildMutex.Lock()
	if s.isBuilding {
		s.pending = append(s.pending, files...)
		s.buildMutex.Unlock()
		s.logger.Debug("rebuild in progress, queued changes", zap.Strings("files", files))
		return nil
	}
	s.isBuilding = true
	s.buildMutex.Unlock()

	for {
		s.build(files)

		s.buildMutex.Lock()
		if len(s.pending) == 0 || s.ctx.Err() != nil {
			s.isBuilding = false
			s.pending = nil
			s.buildMutex.Unlock()
			return nil
		}
		files, s.pending = s.pending, nil
		s.buildMutex.Unlock()
	}
}

func (s *Session) build(files []string) {
	if s.hub != nil {
		s.hub.NotifyBuilding(files)
	}

	result, err := s.rebuilder.Rebuild(s.ctx, files)

	if s.hub != nil {
		if err != nil {
			s.hub.NotifyError(err)
		} else {
			s.hub.NotifySuccess(result.Duration, result.Fingerprint, len(result.Schema.Tags))
		}
	}

	if s.onResult != nil {
		s.onResult(result, err)
	}
}
