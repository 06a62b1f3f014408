package sqlbridge

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/a-h/sqlbridge/db"
)

// State is the lifecycle state of the store handle owned by a Gateway.
type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Opener opens the store. It's run once, by Init.
type Opener func(ctx context.Context) (db.DB, error)

type Option func(*Gateway)

// WithLogger sets the logger. By default, logs are discarded.
func WithLogger(log *slog.Logger) Option {
	return func(g *Gateway) {
		g.log = log
	}
}

// WithTimeout limits the duration of each Execute and ExecuteBatch call. Zero
// means calls are only limited by the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		g.timeout = d
	}
}

func New(opts ...Option) *Gateway {
	g := &Gateway{
		log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Gateway runs caller supplied SQL against a store. Init takes the write lock
// exactly once, while every call takes the read lock, so calls run
// concurrently with each other.
type Gateway struct {
	mu      sync.RWMutex
	state   State
	db      db.DB
	log     *slog.Logger
	timeout time.Duration
}

// State returns the current lifecycle state. It blocks while Init is running.
func (g *Gateway) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// Init opens the store. Init succeeds at most once; later calls return
// db.ErrAlreadyInitialized. If open fails, the gateway remains uninitialized.
func (g *Gateway) Init(ctx context.Context, open Opener) (err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StateUninitialized {
		return db.ErrAlreadyInitialized
	}

	g.state = StateInitializing
	start := time.Now()
	store, err := open(ctx)
	if err != nil {
		g.state = StateUninitialized
		g.log.Error("failed to initialize store", slog.Any("error", err))
		return fmt.Errorf("init: %w", err)
	}
	if store == nil {
		g.state = StateUninitialized
		return fmt.Errorf("init: opener returned no store")
	}
	g.db = store
	g.state = StateReady
	g.log.Info("store initialized", slog.Duration("duration", time.Since(start)))
	return nil
}

// Execute runs a single statement on a pooled connection and returns its
// rows. Statements are committed by the store as soon as they complete.
func (g *Gateway) Execute(ctx context.Context, sql string, params []db.Value) (rows db.ResultSet, err error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.state != StateReady {
		return nil, db.ErrStoreNotInitialized
	}

	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	rows, err = g.db.Execute(ctx, db.Statement{SQL: sql, Params: params})
	if err != nil {
		g.log.Warn("execute failed", slog.String("sql", sql), slog.Int("params", len(params)), slog.Any("error", err))
		return nil, err
	}
	g.log.Debug("execute", slog.String("sql", sql), slog.Int("params", len(params)), slog.Int("rows", len(rows)), slog.Duration("duration", time.Since(start)))
	return rows, nil
}

// ExecuteBatch runs the items in order within a single transaction. Either all
// items take effect, or none do. The Method of each item is not used.
func (g *Gateway) ExecuteBatch(ctx context.Context, items []db.BatchItem) (outputs []db.ResultSet, err error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.state != StateReady {
		return nil, db.ErrStoreNotInitialized
	}

	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	statements := make([]db.Statement, len(items))
	for i, item := range items {
		statements[i] = item.Statement
	}

	start := time.Now()
	outputs, err = g.db.ExecuteBatch(ctx, statements...)
	if err != nil {
		g.log.Warn("execute batch failed", slog.Int("statements", len(statements)), slog.Any("error", err))
		return nil, err
	}
	g.log.Debug("execute batch", slog.Int("statements", len(statements)), slog.Duration("duration", time.Since(start)))
	return outputs, nil
}

// Statements returns the statement set of the store, or nil if the gateway
// isn't ready.
func (g *Gateway) Statements() db.StatementSet {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.state != StateReady {
		return nil
	}
	return g.db.Statements()
}

func (g *Gateway) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.timeout)
}
