package sdk

import (
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/kairu-dev/dumpaudit/internal/audit"
	"github.com/kairu-dev/dumpaudit/internal/config"
)

// ServiceConfig wires the external collaborators into a Service. Nothing
// here is global: each Service carries its own configuration.
type ServiceConfig struct {
	// DB is the relational store holding the imported dump schemas.
	DB *sql.DB
	// Sink receives change documents. Required unless callers only list
	// schemas.
	Sink audit.Sink
	// Monitoring declares the tables and columns under comparison.
	Monitoring *config.Config
	// Logger defaults to a nop logger.
	Logger *zap.SugaredLogger

	// Workers bounds how many tables are compared concurrently.
	// Defaults to 4.
	Workers int
	// ReadTimeout applies per table to each snapshot read. A timeout
	// skips that table only. Defaults to 2 minutes.
	ReadTimeout time.Duration
	// MaxAttempts and InitialDelay configure the emitter's retry policy.
	MaxAttempts  int
	InitialDelay time.Duration
	// ContinueOnSinkError keeps a table's comparison going when the sink
	// exhausts its retries, counting the failure instead of aborting.
	ContinueOnSinkError bool
}

func (c ServiceConfig) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return 4
}

func (c ServiceConfig) readTimeout() time.Duration {
	if c.ReadTimeout > 0 {
		return c.ReadTimeout
	}
	return 2 * time.Minute
}

func (c ServiceConfig) emitter() *audit.Emitter {
	e := audit.NewEmitter(c.Sink)
	if c.MaxAttempts > 0 {
		e.MaxAttempts = c.MaxAttempts
	}
	if c.InitialDelay > 0 {
		e.InitialDelay = c.InitialDelay
	}
	return e
}
