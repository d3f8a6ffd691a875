package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// adminTimeout bounds a single administrative round trip to the engine. These
// are local connections; anything slower than this is stuck.
const adminTimeout = 30 * time.Second

// CreateDatabase creates a logical database on the running engine.
func (e *Engine) CreateDatabase(name string) error {
	if err := e.adminReady(name); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), adminTimeout)
	defer cancel()

	// Identifiers cannot be bound as parameters; quote instead.
	stmt := fmt.Sprintf("CREATE DATABASE %s", pq.QuoteIdentifier(name))
	if _, err := e.admin.ExecContext(ctx, stmt); err != nil {
		e.logger.Printf("create database %q: %v", name, err)
		return NewAdminError("create_database", "failed to create database", err)
	}
	return nil
}

// DropDatabase drops a logical database on the running engine. Dropping a
// database that does not exist is not an error.
func (e *Engine) DropDatabase(name string) error {
	if err := e.adminReady(name); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), adminTimeout)
	defer cancel()

	stmt := fmt.Sprintf("DROP DATABASE IF EXISTS %s", pq.QuoteIdentifier(name))
	if _, err := e.admin.ExecContext(ctx, stmt); err != nil {
		e.logger.Printf("drop database %q: %v", name, err)
		return NewAdminError("drop_database", "failed to drop database", err)
	}
	return nil
}

// DatabaseExists reports whether a logical database with the given name
// exists on the running engine.
func (e *Engine) DatabaseExists(name string) (bool, error) {
	if err := e.adminReady(name); err != nil {
		return false, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), adminTimeout)
	defer cancel()

	var exists bool
	query := "SELECT EXISTS (SELECT 1 FROM pg_catalog.pg_database WHERE datname = $1)"
	if err := e.admin.GetContext(ctx, &exists, query, name); err != nil {
		e.logger.Printf("database exists %q: %v", name, err)
		return false, NewAdminError("database_exists", "failed to query database catalog", err)
	}
	return exists, nil
}

// adminReady validates the preconditions shared by all administrative
// operations: a running engine and a non-empty database name.
func (e *Engine) adminReady(name string) error {
	if e.state != StateRunning || e.admin == nil {
		return ErrNotRunning
	}
	if name == "" {
		return ErrEmptyDatabaseName
	}
	return nil
}
