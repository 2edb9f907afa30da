package postgres

import (
	"context"
	"fmt"

	"github.com/guillermoBallester/flaskr/internal/core/port"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ScriptConn replays script statements on one dedicated connection. A
// transaction is opened lazily by Exec and ended by Commit; Commit with
// nothing pending is a no-op.
type ScriptConn struct {
	conn *pgxpool.Conn
	tx   pgx.Tx
}

// OpenScript acquires a dedicated connection for a script run.
func (db *DB) OpenScript(ctx context.Context) (port.ScriptSession, error) {
	conn, err := db.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquiring connection: %w", err)
	}
	return &ScriptConn{conn: conn}, nil
}

func (c *ScriptConn) Exec(ctx context.Context, statement string) error {
	if c.tx == nil {
		tx, err := c.conn.Begin(ctx)
		if err != nil {
			return fmt.Errorf("beginning transaction: %w", err)
		}
		c.tx = tx
	}
	// No arguments: pgx sends the text over the simple protocol.
	_, err := c.tx.Exec(ctx, statement)
	return err
}

func (c *ScriptConn) Commit(ctx context.Context) error {
	if c.tx == nil {
		return nil
	}
	tx := c.tx
	c.tx = nil
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Close rolls back uncommitted work and returns the connection to the pool.
func (c *ScriptConn) Close(ctx context.Context) error {
	var err error
	if c.tx != nil {
		err = c.tx.Rollback(ctx)
		c.tx = nil
	}
	c.conn.Release()
	return err
}
