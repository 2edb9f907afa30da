package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/guillermoBallester/flaskr/internal/core/port"
)

// ScriptConn replays script statements on one dedicated connection, opening a
// transaction on the first Exec after each Commit. MySQL commits DDL
// implicitly, so a Commit after DDL only ends an empty transaction.
type ScriptConn struct {
	conn *sql.Conn
	tx   *sql.Tx
}

func (db *DB) OpenScript(ctx context.Context) (port.ScriptSession, error) {
	conn, err := db.sql.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquiring connection: %w", err)
	}
	return &ScriptConn{conn: conn}, nil
}

func (c *ScriptConn) Exec(ctx context.Context, statement string) error {
	if c.tx == nil {
		tx, err := c.conn.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("beginning transaction: %w", err)
		}
		c.tx = tx
	}
	_, err := c.tx.ExecContext(ctx, statement)
	return err
}

func (c *ScriptConn) Commit(context.Context) error {
	if c.tx == nil {
		return nil
	}
	tx := c.tx
	c.tx = nil
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (c *ScriptConn) Close(context.Context) error {
	var err error
	if c.tx != nil {
		err = c.tx.Rollback()
		c.tx = nil
	}
	if cerr := c.conn.Close(); err == nil {
		err = cerr
	}
	return err
}
