package port

import "context"

// ScriptConn is the connection a script is replayed against. It is owned by
// the caller and is not safe for concurrent use.
type ScriptConn interface {
	Exec(ctx context.Context, statement string) error
	Commit(ctx context.Context) error
}

// ScriptSession is a ScriptConn that the opener must close. Close discards
// any uncommitted work.
type ScriptSession interface {
	ScriptConn
	Close(ctx context.Context) error
}
