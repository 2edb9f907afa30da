package main

import (
	"fmt"
	"io"
	"net/url"
	"os"

	"github.com/guillermoBallester/flaskr/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var version = "dev"

func main() {
	if err := newRootCommand(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// newRootCommand builds the CLI. Running flaskr without a subcommand serves
// the web app.
func newRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var overrides func() config.Overrides

	rc := &cobra.Command{
		Use:           "flaskr",
		Short:         "Flaskr is a small multi-user blog.",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), overrides())
		},
	}
	overrides = bindFlags(rc.PersistentFlags())

	rc.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Serve the blog over HTTP.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), overrides())
		},
	})
	rc.AddCommand(&cobra.Command{
		Use:   "init-db",
		Short: "Clear the existing data and create new tables.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInitDB(cmd.Context(), overrides(), stdout)
		},
	})
	rc.AddCommand(&cobra.Command{
		Use:   "mcp",
		Short: "Serve read-only blog tools over MCP stdio.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMCP(cmd.Context(), overrides(), stdin, stdout)
		},
	})

	rc.SetOut(stdout)
	rc.SetErr(stderr)
	return rc
}

// bindFlags registers the configuration flags on fs. The returned function
// reports only the flags that were set, so env vars keep their value
// otherwise.
func bindFlags(fs *pflag.FlagSet) func() config.Overrides {
	configFile := fs.String("config", "", "YAML configuration file (overrides CONFIG_FILE)")
	databaseURL := fs.String("database-url", "", "database URL, postgres:// or mysql:// (overrides DATABASE_URL)")
	httpAddr := fs.String("http-addr", "", "HTTP listen address (overrides HTTP_ADDR)")
	secretKey := fs.String("secret-key", "", "session signing key (overrides SECRET_KEY)")
	logLevel := fs.String("log-level", "", "log level: debug, info, warn, error (overrides LOG_LEVEL)")
	schemaFile := fs.String("schema", "", "schema script path, default is the embedded schema (overrides SCHEMA_FILE)")
	split := fs.String("split", "", "script split mode: line, quoted, pg (overrides SCRIPT_SPLIT)")
	commit := fs.String("commit", "", "script commit policy: line, statement (overrides SCRIPT_COMMIT)")
	otelEnabled := fs.Bool("otel", false, "enable OpenTelemetry tracing and metrics")
	auditLog := fs.String("audit-log", "", "path to NDJSON audit log file")
	poolMaxConns := fs.Int32("pool-max-conns", 0, "maximum connections in pool (overrides POOL_MAX_CONNS)")
	poolMinConns := fs.Int32("pool-min-conns", 0, "minimum idle connections in pool (overrides POOL_MIN_CONNS)")
	poolMaxConnLifetime := fs.Duration("pool-max-conn-lifetime", 0, "maximum connection lifetime (overrides POOL_MAX_CONN_LIFETIME)")

	return func() config.Overrides {
		o := config.Overrides{
			OTelEnabled: *otelEnabled,
			AuditLog:    *auditLog,
		}
		setIfChanged(fs, "config", &o.ConfigFile, configFile)
		setIfChanged(fs, "database-url", &o.DatabaseURL, databaseURL)
		setIfChanged(fs, "http-addr", &o.HTTPAddr, httpAddr)
		setIfChanged(fs, "secret-key", &o.SecretKey, secretKey)
		setIfChanged(fs, "log-level", &o.LogLevel, logLevel)
		setIfChanged(fs, "schema", &o.SchemaFile, schemaFile)
		setIfChanged(fs, "split", &o.ScriptSplit, split)
		setIfChanged(fs, "commit", &o.ScriptCommit, commit)
		setIfChanged(fs, "pool-max-conns", &o.PoolMaxConns, poolMaxConns)
		setIfChanged(fs, "pool-min-conns", &o.PoolMinConns, poolMinConns)
		setIfChanged(fs, "pool-max-conn-lifetime", &o.PoolMaxConnLifetime, poolMaxConnLifetime)
		return o
	}
}

func setIfChanged[T any](fs *pflag.FlagSet, name string, dst **T, v *T) {
	if fs.Changed(name) {
		*dst = v
	}
}

// parseFlags parses args into config overrides.
func parseFlags(args []string) (config.Overrides, error) {
	fs := pflag.NewFlagSet("flaskr", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	overrides := bindFlags(fs)
	if err := fs.Parse(args); err != nil {
		return config.Overrides{}, err
	}
	return overrides(), nil
}

// redactDSN replaces the password in a database URL for logging.
func redactDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "***"
	}
	if _, hasPassword := u.User.Password(); hasPassword {
		u.User = url.UserPassword(u.User.Username(), "***")
	}
	return u.String()
}
