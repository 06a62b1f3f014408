package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"time"

	"github.com/a-h/sqlbridge"
	"github.com/a-h/sqlbridge/config"
	"github.com/a-h/sqlbridge/db"
	"github.com/alecthomas/kong"
	"github.com/fatih/color"
	"github.com/jackc/pgx/v5/pgxpool"
	rqlitehttp "github.com/rqlite/rqlite-go-http"
	"github.com/spf13/afero"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

type GlobalFlags struct {
	Type       string        `help:"The type of store to use." enum:"sqlite,postgres,rqlite,sql" default:"${type}"`
	Driver     string        `help:"The database/sql driver to use when type is sql." enum:"sqlite3,postgres,mysql" default:"${driver}"`
	Connection string        `help:"The connection string for postgres, rqlite and sql stores." default:"${connection}"`
	DataDir    string        `help:"The directory containing the sqlite database file." default:"${data_dir}" type:"path"`
	File       string        `help:"The name of the sqlite database file." default:"${file}"`
	PoolSize   int           `help:"The maximum number of pooled connections." default:"${pool_size}"`
	Timeout    time.Duration `help:"The maximum duration of each call, or 0 for no limit." default:"${timeout}"`
	LogLevel   string        `help:"The minimum level of log messages." enum:"debug,info,warn,error" default:"${log_level}"`
}

func (g GlobalFlags) Logger() (*slog.Logger, error) {
	level, err := g.Config().Level()
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})), nil
}

func (g GlobalFlags) Config() config.Config {
	return config.Config{
		Type:       g.Type,
		Driver:     g.Driver,
		Connection: g.Connection,
		DataDir:    g.DataDir,
		File:       g.File,
		PoolSize:   g.PoolSize,
		Timeout:    g.Timeout,
		LogLevel:   g.LogLevel,
	}
}

// Gateway creates an initialized gateway. The returned function releases the
// store's connections.
func (g GlobalFlags) Gateway(ctx context.Context) (gw *sqlbridge.Gateway, closer func(), err error) {
	log, err := g.Logger()
	if err != nil {
		return nil, nil, err
	}
	gw = sqlbridge.New(sqlbridge.WithLogger(log), sqlbridge.WithTimeout(g.Timeout))
	closer = func() {}
	err = gw.Init(ctx, func(ctx context.Context) (store db.DB, err error) {
		store, closer, err = g.DB(ctx)
		return store, err
	})
	if err != nil {
		return nil, nil, err
	}
	return gw, closer, nil
}

func (g GlobalFlags) DB(ctx context.Context) (store db.DB, closer func(), err error) {
	switch g.Type {
	case "sqlite":
		path := g.Config().StorePath()
		pool, err := sqlbridge.OpenSqlite(afero.NewOsFs(), path, g.PoolSize)
		if err != nil {
			return nil, nil, err
		}
		return sqlbridge.NewSqlite(pool), func() { pool.Close() }, nil
	case "postgres":
		pool, err := pgxpool.New(ctx, g.Connection)
		if err != nil {
			return nil, nil, err
		}
		return sqlbridge.NewPostgres(pool), pool.Close, nil
	case "rqlite":
		u, err := url.Parse(g.Connection)
		if err != nil {
			return nil, nil, err
		}
		user := u.Query().Get("user")
		password := u.Query().Get("password")
		// Remove user and password from the connection string.
		u.RawQuery = ""
		client := rqlitehttp.NewClient(u.String(), nil)
		if user != "" && password != "" {
			client.SetBasicAuth(user, password)
		}
		return sqlbridge.NewRqlite(client), func() {}, nil
	case "sql":
		pool, err := sql.Open(g.Driver, g.Connection)
		if err != nil {
			return nil, nil, err
		}
		pool.SetMaxOpenConns(g.PoolSize)
		if err = pool.PingContext(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return sqlbridge.NewSQL(g.Driver, pool), func() { pool.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store type %q", g.Type)
	}
}

type CLI struct {
	GlobalFlags

	Init  InitCommand  `cmd:"init" help:"Create the store if it doesn't exist."`
	Exec  ExecCommand  `cmd:"exec" help:"Execute a single statement."`
	Batch BatchCommand `cmd:"batch" help:"Execute a batch of statements from stdin in a single transaction."`
	Serve ServeCommand `cmd:"serve" help:"Serve the gateway over HTTP."`
	Bench BenchCommand `cmd:"bench" help:"Benchmark concurrent statements."`
}

func main() {
	cfg, err := config.Load(afero.NewOsFs())
	if err != nil {
		color.Red("%v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var cli CLI
	kctx := kong.Parse(&cli,
		kong.UsageOnError(),
		kong.Vars{
			"type":       cfg.Type,
			"driver":     cfg.Driver,
			"connection": cfg.Connection,
			"data_dir":   cfg.DataDir,
			"file":       cfg.File,
			"pool_size":  fmt.Sprintf("%d", cfg.PoolSize),
			"timeout":    cfg.Timeout.String(),
			"log_level":  cfg.LogLevel,
			"listen":     cfg.Listen,
		},
		kong.BindTo(ctx, (*context.Context)(nil)),
		kong.BindTo(cli.GlobalFlags, (*GlobalFlags)(nil)),
	)
	if err := kctx.Run(ctx, cli.GlobalFlags); err != nil {
		color.Red("%v", err)
		stop()
		os.Exit(1)
	}
}
