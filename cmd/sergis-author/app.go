package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"sergis-author/internal/logger"
	"sergis-author/internal/storage"
	"sergis-author/internal/storage/local"
	"sergis-author/internal/storage/remote"

	"github.com/kelseyhightower/envconfig"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// env - значения флагов по умолчанию из переменных SERGIS_*.
type env struct {
	Backend   string        `envconfig:"BACKEND" default:"local"`
	Store     string        `envconfig:"STORE" default:"sqlite"`
	DBPath    string        `envconfig:"DB_PATH"`
	RedisAddr string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Server    string        `envconfig:"SERVER" default:"http://localhost:8080"`
	Username  string        `envconfig:"USERNAME"`
	Password  string        `envconfig:"PASSWORD"`
	Token     string        `envconfig:"TOKEN"`
	Timeout   time.Duration `envconfig:"TIMEOUT" default:"30s"`
}

type app struct {
	backendKind string
	storeKind   string
	dbPath      string
	redisAddr   string
	server      string
	username    string
	password    string
	token       string
	timeout     time.Duration
	verbose     bool

	log zerolog.Logger
	// openBackend подменяется в тестах.
	openBackend func(ctx context.Context) (storage.Backend, error)
}

func newApp() *app {
	a := &app{}
	a.openBackend = a.defaultBackend
	return a
}

func (a *app) rootCmd() *cobra.Command {
	var defaults env
	if err := envconfig.Process("SERGIS", &defaults); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: invalid SERGIS_* environment: %v\n", err)
	}
	if defaults.DBPath == "" {
		defaults.DBPath = defaultDBPath()
	}

	root := &cobra.Command{
		Use:           "sergis-author",
		Short:         "Author SerGIS JSON games",
		Long:          `Checks, imports, exports and edits SerGIS game documents stored locally or on an authoring server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			a.log = newCLILogger(cmd.ErrOrStderr(), a.verbose)
		},
	}
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w\n\n%s", err, cmd.UsageString())
	})

	flags := root.PersistentFlags()
	flags.StringVar(&a.backendKind, "backend", defaults.Backend, "storage backend: local or remote")
	flags.StringVar(&a.storeKind, "store", defaults.Store, "local store: sqlite, redis or memory")
	flags.StringVar(&a.dbPath, "db", defaults.DBPath, "SQLite file of the local store")
	flags.StringVar(&a.redisAddr, "redis-addr", defaults.RedisAddr, "Redis address of the local store")
	flags.StringVar(&a.server, "server", defaults.Server, "authoring server URL")
	flags.StringVar(&a.username, "username", defaults.Username, "authoring server username")
	flags.StringVar(&a.password, "password", defaults.Password, "authoring server password (or SERGIS_PASSWORD)")
	flags.StringVar(&a.token, "token", defaults.Token, "session token instead of username and password")
	flags.DurationVar(&a.timeout, "timeout", defaults.Timeout, "operation timeout")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		a.checkCmd(),
		a.listCmd(),
		a.importCmd(),
		a.exportCmd(),
		a.renameCmd(),
		a.removeCmd(),
		a.recentCmd(),
		a.promptCmd(),
		a.previewCmd(),
		a.publishCmd(),
	)
	return root
}

func newCLILogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		Level(level).With().Timestamp().Logger()
}

func defaultDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "sergis-author.db"
	}
	return filepath.Join(dir, "sergis-author", "games.db")
}

// withBackend открывает хранилище, выполняет fn и закрывает его.
func (a *app) withBackend(cmd *cobra.Command, fn func(ctx context.Context, backend storage.Backend) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), a.timeout)
	defer cancel()

	backend, err := a.openBackend(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := backend.Close(); err != nil {
			a.log.Warn().Err(err).Msg("Failed to close storage")
		}
	}()
	if err := backend.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize %s storage: %w", a.backendKind, err)
	}
	return fn(ctx, backend)
}

func (a *app) defaultBackend(ctx context.Context) (storage.Backend, error) {
	switch a.backendKind {
	case "local":
		store, err := a.openStore(ctx)
		if err != nil {
			return nil, err
		}
		a.log.Debug().Str("store", a.storeKind).Msg("Using local storage")
		return local.New(store), nil
	case "remote":
		zl := zap.NewNop()
		if a.verbose {
			if l, err := logger.New(logger.Config{Level: "debug", Encoding: "console", OutputPath: "stderr"}); err == nil {
				zl = l
			}
		}
		a.log.Debug().Str("server", a.server).Msg("Using remote storage")
		return remote.New(remote.Config{
			ServerURL:   a.server,
			Username:    a.username,
			Password:    a.password,
			Token:       a.token,
			DialTimeout: a.timeout,
		}, zl), nil
	default:
		return nil, fmt.Errorf("unknown backend %q (want local or remote)", a.backendKind)
	}
}

func (a *app) openStore(ctx context.Context) (local.Store, error) {
	switch a.storeKind {
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(a.dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
		return local.OpenSQLiteStore(ctx, a.dbPath)
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: a.redisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", a.redisAddr, err)
		}
		return local.NewRedisStore(client, "sergis-author:"), nil
	case "memory":
		return local.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store %q (want sqlite, redis or memory)", a.storeKind)
	}
}
