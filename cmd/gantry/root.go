package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/gantry"
	"github.com/aretw0/gantry/internal/adapters/file"
	"github.com/aretw0/gantry/internal/adapters/memory"
	"github.com/aretw0/gantry/internal/adapters/redis"
	"github.com/aretw0/gantry/internal/adapters/sqlite"
	"github.com/aretw0/gantry/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "gantry",
	Short: "Gantry is a lightweight pipeline runner",
	Long:  `Gantry runs CI pipelines defined as YAML workflows: independent jobs of ordered shell steps, triggered by push and pull request events.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("dir", ".gantry/workflows", "Directory containing workflow definitions")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("store", "file", "Run store backend (file, memory, redis, sqlite)")
	rootCmd.PersistentFlags().String("data-dir", ".gantry", "Base directory for file-backed runs and logs")
	rootCmd.PersistentFlags().String("redis-addr", "localhost:6379", "Redis address for the redis store")
	rootCmd.PersistentFlags().String("redis-password", "", "Redis password for the redis store")
	rootCmd.PersistentFlags().Int("redis-db", 0, "Redis database for the redis store")
	rootCmd.PersistentFlags().String("db", ".gantry/gantry.db", "SQLite database path for the sqlite store")
	rootCmd.PersistentFlags().StringSlice("label", nil, "Runner labels this instance accepts (empty accepts all)")
	rootCmd.PersistentFlags().Int("max-parallel", 0, "Maximum jobs running at once across runs (0 = unlimited)")
}

// buildEngine assembles an engine from the persistent flags. The returned
// cleanup closes backend connections and must be called before exit.
func buildEngine(cmd *cobra.Command, extra ...gantry.Option) (*gantry.Engine, func(), error) {
	dir, _ := cmd.Flags().GetString("dir")
	levelName, _ := cmd.Flags().GetString("log-level")
	storeKind, _ := cmd.Flags().GetString("store")
	dataDir, _ := cmd.Flags().GetString("data-dir")
	labels, _ := cmd.Flags().GetStringSlice("label")
	maxParallel, _ := cmd.Flags().GetInt("max-parallel")

	logger := logging.New(logging.ParseLevel(levelName))

	opts := []gantry.Option{
		gantry.WithLogger(logger),
		gantry.WithLogStore(file.NewLogStore(dataDir + "/logs")),
		gantry.WithLabels(labels...),
	}
	if maxParallel > 0 {
		opts = append(opts, gantry.WithMaxParallel(maxParallel))
	}

	cleanup := func() {}

	switch strings.ToLower(storeKind) {
	case "file":
		opts = append(opts, gantry.WithRunStore(file.New(dataDir+"/runs")))
	case "memory":
		opts = append(opts, gantry.WithRunStore(memory.New()), gantry.WithLogStore(memory.NewLogStore()))
	case "redis":
		addr, _ := cmd.Flags().GetString("redis-addr")
		password, _ := cmd.Flags().GetString("redis-password")
		db, _ := cmd.Flags().GetInt("redis-db")
		store := redis.New(addr, password, db)
		// A redis store can be shared by several replicas; lock runs across them.
		opts = append(opts,
			gantry.WithRunStore(store),
			gantry.WithDistributedLocker(store.Locker()),
		)
	case "sqlite":
		dsn, _ := cmd.Flags().GetString("db")
		store, err := sqlite.Open(cmd.Context(), dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		cleanup = func() { _ = store.Close() }
		opts = append(opts, gantry.WithRunStore(store))
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", storeKind)
	}

	opts = append(opts, extra...)

	engine, err := gantry.New(dir, opts...)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return engine, cleanup, nil
}
