package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/linemark/internal/app"
	"github.com/MrSnakeDoc/linemark/internal/config"
	"github.com/MrSnakeDoc/linemark/internal/index"
	"github.com/MrSnakeDoc/linemark/internal/logger"
	"github.com/MrSnakeDoc/linemark/internal/scheduler"
	redisstore "github.com/MrSnakeDoc/linemark/internal/store/redis"
	"github.com/MrSnakeDoc/linemark/internal/tree"
)

var (
	dumpFormat string
	dumpRaw    bool
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the persisted bookmarks",
	Long: `Load the bookmarks saved in Redis and print them without starting the server.

By default the output is the directory tree an editor would show. --raw prints
the stored records instead, after the same validation and orphan repair as a
server start.

Examples:
  linemark dump
  linemark dump --format json
  linemark dump --raw`,
	Args: cobra.NoArgs,
	RunE: runDump,
}

func init() {
	rootCmd.AddCommand(dumpCmd)

	dumpCmd.Flags().StringVarP(&dumpFormat, "format", "f", "yaml", "Output format: yaml or json")
	dumpCmd.Flags().BoolVar(&dumpRaw, "raw", false, "Print records instead of the tree")
}

func runDump(cmd *cobra.Command, args []string) error {
	if dumpFormat != "yaml" && dumpFormat != "json" {
		return fmt.Errorf("unknown format %q (want yaml or json)", dumpFormat)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	log := logger.New(cfg.LogLevel, cfg.PrettyLog)
	defer func() { _ = log.Sync() }()

	ctx := cmd.Context()
	client, err := app.Connect(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer client.Close()

	idx := index.NewMemoryIndex(log)
	store := redisstore.NewStore(client, cfg.KeyPrefix, log)
	if err := scheduler.NewRedisSyncer(store, idx, log).Sync(ctx); err != nil {
		return err
	}

	var out any
	if dumpRaw {
		out = redisstore.Snapshot{
			Bookmarks:   idx.ListBookmarks(),
			Directories: idx.ListDirectories(),
		}
	} else {
		out = tree.New(idx, log).Roots()
	}
	return encode(cmd.OutOrStdout(), dumpFormat, out)
}

func encode(w io.Writer, format string, v any) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
