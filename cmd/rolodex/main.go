// Package main is the entry point for the rolodex CLI.
//
// rolodex is an in-process contact directory backed by a three-index
// in-memory store: a primary map for lookup by id, a sorted index for
// name-ordered traversal and range queries, and a bounded recency cache.
// Configuration is read from CLI flags and an optional YAML file.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/invopop/jsonschema"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"rolodex/internal/config"
	"rolodex/internal/contact"
	"rolodex/internal/directory"
	"rolodex/internal/memdb"
)

func main() {
	if err := mainImpl(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "rolodex: %v\n", err)
		os.Exit(1)
	}
}

func mainImpl() error {
	version := flag.Bool("version", false, "Print version and exit")
	schema := flag.Bool("schema", false, "Print the contact record JSON Schema and exit")
	configPath := flag.String("config", "rolodex.yml", "Path to the YAML configuration file")
	logLevel := flag.String("log-level", "", "Log level override (debug, info, warn, error)")
	cacheSize := flag.Int("cache-size", 0, "Recency cache capacity override")
	flag.Parse()
	if len(flag.Args()) > 0 {
		return fmt.Errorf("unknown arguments: %v", flag.Args())
	}

	if *version {
		printVersion()
		return nil
	}
	if *schema {
		return printSchema(os.Stdout)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *cacheSize > 0 {
		cfg.CacheSize = *cacheSize
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}

	ll := &slog.LevelVar{}
	ll.Set(level)
	logger := slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:      ll,
		TimeFormat: "15:04:05.000", // Like time.TimeOnly plus milliseconds.
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	}))
	slog.SetDefault(logger)

	if err := watchConfig(ctx, *configPath, ll); err != nil {
		slog.Warn("Config watch unavailable", "path", *configPath, "error", err)
	}

	store := memdb.New[*contact.Contact](cfg.CacheSize)
	svc := directory.New(store, logger)
	for i := range cfg.Seed {
		c := cfg.Seed[i]
		if err := svc.Add(&c); err != nil {
			slog.Warn("Skipping seed contact", "id", c.ID, "error", err)
		}
	}
	slog.Info("Directory ready", "contacts", svc.Count(), "cacheSize", cfg.CacheSize)

	return runREPL(ctx, os.Stdin, os.Stdout, svc)
}

// printSchema writes the JSON Schema describing the contact record.
func printSchema(w io.Writer) error {
	s := jsonschema.Reflect(&contact.Contact{})
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal schema: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}

// watchConfig watches the configuration file and re-applies the log level
// when it changes, so verbosity can be adjusted without a restart.
func watchConfig(ctx context.Context, path string, ll *slog.LevelVar) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(path); err != nil {
		_ = w.Close()
		return err
	}
	go func() {
		defer func() { _ = w.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Chmod) {
					cfg, err := config.Load(path)
					if err != nil {
						slog.WarnContext(ctx, "Ignoring config change", "error", err)
						continue
					}
					level, err := config.ParseLevel(cfg.LogLevel)
					if err != nil {
						continue
					}
					if level != ll.Level() {
						ll.Set(level)
						slog.InfoContext(ctx, "Log level updated", "level", level)
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.WarnContext(ctx, "Error watching config", "error", err)
			}
		}
	}()
	return nil
}

func printVersion() {
	version, goVersion, revision, dirty := getBuildInfo()
	fmt.Printf("rolodex %s\n", version)
	fmt.Printf("  Go version: %s\n", goVersion)
	fmt.Printf("  Revision:   %s\n", revision)
	if dirty {
		fmt.Printf("  Modified:   true\n")
	}
}

func getBuildInfo() (version, goVersion, revision string, dirty bool) {
	version = "unknown"
	goVersion = "unknown"
	revision = "unknown"
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	version = info.Main.Version
	if version == "" || version == "(devel)" {
		version = "dev"
	}
	goVersion = info.GoVersion
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			dirty = setting.Value == "true"
		}
	}
	return
}
