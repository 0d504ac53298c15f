package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/syssam/neogql/compiler/gen"
	"github.com/syssam/neogql/compiler/load"
	"github.com/syssam/neogql/contrib/graphql"
)

// generateOptions holds the flags of the generate command.
type generateOptions struct {
	config  string
	schemas []string
	out     string
	watch   bool
}

var genOpts generateOptions

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the filterable GraphQL schema",
	Long:  `Load the SDL files of neogql.yml, resolve the @filterable visibility of every field and write the generated schema, and the Go filter models when configured.`,
	Example: `neogql generate -c neogql.yml
neogql generate --schema schema/*.graphql --out generated/schema.graphql --watch`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		err = generate(ctx, genOpts, logger)
		if !genOpts.watch {
			return err
		}
		if err != nil {
			logger.Error("generation failed", zap.Error(err))
		}
		return watch(ctx, genOpts, logger)
	},
}

// loadConfig loads the configuration file and applies the flag overrides.
// Flag paths are relative to the working directory.
func loadConfig(opts generateOptions) (*graphql.Config, error) {
	cfg, err := graphql.LoadConfig(opts.config)
	if err != nil {
		return nil, err
	}
	for _, s := range opts.schemas {
		abs, err := filepath.Abs(s)
		if err != nil {
			return nil, err
		}
		cfg.AddSchemaPath(abs)
	}
	if opts.out != "" {
		abs, err := filepath.Abs(opts.out)
		if err != nil {
			return nil, err
		}
		cfg.Output = abs
	}
	if len(cfg.Schema) == 0 {
		return nil, fmt.Errorf("no schema files: set schema in %s or pass --schema", opts.config)
	}
	return cfg, nil
}

// target returns the graph target directory: the models directory when
// models are enabled, the schema directory otherwise.
func target(cfg *graphql.Config) string {
	if cfg.Models.Enabled() {
		return filepath.Dir(cfg.Path(cfg.Models.Filename))
	}
	out := cfg.OutputPath()
	if filepath.Ext(out) != ".graphql" {
		return out
	}
	return filepath.Dir(out)
}

// generate runs one generation.
func generate(ctx context.Context, opts generateOptions, logger *zap.Logger) error {
	start := time.Now()
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	ex, err := graphql.NewExtension(graphql.WithConfig(cfg), graphql.WithLogger(logger))
	if err != nil {
		return err
	}
	s, err := load.ParseFiles(cfg.SchemaPatterns()...)
	if err != nil {
		return err
	}
	options := append(ex.Options(), gen.WithTarget(target(cfg)), gen.WithWorkers(cfg.Workers))
	if cfg.Models.Package != "" {
		options = append(options, gen.WithPackage(cfg.Models.Package))
	}
	c, err := gen.NewConfig(options...)
	if err != nil {
		return err
	}
	g, err := gen.NewGraph(c, s)
	if err != nil {
		return err
	}
	if err := ex.Generate(ctx, g); err != nil {
		return err
	}
	logger.Info("generation finished", zap.Duration("took", time.Since(start)))
	return nil
}

// watch re-runs generate whenever a schema file or the configuration
// changes, until ctx is done. Failed runs are logged and watching goes on.
func watch(ctx context.Context, opts generateOptions, logger *zap.Logger) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	ex, err := graphql.NewExtension(graphql.WithConfig(cfg))
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	dirs := map[string]bool{filepath.Dir(opts.config): true}
	for _, p := range cfg.SchemaPatterns() {
		dirs[filepath.Dir(p)] = true
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	output, _ := filepath.Abs(ex.SchemaPath(target(cfg)))
	config, _ := filepath.Abs(opts.config)
	logger.Info("watching for changes", zap.Int("dirs", len(dirs)))

	// Editors emit several events per save. Runs are debounced.
	const debounce = 100 * time.Millisecond
	timer := time.NewTimer(debounce)
	timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", zap.Error(err))
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			name, _ := filepath.Abs(ev.Name)
			if name == output || ev.Op == fsnotify.Chmod {
				continue
			}
			if name != config && !strings.HasSuffix(name, ".graphql") && !strings.HasSuffix(name, ".graphqls") {
				continue
			}
			logger.Debug("schema changed", zap.String("file", ev.Name), zap.Stringer("op", ev.Op))
			timer.Reset(debounce)
		case <-timer.C:
			if err := generate(ctx, opts, logger); err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				logger.Error("generation failed", zap.Error(err))
			}
		}
	}
}

func init() {
	generateCmd.Flags().StringVarP(&genOpts.config, "config", "c", graphql.DefaultConfigFilename, "Path of the neogql configuration file")
	generateCmd.Flags().StringArrayVar(&genOpts.schemas, "schema", nil, "SDL file or glob pattern to load, repeatable")
	generateCmd.Flags().StringVar(&genOpts.out, "out", "", "Output path of the generated schema, a directory or a .graphql file")
	generateCmd.Flags().BoolVarP(&genOpts.watch, "watch", "w", false, "Regenerate when a schema file changes")
	rootCmd.AddCommand(generateCmd)
}
