// Package cli implements the typeprobe command line.
package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/funvibe/typeprobe/internal/config"
	"github.com/funvibe/typeprobe/internal/diagnostics"
)

// Version is the release version.
// Can be set at build time using: -ldflags "-X github.com/funvibe/typeprobe/pkg/cli.Version=v1.2.3"
var Version = "dev"

type app struct {
	stdout io.Writer
	stderr io.Writer

	verbose bool
	color   string
	logger  *zap.Logger
	runID   string

	configPath  string
	goPatterns  []string
	goDir       string
	goTests     bool
	indexFiles  []string
	sqliteFiles []string
	protoFiles  []string
	protoPaths  []string
	grpcTargets []string
	join        string
	timeout     time.Duration
}

// Main runs the command line with args (without the program name) and
// returns the process exit status.
func Main(args []string, stdout, stderr io.Writer) int {
	return run(&app{stdout: stdout, stderr: stderr}, args)
}

func run(a *app, args []string) int {
	root := newRootCommand(a)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		if a.logger != nil {
			a.logger.Error("command failed",
				zap.String("code", string(diagnostics.CodeOf(err))),
				zap.Error(err))
		}
		fmt.Fprintf(a.stderr, "Error: %s\n", message(err))
		return 1
	}
	return 0
}

// message strips the code prefix from diagnostics; other errors print as is.
func message(err error) string {
	var d *diagnostics.DiagnosticError
	if errors.As(err, &d) {
		return d.Message
	}
	return err.Error()
}

func newRootCommand(a *app) *cobra.Command {
	presetLogger := a.logger != nil

	root := &cobra.Command{
		Use:   "typeprobe",
		Short: "Probe a type universe for classes, fields and methods",
		Long: `typeprobe answers CHECK and FIND queries about the types of a catalog:
Go packages, Protocol Buffers schemas, a live gRPC server, or a saved snapshot.

  typeprobe query --go ./... CHECK CLASS '(example.com/shop.Item)'
  typeprobe query --proto store.proto FIND '(INSTANCE_FIELD)' 'parent:(store.v1.Order)' 'target:(string)'`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.runID = uuid.NewString()
			if presetLogger {
				return nil
			}

			// Initialize logger
			cfg := zap.NewProductionConfig()
			if a.verbose {
				cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			logger, err := cfg.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.logger = logger.With(zap.String("run", a.runID))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	pf := root.PersistentFlags()
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	pf.StringVar(&a.color, "color", config.DefaultColor, "Color output: auto, always or never")
	pf.StringVarP(&a.configPath, "config", "c", "", "Path to typeprobe.yaml (default: search upward from the working directory)")
	pf.StringSliceVar(&a.goPatterns, "go", nil, "Go package patterns to load")
	pf.StringVar(&a.goDir, "go-dir", "", "Directory the go command runs in")
	pf.BoolVar(&a.goTests, "go-tests", false, "Include test variants of Go packages")
	pf.StringSliceVar(&a.indexFiles, "index", nil, "YAML snapshot files")
	pf.StringSliceVar(&a.sqliteFiles, "sqlite", nil, "SQLite snapshot files")
	pf.StringSliceVar(&a.protoFiles, "proto", nil, ".proto files, relative to the proto paths")
	pf.StringSliceVar(&a.protoPaths, "proto-path", nil, "Proto import paths")
	pf.StringSliceVar(&a.grpcTargets, "grpc", nil, "gRPC servers with reflection enabled")
	pf.StringVar(&a.join, "join", config.DefaultJoin, "How query words are joined: space or concat")
	pf.DurationVar(&a.timeout, "timeout", config.DefaultTimeout, "Catalog loading timeout")

	root.AddCommand(newQueryCommand(a))
	root.AddCommand(newIndexCommand(a))
	root.AddCommand(newVersionCommand(a))
	return root
}

func newVersionCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(a.stdout, "typeprobe %s\n", Version)
			return err
		},
	}
}

// loadConfig builds the effective configuration. Source flags replace the
// sources of any config file; --join, --color and --timeout override it
// when given.
func (a *app) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	if srcs := a.flagSources(); len(srcs) > 0 {
		cfg = &config.Config{
			Sources: srcs,
			Join:    config.DefaultJoin,
			Color:   config.DefaultColor,
			Timeout: config.DefaultTimeout,
		}
	} else {
		path := a.configPath
		if path == "" {
			found, err := config.FindConfig(".")
			if err != nil {
				return nil, diagnostics.Wrap(diagnostics.ErrC002, "", err, err.Error())
			}
			path = found
		}
		if path == "" {
			return nil, diagnostics.NewError(diagnostics.ErrC002, "",
				"no catalog sources: pass --go, --index, --sqlite, --proto or --grpc, or add "+config.ConfigFileName)
		}
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, diagnostics.Wrap(diagnostics.ErrC002, path, err, err.Error())
		}
		a.logger.Debug("using config", zap.String("path", path))
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("join") {
		cfg.Join = a.join
	}
	if flags.Changed("color") {
		cfg.Color = a.color
	}
	if flags.Changed("timeout") {
		cfg.Timeout = a.timeout
	}
	return cfg, nil
}

func (a *app) flagSources() []config.Source {
	var srcs []config.Source
	if len(a.goPatterns) > 0 || a.goDir != "" {
		patterns := a.goPatterns
		if len(patterns) == 0 {
			patterns = []string{"./..."}
		}
		srcs = append(srcs, config.Source{Go: patterns, Dir: a.goDir, Tests: a.goTests})
	}
	for _, f := range a.indexFiles {
		srcs = append(srcs, config.Source{Index: f})
	}
	for _, f := range a.sqliteFiles {
		srcs = append(srcs, config.Source{SQLite: f})
	}
	if len(a.protoFiles) > 0 {
		srcs = append(srcs, config.Source{Proto: a.protoFiles, ImportPaths: a.protoPaths})
	}
	for _, target := range a.grpcTargets {
		srcs = append(srcs, config.Source{GRPC: target})
	}
	return srcs
}
