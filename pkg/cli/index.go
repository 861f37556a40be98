package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/funvibe/typeprobe/internal/catalog"
	"github.com/funvibe/typeprobe/internal/config"
	"github.com/funvibe/typeprobe/internal/diagnostics"
)

func newIndexCommand(a *app) *cobra.Command {
	var (
		out   string
		types []string
	)
	cmd := &cobra.Command{
		Use:   "index --out <file.yaml|file.db>",
		Short: "Snapshot the catalog into a YAML or SQLite index",
		Long: `Export the types of the configured sources, with their supertypes,
fields and methods, into an index that later runs load with --index or --sqlite.
Without --type every type the sources enumerate is exported.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runIndex(cmd, out, types)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (.yaml, .yml, .db or .sqlite)")
	cmd.Flags().StringSliceVar(&types, "type", nil, "Type names to export (default: all)")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func (a *app) runIndex(cmd *cobra.Command, out string, types []string) error {
	ext := strings.ToLower(filepath.Ext(out))
	switch ext {
	case ".yaml", ".yml", ".db", ".sqlite":
	default:
		return diagnostics.NewError(diagnostics.ErrC002, out,
			fmt.Sprintf("unsupported index file %q (want .yaml, .yml, .db or .sqlite)", out))
	}

	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
	defer cancel()
	cat, err := LoadCatalog(ctx, cfg, a.logger)
	if err != nil {
		return err
	}

	names := types
	if len(names) == 0 {
		e, ok := cat.(catalog.Enumerator)
		if !ok {
			return diagnostics.NewError(diagnostics.ErrC002, "", "the sources cannot list their types; pass --type")
		}
		names = e.TypeNames()
	}
	idx, err := catalog.Export(cat, names)
	if err != nil {
		return diagnostics.Wrap(diagnostics.ErrC002, "", err, err.Error())
	}
	idx.Source = describeSources(cfg)

	if ext == ".db" || ext == ".sqlite" {
		err = catalog.WriteSQLite(ctx, out, idx)
	} else {
		err = catalog.WriteIndex(out, idx)
	}
	if err != nil {
		return diagnostics.Wrap(diagnostics.ErrC003, out, err, err.Error())
	}

	a.logger.Info("index written", zap.String("out", out), zap.Int("types", len(idx.Types)))
	_, err = fmt.Fprintf(a.stdout, "Wrote %d types to %s\n", len(idx.Types), out)
	return err
}

func describeSources(cfg *config.Config) string {
	parts := make([]string, 0, len(cfg.Sources))
	for _, src := range cfg.Sources {
		switch src.Kind() {
		case config.SourceGo:
			parts = append(parts, "go:"+strings.Join(src.Go, ","))
		case config.SourceIndex:
			parts = append(parts, "index:"+src.Index)
		case config.SourceSQLite:
			parts = append(parts, "sqlite:"+src.SQLite)
		case config.SourceProto:
			parts = append(parts, "proto:"+strings.Join(src.Proto, ","))
		case config.SourceGRPC:
			parts = append(parts, "grpc:"+src.GRPC)
		}
	}
	return strings.Join(parts, " ")
}
