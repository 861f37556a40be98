package cli

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/funvibe/typeprobe/internal/catalog"
	"github.com/funvibe/typeprobe/internal/diagnostics"
	"github.com/funvibe/typeprobe/internal/engine"
	"github.com/funvibe/typeprobe/internal/pipeline"
	"github.com/funvibe/typeprobe/internal/query"
	"github.com/funvibe/typeprobe/internal/report"
)

func newQueryCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "query <words...>",
		Short: "Run one CHECK or FIND query",
		Long: `Run one query and print one line per result.

  CHECK CLASS (name ...)
  CHECK INSTANCE_FIELD|STATIC_FIELD parent (name ...)
  CHECK INSTANCE_METHOD|STATIC_METHOD parent (name ...) [(paramType ...)]
  FIND (findType ...) [parent:](parent ...) [target:](target ...) [[params:](paramType ...)]

Words are joined with single spaces before parsing (--join concat joins
them with nothing in between).`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runQuery(cmd, args)
		},
	}
}

func (a *app) runQuery(cmd *cobra.Command, words []string) error {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}
	mode, err := query.ParseJoinMode(cfg.Join)
	if err != nil {
		return diagnostics.Wrap(diagnostics.ErrC002, cfg.Join, err, err.Error())
	}
	colorMode, err := report.ParseColorMode(cfg.Color)
	if err != nil {
		return diagnostics.Wrap(diagnostics.ErrC002, cfg.Color, err, err.Error())
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
	defer cancel()
	cat, err := LoadCatalog(ctx, cfg, a.logger)
	if err != nil {
		return err
	}

	q := query.Join(words, mode)
	reporter := report.New(report.NewWriterSink(a.stdout, colorMode))
	p := pipeline.New(
		&query.ParserProcessor{},
		&engine.ExecutionProcessor{
			Resolver: catalog.NewResolver(cat, catalog.WithLogger(a.logger)),
			Emit:     reporter.Report,
			Logger:   a.logger,
		},
	).WithLogger(a.logger)
	result := p.Run(pipeline.NewPipelineContext(q))

	a.logger.Info("query finished",
		zap.String("query", q),
		zap.Int("results", result.Emitted),
		zap.Int("errors", len(result.Errors)))
	return result.Err()
}
