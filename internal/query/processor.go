package query

import (
	"github.com/funvibe/typeprobe/internal/diagnostics"
	"github.com/funvibe/typeprobe/internal/pipeline"
)

type ParserProcessor struct{}

func (pp *ParserProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Query == "" {
		ctx.Errors = append(ctx.Errors, diagnostics.NewError(diagnostics.ErrQ003, "", "empty query"))
		return ctx
	}

	ctx.Args = Parse(ctx.Query)
	ctx.Parsed = true
	return ctx
}
