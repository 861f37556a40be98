package engine

import (
	"errors"

	"go.uber.org/zap"

	"github.com/funvibe/typeprobe/internal/diagnostics"
	"github.com/funvibe/typeprobe/internal/pipeline"
)

// ExecutionProcessor runs the parsed query and hands each result to Emit.
type ExecutionProcessor struct {
	Resolver TypeResolver
	Emit     func(Result) error
	Logger   *zap.Logger
}

func (ep *ExecutionProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if !ctx.Parsed || len(ctx.Errors) > 0 {
		return ctx
	}

	emit := func(r Result) error {
		if err := ep.Emit(r); err != nil {
			return diagnostics.Wrap(diagnostics.ErrC003, "", err, err.Error())
		}
		ctx.Emitted++
		return nil
	}

	err := New(ep.Resolver, emit, WithLogger(ep.Logger)).Execute(ctx.Args)
	if err == nil {
		return ctx
	}

	var d *diagnostics.DiagnosticError
	if !errors.As(err, &d) {
		d = diagnostics.Wrap(diagnostics.ErrC003, "", err, err.Error())
	}
	ctx.Errors = append(ctx.Errors, d)
	return ctx
}
