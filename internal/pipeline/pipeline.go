// Package pipeline runs one query through its stages: parsing, then execution.
package pipeline

import (
	"fmt"

	"go.uber.org/zap"
)

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
	logger     *zap.Logger
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors, logger: zap.NewNop()}
}

// WithLogger traces every stage at debug level.
func (p *Pipeline) WithLogger(logger *zap.Logger) *Pipeline {
	if logger != nil {
		p.logger = logger
	}
	return p
}

// Run executes the pipeline. Every stage runs; each one looks at the errors
// of earlier stages and decides itself whether to skip.
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	for i, processor := range p.processors {
		ctx = processor.Process(ctx)
		p.logger.Debug("stage finished",
			zap.Int("stage", i),
			zap.String("processor", fmt.Sprintf("%T", processor)),
			zap.Bool("parsed", ctx.Parsed),
			zap.Int("emitted", ctx.Emitted),
			zap.Int("errors", len(ctx.Errors)))
	}
	return ctx
}
