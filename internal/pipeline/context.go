package pipeline

import (
	"github.com/funvibe/typeprobe/internal/arg"
	"github.com/funvibe/typeprobe/internal/diagnostics"
)

// Processor is a single stage of a query run.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// PipelineContext carries one query through parsing and execution.
type PipelineContext struct {
	// Query is the raw, already-joined query text.
	Query string

	// Args is the parsed argument tree, set by the parse stage.
	Args arg.Arg

	// Parsed reports whether Args holds a parse result.
	Parsed bool

	// Emitted counts the result lines produced by the execution stage.
	Emitted int

	Errors []*diagnostics.DiagnosticError
}

func NewPipelineContext(q string) *PipelineContext {
	return &PipelineContext{Query: q}
}

// Err returns the first recorded error, or nil.
func (c *PipelineContext) Err() error {
	if len(c.Errors) == 0 {
		return nil
	}
	return c.Errors[0]
}
