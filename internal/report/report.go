// Package report renders query results as human readable lines.
package report

import (
	"fmt"

	"github.com/funvibe/typeprobe/internal/catalog"
	"github.com/funvibe/typeprobe/internal/engine"
)

const (
	bullet      = " * "
	greenBullet = " \033[32m*\033[0m "
	redBullet   = " \033[31m*\033[0m "
)

// Reporter turns results into lines on a Sink, one line per result.
type Reporter struct {
	sink  Sink
	color bool
}

type Option func(*Reporter)

// WithColor forces colored bullets on or off. By default the reporter
// colors only when the sink is a WriterSink that does.
func WithColor(on bool) Option {
	return func(r *Reporter) { r.color = on }
}

func New(sink Sink, opts ...Option) *Reporter {
	r := &Reporter{sink: sink}
	if ws, ok := sink.(*WriterSink); ok {
		r.color = ws.Color()
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Report writes the line for result. It has the signature engine
// emitters expect.
func (r *Reporter) Report(result engine.Result) error {
	line, positive := Format(result)
	prefix := bullet
	if r.color {
		prefix = redBullet
		if positive {
			prefix = greenBullet
		}
	}
	return r.sink.WriteLine(prefix + line)
}

// Format renders result without its bullet. positive is false for
// "does not exist" answers.
func Format(result engine.Result) (line string, positive bool) {
	switch res := result.(type) {
	case engine.ClassExistence:
		if res.Exists {
			return fmt.Sprintf("Class %s exists.", res.Name), true
		}
		return fmt.Sprintf("Class %s does not exist.", res.Name), false

	case engine.FieldExistence:
		kind := memberKind(res.Static)
		switch res.Status {
		case engine.FieldExists:
			return fmt.Sprintf("%s field '%s' exists.", kind, res.Name), true
		case engine.FieldWrongKind:
			return fmt.Sprintf("%s field '%s' does not exist (found %s field with same name).",
				kind, res.Name, lowerKind(!res.Static)), false
		}
		return fmt.Sprintf("%s field '%s' does not exist.", kind, res.Name), false

	case engine.MethodExistence:
		sig := fmt.Sprintf("%s#%s(%s)", res.Owner.Name, res.Name, catalog.JoinNames(res.Params))
		if res.Exists {
			return fmt.Sprintf("%s method '%s' exists.", memberKind(res.Static), sig), true
		}
		return fmt.Sprintf("%s method '%s' does not exist.", memberKind(res.Static), sig), false

	case engine.FoundField:
		return fmt.Sprintf("Found %s field: %s#%s (Type: %s)",
			lowerKind(res.Field.Static), res.Parent.Name, res.Field.Name, res.Field.Type.Name), true

	case engine.FoundMethod:
		return fmt.Sprintf("Found %s method: %s#%s(%s) -> %s",
			lowerKind(res.Method.Static), res.Parent.Name, res.Method.Name,
			res.Method.ParamNames(), res.Method.Return.Name), true
	}
	return fmt.Sprintf("%v", result), true
}

func memberKind(static bool) string {
	if static {
		return "Static"
	}
	return "Instance"
}

func lowerKind(static bool) string {
	if static {
		return "static"
	}
	return "instance"
}
