// Package probe runs typeprobe queries in-process.
//
// A host registers its own Go types under query names and asks about them
// at run time:
//
//	p := probe.New()
//	p.Register("shop.Item", Item{})
//	lines, err := p.Lines("CHECK INSTANCE_FIELD shop.Item (Name Price)")
//
// Other catalogs (a saved index, a proto schema) can be added with Use.
// Registered types win over those catalogs when both know a name.
package probe

import (
	"io"
	"sync"

	"github.com/viant/xreflect"
	"go.uber.org/zap"

	"github.com/funvibe/typeprobe/internal/catalog"
	"github.com/funvibe/typeprobe/internal/engine"
	"github.com/funvibe/typeprobe/internal/pipeline"
	"github.com/funvibe/typeprobe/internal/query"
	"github.com/funvibe/typeprobe/internal/report"
)

// Probe holds the types a host has registered. It is safe for concurrent
// use; queries run one at a time.
type Probe struct {
	mu       sync.Mutex
	runtime  *catalog.Runtime
	catalogs []Catalog
	color    ColorMode
	logger   *zap.Logger
}

type Option func(*Probe)

// WithLogger traces resolution and execution to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Probe) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithRegistry shares an existing xreflect registry. Its types resolve
// by the names they were registered under.
func WithRegistry(registry *xreflect.Types) Option {
	return func(p *Probe) {
		p.runtime = catalog.NewRuntime(registry)
	}
}

// WithColor sets how Query colors its bullets; the default is ColorAuto.
func WithColor(mode ColorMode) Option {
	return func(p *Probe) { p.color = mode }
}

// New creates a probe with no registered types.
func New(opts ...Option) *Probe {
	p := &Probe{
		color:  report.ColorAuto,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.runtime == nil {
		p.runtime = catalog.NewRuntime(nil)
	}
	return p
}

// Register makes the type of v known as name. v may be a value, a nil
// pointer (registering the pointed-to type) or a reflect.Type.
func (p *Probe) Register(name string, v any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.runtime.Register(name, v)
}

// Use appends cat to the catalogs consulted after the registered types.
func (p *Probe) Use(cat Catalog) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.catalogs = append(p.catalogs, cat)
}

// Query runs q and writes one line per result to w. Lines written before
// a fatal error stay written.
func (p *Probe) Query(q string, w io.Writer) error {
	return p.run(q, report.NewWriterSink(w, p.color))
}

// Lines runs q and returns the result lines, uncolored. On a fatal error
// the lines produced before it are returned with the error.
func (p *Probe) Lines(q string) ([]string, error) {
	sink := &report.Lines{}
	err := p.run(q, sink)
	return sink.Lines(), err
}

func (p *Probe) run(q string, sink report.Sink) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var cat Catalog = p.runtime
	if len(p.catalogs) > 0 {
		cat = catalog.NewChain(append([]Catalog{p.runtime}, p.catalogs...)...)
	}
	reporter := report.New(sink)
	pl := pipeline.New(
		&query.ParserProcessor{},
		&engine.ExecutionProcessor{
			Resolver: catalog.NewResolver(cat, catalog.WithLogger(p.logger)),
			Emit:     reporter.Report,
			Logger:   p.logger,
		},
	).WithLogger(p.logger)
	result := pl.Run(pipeline.NewPipelineContext(q))
	p.logger.Debug("probe query finished", zap.String("query", q), zap.Int("results", result.Emitted))
	return result.Err()
}
