package cli

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/funvibe/typeprobe/internal/catalog"
	"github.com/funvibe/typeprobe/internal/config"
	"github.com/funvibe/typeprobe/internal/diagnostics"
)

// LoadCatalog opens every source of cfg. Several sources are chained in
// order, so the first source knowing a name owns it.
func LoadCatalog(ctx context.Context, cfg *config.Config, logger *zap.Logger) (catalog.Catalog, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cats := make([]catalog.Catalog, 0, len(cfg.Sources))
	for i := range cfg.Sources {
		src := &cfg.Sources[i]
		cat, err := loadSource(ctx, cfg, src, logger)
		if err != nil {
			return nil, diagnostics.Wrap(diagnostics.ErrC001, src.Kind(), err, src.Kind(), err.Error())
		}
		logger.Debug("catalog loaded", zap.Int("source", i), zap.String("kind", src.Kind()))
		cats = append(cats, cat)
	}
	if len(cats) == 1 {
		return cats[0], nil
	}
	return catalog.NewChain(cats...), nil
}

func loadSource(ctx context.Context, cfg *config.Config, src *config.Source, logger *zap.Logger) (catalog.Catalog, error) {
	switch src.Kind() {
	case config.SourceGo:
		dir := cfg.Abs(src.Dir)
		if dir == "" {
			dir = cfg.Dir
		}
		var flags []string
		if len(src.Tags) > 0 {
			flags = append(flags, "-tags="+strings.Join(src.Tags, ","))
		}
		opts := catalog.GoOptions{
			Dir:        dir,
			Patterns:   src.Go,
			Tests:      src.Tests,
			BuildFlags: flags,
			Logger:     logger,
		}
		g, err := catalog.LoadGo(ctx, opts)
		if err != nil {
			return nil, err
		}
		return g, nil

	case config.SourceIndex:
		m, err := catalog.LoadIndex(cfg.Abs(src.Index))
		if err != nil {
			return nil, err
		}
		return m, nil

	case config.SourceSQLite:
		m, err := catalog.LoadSQLite(ctx, cfg.Abs(src.SQLite))
		if err != nil {
			return nil, err
		}
		return m, nil

	case config.SourceProto:
		// Proto files are named relative to the import paths.
		paths := make([]string, 0, len(src.ImportPaths))
		for _, p := range src.ImportPaths {
			paths = append(paths, cfg.Abs(p))
		}
		if len(paths) == 0 && cfg.Dir != "" {
			paths = append(paths, cfg.Dir)
		}
		p, err := catalog.LoadProto(catalog.ProtoOptions{
			Files:       src.Proto,
			ImportPaths: paths,
			Logger:      logger,
		})
		if err != nil {
			return nil, err
		}
		return p, nil

	case config.SourceGRPC:
		p, err := catalog.LoadGRPC(ctx, src.GRPC)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
	return nil, diagnostics.NewError(diagnostics.ErrC002, "", "source without a kind")
}

