package cmd

import (
	"context"
	"fmt"
	"time"

	"binary-metadata/core/config"
	"binary-metadata/core/database"
	"binary-metadata/core/descriptor"
	"binary-metadata/core/logger"
	"binary-metadata/core/metadata"
	"binary-metadata/core/storage"
	"binary-metadata/feature/document"
	"binary-metadata/feature/exiftool"
	"binary-metadata/feature/filters"

	"go.uber.org/zap"
)

// runtime bundles the metadata components built from configuration.
type runtime struct {
	cfg      *config.Config
	logger   *zap.Logger
	regs     *descriptor.Registries
	engine   *metadata.Engine
	warnings []string
}

// processorFactories maps descriptor processor types to constructors.
func processorFactories(cfg *config.Config, l *zap.Logger) map[string]descriptor.ProcessorFactory {
	return map[string]descriptor.ProcessorFactory{
		exiftool.ProcessorType: exiftool.Factory(cfg.ExifTool, nil, l),
	}
}

// loadRuntime loads configuration, the logger and the descriptor file, and
// wires the metadata engine.
func loadRuntime() (*runtime, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return buildRuntime(cfg, logg)
}

func buildRuntime(cfg *config.Config, logg *zap.Logger) (*runtime, error) {
	file, err := descriptor.LoadFile(cfg.Metadata.DescriptorFile)
	if err != nil {
		return nil, err
	}

	warnings, _ := file.Validate()
	for _, w := range warnings {
		logg.Warn("Descriptor warning", zap.String("detail", w))
	}

	regs, err := descriptor.Build(file, processorFactories(cfg, logg))
	if err != nil {
		return nil, err
	}

	cache := metadata.NewExtractCache(time.Duration(cfg.Metadata.CacheTTLSeconds) * time.Second)
	checker := filters.NewChecker(file.Filters, logg)
	resolver := metadata.NewRuleResolver(regs.Rules, regs.Mappings, checker, logg)
	engine := metadata.NewEngine(regs.Mappings, resolver, metadata.NewInvoker(regs.Processors, cache), logg,
		metadata.Options{AbortOnError: cfg.Metadata.AbortOnError})

	logg.Info("Metadata descriptors loaded",
		zap.String("file", cfg.Metadata.DescriptorFile),
		zap.Strings("processors", regs.Processors.IDs()),
		zap.Int("mappings", regs.Mappings.Len()),
		zap.Int("rules", regs.Rules.Len()),
		zap.Int("filters", checker.Len()),
	)

	return &runtime{cfg: cfg, logger: logg, regs: regs, engine: engine, warnings: warnings}, nil
}

// documentService connects the database and object storage and builds the
// document service.
func (rt *runtime) documentService(ctx context.Context) (*document.Service, error) {
	db, err := database.Connect(rt.cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("database connection required: %w", err)
	}

	client, err := storage.NewClient(rt.cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	if err := storage.EnsureBucket(ctx, client, rt.cfg.Storage.Bucket, rt.cfg.Storage.Region); err != nil {
		return nil, err
	}

	store := document.NewStore(db, document.NewBlobStore(client, rt.cfg.Storage.Bucket), rt.logger)
	if err := store.Migrate(ctx); err != nil {
		return nil, err
	}
	if missing, err := store.MissingColumns(); err != nil {
		rt.logger.Warn("Documents schema inspection failed", zap.Error(err))
	} else if len(missing) > 0 {
		return nil, fmt.Errorf("documents table is missing columns %v", missing)
	}

	svc := document.NewService(store, rt.engine, rt.regs.Rules,
		document.Options{Strict: rt.cfg.Metadata.AbortOnError}, rt.logger)
	return svc, nil
}
