package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nao1215/searchcrawl/internal/config"
	"github.com/nao1215/searchcrawl/internal/crawler"
	"github.com/nao1215/searchcrawl/internal/database"
	"github.com/nao1215/searchcrawl/internal/media"
	"github.com/nao1215/searchcrawl/internal/search"
	"github.com/nao1215/searchcrawl/internal/transport"
)

// app holds the components shared by serve and crawl.
type app struct {
	db           *database.CrawlDB
	assets       *media.Store
	index        *search.Index
	engine       *search.Engine
	orchestrator *crawler.Orchestrator
}

// openApp opens the store and wires the crawl pipeline on top of it.
func openApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	if cfg.ProxyAddress != "" {
		if err := transport.CheckProxy(ctx, cfg.ProxyAddress); err != nil {
			return nil, fmt.Errorf("proxy check failed (make sure a SOCKS5 proxy is running at %s): %w", cfg.ProxyAddress, err)
		}
		logger.Info("SOCKS5 proxy verified", "address", cfg.ProxyAddress)
	}

	pageClient, err := transport.NewHTTPClient(transport.Options{
		Timeout:      cfg.RenderTimeout,
		ProxyAddress: cfg.ProxyAddress,
		UserAgent:    cfg.UserAgent,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create page client: %w", err)
	}
	assetClient, err := transport.NewHTTPClient(transport.Options{
		Timeout:      cfg.AssetTimeout,
		ProxyAddress: cfg.ProxyAddress,
		UserAgent:    cfg.UserAgent,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create asset client: %w", err)
	}

	db, err := database.Open(cfg.DataDir, database.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	logger.Info("database opened", "path", db.Path())

	assets, err := media.NewStore(db, cfg.ImagesDir(), cfg.VideosDir(),
		media.WithHTTPClient(assetClient),
		media.WithTimeout(cfg.AssetTimeout),
		media.WithMaxSize(cfg.MaxAssetSize),
		media.WithLogger(logger),
	)
	if err != nil {
		return nil, errors.Join(err, db.Close())
	}

	index := search.NewIndex(db, search.WithLogger(logger))
	orchestrator := crawler.NewOrchestrator(db, assets, index,
		crawler.HTTPRendererFactory(pageClient, crawler.WithMaxBodySize(cfg.MaxBodySize)),
		crawler.WithSeeds(cfg.Seeds),
		crawler.WithMaxDepth(cfg.MaxDepth),
		crawler.WithLogger(logger),
	)

	return &app{
		db:           db,
		assets:       assets,
		index:        index,
		engine:       search.NewEngine(index, db),
		orchestrator: orchestrator,
	}, nil
}

// Close releases the store.
func (a *app) Close() error {
	return a.db.Close()
}
