package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"sumbot/internal/ai"
	"sumbot/internal/config"
	"sumbot/internal/fetcher"
	"sumbot/internal/history"
	server "sumbot/internal/http"
	"sumbot/internal/search"
	"sumbot/internal/services"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	flag.Parse()

	cfg := config.Load(*configPath)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{}))

	fetchTimeout := time.Duration(cfg.Fetcher.TimeoutMs) * time.Millisecond

	var pageFetcher fetcher.Fetcher
	if cfg.Rod.Enabled {
		pageFetcher = fetcher.NewRodFetcher(cfg.Rod.BrowserURL, fetchTimeout)
	} else {
		pageFetcher = fetcher.NewHTTPFetcher(fetchTimeout, cfg.Fetcher.UserAgent, cfg.Robots.Respect, logger)
	}

	aiClient := ai.NewClient(&cfg.AI, logger)
	recorder := history.NewRecorder(cfg.History.Dir)

	var searchProvider search.Provider
	if cfg.Search.Enabled {
		provider, err := search.NewProviderFromConfig(cfg)
		if err != nil {
			log.Fatalf("search provider setup failed: %v", err)
		}
		searchProvider = provider
	}

	svc := services.NewSummarizeService(cfg, pageFetcher, aiClient, recorder, searchProvider, logger)

	s := server.NewServer(cfg, svc, logger)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	if err := s.Listen(addr); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
