// Command publishsite rebuilds the static site from the episode bundles
// already on disk, without touching feeds or remote APIs. Useful after
// editing templates or hand-fixing a bundle.
package main

import (
	"flag"
	"log"

	"podcast-archive/pkg/config"
	"podcast-archive/pkg/publisher"
	"podcast-archive/pkg/store"
)

func main() {
	configPath := flag.String("config", "", "Config file path (default: config.yml, then config.example.yml)")
	flag.Parse()

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
	} else {
		cfg, _, err = config.LoadDefault()
	}
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	episodes, err := store.NewStore(cfg.Storage.EpisodesDir).LoadEpisodes()
	if err != nil {
		log.Fatalf("Failed to load episodes: %v", err)
	}

	site, err := publisher.New(cfg.Storage.SiteDir, cfg.Site.Title, cfg.Site.Description, cfg.Site.BaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize publisher: %v", err)
	}
	if err := site.Publish(episodes); err != nil {
		log.Fatalf("Failed to publish site: %v", err)
	}
	log.Printf("Published %d episodes to %s", len(episodes), cfg.Storage.SiteDir)
}
