package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"cinehub/internal/omdb"
	"cinehub/pkg/models"
	"cinehub/pkg/utils"
)

// One-shot provider lookup: fetches a single title from OMDb and prints the
// normalized snake_case record to stdout.
func main() {
	cfg := utils.LoadOMDbConfig()

	imdbID := flag.String("imdb-id", "", "IMDb identifier, e.g. tt0944947")
	title := flag.String("title", "", "title to search for")
	year := flag.Int("year", 0, "release year (optional)")
	apiKey := flag.String("api-key", cfg.APIKey, "OMDb API key (default $OMDB_API_KEY)")
	baseURL := flag.String("base-url", cfg.BaseURL, "OMDb base URL")
	flag.Parse()

	if *imdbID == "" && *title == "" {
		log.Fatal("one of -imdb-id or -title is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	query := models.NewLookupQuery(*imdbID, *title, *year)

	client := omdb.NewClient(*apiKey, *baseURL)
	av, err := client.Lookup(ctx, query)
	if err != nil {
		log.Fatalf("lookup failed: %v", err)
	}

	out, err := json.MarshalIndent(av, "", "  ")
	if err != nil {
		log.Fatalf("encode failed: %v", err)
	}
	fmt.Println(string(out))
}
