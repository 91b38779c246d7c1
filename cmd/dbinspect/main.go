package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/muzaapp/muza-server/internal/catalog"
)

func main() {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/muza/data/muza.db")
	}

	store, err := catalog.Open(dbPath, slog.New(slog.DiscardHandler))
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	fmt.Println("=== Catalog Inspection ===")
	fmt.Println()

	artists, err := store.ListArtists(ctx)
	if err != nil {
		log.Fatalf("Error listing artists: %v", err)
	}

	tracks, err := store.ListRecentTracks(ctx, 1000000)
	if err != nil {
		log.Fatalf("Error listing tracks: %v", err)
	}

	withCredits := 0
	withGenres := 0
	orphans := 0
	albums := map[string]int{}

	for i := range tracks {
		track := &tracks[i]
		if len(track.Credits) > 0 {
			withCredits++
		}
		if len(track.Genres) > 0 {
			withGenres++
		}
		if track.AlbumID == "" {
			orphans++
		} else {
			albums[track.AlbumID]++
		}
	}

	for i, track := range tracks {
		if i >= 3 {
			break
		}
		fmt.Printf("Track: %s\n", track.Title)
		fmt.Printf("  ID: %s\n", track.ID)
		fmt.Printf("  Album: %s  Artist: %s\n", track.AlbumID, track.ArtistID)
		fmt.Printf("  Credits: %d  Genres: %v\n", len(track.Credits), track.Genres)
		fmt.Println()
	}

	fmt.Println("=== Summary ===")
	fmt.Printf("Artists: %d\n", len(artists))
	fmt.Printf("Albums with tracks: %d\n", len(albums))
	fmt.Printf("Tracks: %d\n", len(tracks))
	fmt.Printf("Tracks with credits: %d\n", withCredits)
	fmt.Printf("Tracks with genres: %d\n", withGenres)
	fmt.Printf("Tracks without album: %d\n", orphans)
	if len(albums) > 0 {
		fmt.Printf("Average tracks per album: %.1f\n", float64(len(tracks)-orphans)/float64(len(albums)))
	}
}
