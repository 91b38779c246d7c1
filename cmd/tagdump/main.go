package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/muzaapp/muza-server/internal/tags"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: tagdump <file.flac>")
	}

	path := os.Args[1]
	fmt.Printf("Reading: %s\n\n", path)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	extractor := tags.NewExtractor(slog.New(slog.DiscardHandler))
	rec, err := extractor.Extract(ctx, path)
	if err != nil {
		log.Fatalf("Failed to extract tags: %v", err)
	}

	fmt.Printf("Title: %s\n", rec.Title)
	fmt.Printf("Artist: %s\n", rec.Artist)
	fmt.Printf("Album: %s\n", rec.Album)
	fmt.Printf("Composer: %s\n", rec.Composer)
	fmt.Printf("Label: %s\n", rec.Label)
	fmt.Printf("Duration: %ds\n", rec.Duration)
	fmt.Printf("Track: %d/%d disc %d\n", rec.TrackNumber, rec.TrackTotal, rec.DiscNumber)
	fmt.Printf("Year recorded: %d released: %d\n", rec.YearRecorded, rec.YearReleased)
	fmt.Println()

	if rec.RecordingID != "" {
		fmt.Printf("MusicBrainz recording: %s\n", rec.RecordingID)
	}
	if rec.ReleaseID != "" {
		fmt.Printf("MusicBrainz release: %s\n", rec.ReleaseID)
	}
	if len(rec.Genres) > 0 {
		fmt.Printf("Genres: %v\n", rec.Genres)
	}
	if len(rec.Credits) > 0 {
		fmt.Printf("Credits: %v\n", rec.Credits)
	}
	if len(rec.CoverData) > 0 {
		fmt.Printf("Embedded cover: %d bytes (%s)\n", len(rec.CoverData), rec.CoverMIME)
	}
}
