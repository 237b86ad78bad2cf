package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"musicbot/config"
	"musicbot/internal/models"
	"musicbot/internal/progress"
	"musicbot/internal/services"
	"musicbot/internal/utils"

	logger "github.com/Bparsons0904/goLogger"
)

// fetch runs one acquisition outside the bot and copies the produced assets
// into a local directory.
func main() {
	log := logger.New("fetch").Function("main")

	platform := flag.String("platform", string(models.PlatformYouTube), "catalog to search: youtube or spotify")
	query := flag.String("query", "", "search query, the first result is fetched")
	trackID := flag.String("id", "", "track id, skips the search")
	preview := flag.Bool("preview", false, "fetch a short preview instead of the full track")
	out := flag.String("out", ".", "directory the assets are copied to")
	raw := flag.Bool("raw", false, "download a YouTube track straight into -out, printing plain percentages")
	flag.Parse()

	if *query == "" && *trackID == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.New()
	if err != nil {
		log.Er("failed to initialize config", err)
		os.Exit(1)
	}

	parsed, err := models.ParsePlatform(*platform)
	if err != nil {
		log.Er("invalid platform", err, "platform", *platform)
		os.Exit(2)
	}

	youtube, err := services.NewYouTubeService(ctx, cfg)
	if err != nil {
		log.Er("failed to create youtube service", err)
		os.Exit(1)
	}
	spotify := services.NewSpotifyService(ctx, cfg)
	downloader := services.NewDownloadService(cfg)
	media := services.NewMediaService(cfg)
	acquisition := services.NewAcquisitionService(cfg, downloader, media, youtube, spotify)

	request := services.AcquisitionRequest{Platform: parsed, TrackID: *trackID, Mode: services.ModeFull}
	if *preview {
		request.Mode = services.ModePreview
	}

	if request.TrackID == "" {
		catalogs := map[models.Platform]services.TrackSearcher{
			models.PlatformYouTube: youtube,
			models.PlatformSpotify: spotify,
		}
		tracks, err := catalogs[parsed].Search(ctx, *query, 1)
		if err != nil {
			log.Er("search failed", err, "query", *query)
			os.Exit(1)
		}
		if len(tracks) == 0 {
			log.Warn("No results", "query", *query)
			os.Exit(1)
		}
		request.TrackID = tracks[0].ID
		request.Title = tracks[0].Title
		request.Artist = tracks[0].Artist
		log.Info("Fetching first result", "title", request.Title, "artist", request.Artist)
	}

	if *raw {
		if parsed != models.PlatformYouTube {
			log.Warn("Raw mode only supports youtube tracks", "platform", parsed)
			os.Exit(2)
		}
		if err := downloadRaw(ctx, downloader, request, *out); err != nil {
			os.Exit(1)
		}
		return
	}

	if err := acquisition.Run(ctx, request, newConsoleDelivery(*out)); err != nil {
		log.Er("fetch failed", err)
		os.Exit(1)
	}
}

// downloadRaw skips the pipeline and keeps the downloaded mp3 as is.
func downloadRaw(ctx context.Context, downloader *services.DownloadService, request services.AcquisitionRequest, out string) error {
	log := logger.New("fetch").Function("downloadRaw")

	if err := os.MkdirAll(out, 0o755); err != nil {
		return log.Err("failed to create output directory", err, "dir", out)
	}

	name := request.TrackID
	if request.Title != "" {
		name = utils.CleanFilename(request.Title)
	}
	track := models.Track{ID: request.TrackID, Platform: models.PlatformYouTube}

	last := -1
	sink := progress.PercentSink(func(percent int) {
		if percent != last {
			last = percent
			fmt.Printf("\r%3d%%", percent)
		}
	})

	path, err := downloader.Download(ctx, track.URL(), out, name, sink)
	fmt.Println()
	if err != nil {
		return log.Err("download failed", err, "trackID", request.TrackID)
	}

	log.Info("Saved", "path", path)
	return nil
}
