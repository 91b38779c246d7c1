package providers

import (
	"github.com/samber/do/v2"

	"github.com/muzaapp/muza-server/internal/config"
	"github.com/muzaapp/muza-server/internal/logger"
	"github.com/muzaapp/muza-server/internal/metadata/musicbrainz"
	"github.com/muzaapp/muza-server/internal/ratelimit"
)

// ProvideRateLimiter provides the single limiter shared by every outbound
// MusicBrainz call: API lookups, page scrapes, and cover downloads all
// serialize through it.
func ProvideRateLimiter(i do.Injector) (*ratelimit.IntervalLimiter, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return ratelimit.NewInterval(cfg.MusicBrainz.RateInterval), nil
}

// ProvideMusicBrainzClient provides the web service client.
func ProvideMusicBrainzClient(i do.Injector) (*musicbrainz.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	limiter := do.MustInvoke[*ratelimit.IntervalLimiter](i)

	return musicbrainz.New(musicbrainz.Config{
		BaseURL:        cfg.MusicBrainz.APIBaseURL,
		UserAgent:      cfg.MusicBrainz.UserAgent,
		Timeout:        cfg.MusicBrainz.Timeout,
		RetryAttempts:  cfg.MusicBrainz.RetryAttempts,
		RetryBaseDelay: cfg.MusicBrainz.RetryBaseDelay,
		RetryMaxDelay:  cfg.MusicBrainz.RetryMaxDelay,
	}, limiter, log.Logger), nil
}

// ProvideCoverArtClient provides the Cover Art Archive client.
func ProvideCoverArtClient(i do.Injector) (*musicbrainz.CoverArtClient, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	limiter := do.MustInvoke[*ratelimit.IntervalLimiter](i)

	return musicbrainz.NewCoverArtClient(
		cfg.MusicBrainz.CoverArtBaseURL,
		cfg.MusicBrainz.UserAgent,
		cfg.MusicBrainz.Timeout,
		limiter,
		log.Logger,
	), nil
}

// ProvideScraper provides the release page credits scraper.
func ProvideScraper(i do.Injector) (*musicbrainz.Scraper, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	limiter := do.MustInvoke[*ratelimit.IntervalLimiter](i)
	client := do.MustInvoke[*musicbrainz.Client](i)

	return musicbrainz.NewScraper(
		cfg.MusicBrainz.SiteBaseURL,
		cfg.MusicBrainz.UserAgent,
		cfg.MusicBrainz.Timeout,
		limiter,
		client,
		log.Logger,
	), nil
}
