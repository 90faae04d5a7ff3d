// Package injuries builds injury lists from the league's published report
// document, falling back to the CBS injuries table.
package injuries

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/preston-bernstein/nba-next-game-service/internal/cache"
	"github.com/preston-bernstein/nba-next-game-service/internal/domain"
	"github.com/preston-bernstein/nba-next-game-service/internal/logging"
	"github.com/preston-bernstein/nba-next-game-service/internal/providers"
	"github.com/preston-bernstein/nba-next-game-service/internal/timeutil"
)

// guessSlots is how many 15-minute slots are tried when discovery finds nothing for today.
const guessSlots = 4

// ErrNoReport means neither the document nor the fallback table produced entries.
var ErrNoReport = errors.New("injuries: no report available")

// Config wires a Source.
type Config struct {
	// Client reaches the landing page and the report documents.
	Client providers.Fetcher
	// Fallback reaches the CBS table. Nil disables the fallback.
	Fallback    providers.Fetcher
	PageURL     string
	DocBaseURL  string
	FallbackURL string
	Cache       cache.Store
	Logger      *slog.Logger
	Location    *time.Location
}

// Source resolves, downloads and parses injury reports.
type Source struct {
	cfg     Config
	loc     *time.Location
	now     func() time.Time
	extract func([]byte) (string, error)
}

// NewSource builds a Source; the location defaults to Eastern.
func NewSource(cfg Config) *Source {
	loc := cfg.Location
	if loc == nil {
		loc = timeutil.ResolveLocation(timeutil.DefaultZone)
	}
	return &Source{cfg: cfg, loc: loc, now: time.Now, extract: ExtractText}
}

// Fetch returns teamID's injury list for date (YYYY-MM-DD, league time).
// A team absent from a successfully parsed report has no injuries.
func (s *Source) Fetch(ctx context.Context, teamID int, date string, isGameDay bool) ([]domain.InjuryEntry, error) {
	key := cache.InjuriesKey(teamID, date)
	if cached, ok := cache.GetJSON[[]domain.InjuryEntry](ctx, s.cfg.Cache, key); ok {
		return cached, nil
	}

	ttl := TTL(isGameDay, s.now().In(s.loc))
	report, err := s.league(ctx, date, ttl)
	if err != nil {
		return nil, err
	}
	entries := report[teamID]
	if entries == nil {
		entries = []domain.InjuryEntry{}
	}
	cache.SetJSON(ctx, s.cfg.Cache, key, entries, ttl)
	return entries, nil
}

// league returns the whole report for date, shared by every team lookup.
func (s *Source) league(ctx context.Context, date string, ttl time.Duration) (Report, error) {
	key := cache.LeagueInjuriesKey(date)
	if cached, ok := cache.GetJSON[Report](ctx, s.cfg.Cache, key); ok {
		return cached, nil
	}
	logger := logging.FromContext(ctx, s.cfg.Logger)

	report, err := s.fromDocument(ctx, date)
	if err != nil || report.Teams() == 0 {
		logging.Warn(logger, "injury report document unavailable, trying fallback",
			logging.FieldUpstream, providers.UpstreamInjuries,
			logging.FieldDate, date,
			logging.FieldError, err,
		)
		report, err = s.fromFallback(ctx)
	}
	if err != nil {
		return nil, err
	}
	if report.Teams() == 0 {
		return nil, ErrNoReport
	}
	logging.Info(logger, "injury report parsed", logging.FieldDate, date, logging.FieldCount, report.Teams())
	cache.SetJSON(ctx, s.cfg.Cache, key, report, ttl)
	return report, nil
}

func (s *Source) fromDocument(ctx context.Context, date string) (Report, error) {
	if s.cfg.Client == nil {
		return nil, ErrNoReport
	}
	candidates := s.candidates(ctx, date)
	var lastErr error = ErrNoReport
	for _, u := range candidates {
		raw, err := s.cfg.Client.Get(ctx, u)
		if err != nil {
			lastErr = err
			if providers.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		text, err := s.extract(raw)
		if err != nil {
			return nil, err
		}
		return ParseReport(text), nil
	}
	return nil, lastErr
}

// candidates lists document URLs to try: the latest discovered for date, else guesses.
func (s *Source) candidates(ctx context.Context, date string) []string {
	if s.cfg.PageURL != "" {
		page, err := s.cfg.Client.Get(ctx, s.cfg.PageURL)
		if err == nil {
			links, perr := discoverLinks(page, s.cfg.PageURL)
			if perr == nil {
				if best, ok := latestFor(links, date); ok {
					return []string{best.URL}
				}
			}
		} else {
			logging.Warn(logging.FromContext(ctx, s.cfg.Logger), "injury landing page fetch failed",
				logging.FieldUpstream, providers.UpstreamInjuries,
				logging.FieldError, err,
			)
		}
	}
	now := s.now().In(s.loc)
	if timeutil.FormatDate(now) != date {
		// Reports for other days are only reachable by discovery.
		return nil
	}
	return guessURLs(s.cfg.DocBaseURL, now, guessSlots)
}

func (s *Source) fromFallback(ctx context.Context) (Report, error) {
	if s.cfg.Fallback == nil || s.cfg.FallbackURL == "" {
		return nil, ErrNoReport
	}
	html, err := s.cfg.Fallback.Get(ctx, s.cfg.FallbackURL)
	if err != nil {
		return nil, fmt.Errorf("fetch injury fallback: %w", err)
	}
	return ParseCBS(html)
}
