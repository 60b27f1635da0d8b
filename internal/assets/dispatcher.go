package assets

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/GOLDENPLIX/pes-2013-updater/internal/fsutil"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/logging"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/metrics"
)

const defaultWorkers = 5

// Asset kinds, used in file names and metrics.
const (
	KindLogo = "logo"
	KindKit  = "kit"
)

// Downloader fetches one URL to a local path.
type Downloader interface {
	Fetch(ctx context.Context, url, dest string) bool
}

// DispatcherConfig wires a Dispatcher.
type DispatcherConfig struct {
	Downloader  Downloader
	Workers     int
	LogoBaseURL string
	KitBaseURL  string
	LogoFolder  string
	KitFolder   string
	// Normalizer, when set, downscales each downloaded image.
	Normalizer *Normalizer
	Recorder   *metrics.Recorder
	Logger     *slog.Logger
}

// Dispatcher downloads the logo and kit of many teams concurrently.
type Dispatcher struct {
	cfg DispatcherConfig
}

// NewDispatcher constructs a Dispatcher.
func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	return &Dispatcher{cfg: cfg}
}

// FetchAll downloads assets for every team with at most Workers teams in
// flight. The result has exactly one key per distinct team. A team whose task
// panics, fails or fetches nothing maps to nil. Teams whose names map to the
// same file name as an earlier team are skipped and map to nil.
func (d *Dispatcher) FetchAll(ctx context.Context, teams []string) map[string]*TeamResult {
	results := make(map[string]*TeamResult, len(teams))
	var mu sync.Mutex
	record := func(team string, res *TeamResult) {
		mu.Lock()
		results[team] = res
		mu.Unlock()
	}

	var g errgroup.Group
	g.SetLimit(d.cfg.Workers)
	owners := make(map[string]string, len(teams))
	for _, team := range teams {
		safe := fsutil.SanitizeFileName(team)
		if owner, taken := owners[safe]; taken {
			if owner != team {
				logging.Warn(d.cfg.Logger, "team shares asset files with another team, skipped",
					logging.FieldTeam, team, "conflicts_with", owner)
				record(team, nil)
			}
			continue
		}
		owners[safe] = team
		record(team, nil)
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					logging.Error(d.cfg.Logger, "asset task panicked", fmt.Errorf("panic: %v", r), logging.FieldTeam, team)
					record(team, nil)
				}
			}()
			res, err := d.fetchTeam(ctx, team)
			if err != nil {
				logging.Error(d.cfg.Logger, "asset task failed", err, logging.FieldTeam, team)
				return nil
			}
			if res.Logo || res.Kit {
				record(team, res)
			}
			return nil
		})
	}
	_ = g.Wait()

	rep := Summarize(results)
	logging.Info(d.cfg.Logger, "asset download finished",
		"teams", rep.Total,
		"complete", rep.Full,
		"partial", rep.Partial,
		"failed", rep.Failed,
	)
	return results
}

func (d *Dispatcher) fetchTeam(ctx context.Context, team string) (*TeamResult, error) {
	if d.cfg.Downloader == nil {
		return nil, fmt.Errorf("no downloader configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	safe := fsutil.SanitizeFileName(team)
	if safe == "" {
		return nil, fmt.Errorf("team name %q is empty after sanitizing", team)
	}

	res := &TeamResult{}
	res.Logo = d.fetchOne(ctx, KindLogo, assetURL(d.cfg.LogoBaseURL, team), filepath.Join(d.cfg.LogoFolder, safe+"_logo.png"))
	res.Kit = d.fetchOne(ctx, KindKit, assetURL(d.cfg.KitBaseURL, team), filepath.Join(d.cfg.KitFolder, safe+"_kit.png"))
	return res, nil
}

func (d *Dispatcher) fetchOne(ctx context.Context, kind, url, dest string) bool {
	ok := d.cfg.Downloader.Fetch(ctx, url, dest)
	d.cfg.Recorder.RecordAssetDownload(kind, ok)
	if ok && d.cfg.Normalizer != nil {
		if _, err := d.cfg.Normalizer.Normalize(dest); err != nil {
			logging.Warn(d.cfg.Logger, "image normalization skipped", logging.FieldPath, dest, "error", err)
		}
	}
	return ok
}

func assetURL(base, team string) string {
	return strings.TrimRight(base, "/") + "/" + url.PathEscape(strings.TrimSpace(team))
}
