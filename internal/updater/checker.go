// Package updater checks GitHub releases for a newer tf96ctl build.
// It never downloads or replaces the binary.
package updater

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/smazurov/tf96ctl/internal/logging"
	"github.com/smazurov/tf96ctl/internal/version"
)

// DefaultRepository is the GitHub slug releases are looked up in.
const DefaultRepository = "smazurov/tf96ctl"

// Options configures a Checker.
type Options struct {
	Repository string
	Prerelease bool
}

// UpdateInfo describes the latest release relative to the running build.
type UpdateInfo struct {
	CurrentVersion  string    `json:"current_version"`
	LatestVersion   string    `json:"latest_version"`
	ReleaseNotes    string    `json:"release_notes,omitempty"`
	ReleaseURL      string    `json:"release_url,omitempty"`
	PublishedAt     time.Time `json:"published_at"`
	UpdateAvailable bool      `json:"update_available"`
}

type releaseFinder interface {
	DetectLatest(ctx context.Context, repository selfupdate.Repository) (*selfupdate.Release, bool, error)
}

// Checker looks up the latest release.
type Checker struct {
	finder  releaseFinder
	repo    selfupdate.Repository
	slug    string
	current string
	logger  *slog.Logger
}

// NewChecker builds a Checker against the GitHub API.
func NewChecker(opts Options) (*Checker, error) {
	slug := opts.Repository
	if slug == "" {
		slug = DefaultRepository
	}

	source, err := selfupdate.NewGitHubSource(selfupdate.GitHubConfig{})
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub source: %w", err)
	}
	up, err := selfupdate.NewUpdater(selfupdate.Config{
		Source:     source,
		Prerelease: opts.Prerelease,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create updater: %w", err)
	}

	return newChecker(up, slug, version.Version), nil
}

func newChecker(finder releaseFinder, slug, current string) *Checker {
	return &Checker{
		finder:  finder,
		repo:    selfupdate.ParseSlug(slug),
		slug:    slug,
		current: current,
		logger:  logging.GetLogger("updater"),
	}
}

// Check queries the latest release. A "dev" build is always outdated.
func (c *Checker) Check(ctx context.Context) (*UpdateInfo, error) {
	release, found, err := c.finder.DetectLatest(ctx, c.repo)
	if err != nil {
		c.logger.Warn("Update check failed", "repository", c.slug, "error", err)
		return nil, newError(ErrCodeCheckFailed, "failed to check for updates", err)
	}
	if !found || release == nil {
		return nil, newError(ErrCodeNotFound, "repository "+c.slug+" not found or has no releases", nil)
	}

	info := &UpdateInfo{
		CurrentVersion:  c.current,
		LatestVersion:   release.Version(),
		UpdateAvailable: c.current == "dev" || release.GreaterThan(c.current),
	}
	if info.UpdateAvailable {
		info.ReleaseNotes = release.ReleaseNotes
		info.ReleaseURL = release.URL
		info.PublishedAt = release.PublishedAt
	}

	c.logger.Info("Update check complete",
		"current", info.CurrentVersion,
		"latest", info.LatestVersion,
		"available", info.UpdateAvailable)
	return info, nil
}
