// Package selfupdate replaces the running binary with the latest GitHub
// release after verifying its checksum.
package selfupdate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/mod/semver"
)

const (
	defaultAPIBase      = "https://api.github.com"
	defaultDownloadBase = "https://github.com"
	defaultOwner        = "abhisek"
	defaultRepo         = "stylequiz"
)

// DevVersion is the version string of a build without release ldflags.
const DevVersion = "(devel)"

// Release is the newest published release.
type Release struct {
	Version string // e.g. v1.4.0
	URL     string
}

// Checker finds and installs releases.
type Checker struct {
	client       *http.Client
	apiBase      string
	downloadBase string
	owner        string
	repo         string
	execPath     func() (string, error)
}

// Option configures a Checker.
type Option func(*Checker)

// WithTimeout bounds each HTTP request.
func WithTimeout(d time.Duration) Option {
	return func(c *Checker) { c.client.Timeout = d }
}

// WithBaseURL points release lookups at another GitHub API host.
func WithBaseURL(u string) Option {
	return func(c *Checker) { c.apiBase = strings.TrimRight(u, "/") }
}

// WithDownloadBaseURL points asset downloads at another host.
func WithDownloadBaseURL(u string) Option {
	return func(c *Checker) { c.downloadBase = strings.TrimRight(u, "/") }
}

// WithRepo overrides the owner/name the releases are read from.
func WithRepo(owner, repo string) Option {
	return func(c *Checker) { c.owner, c.repo = owner, repo }
}

func withExecPath(f func() (string, error)) Option {
	return func(c *Checker) { c.execPath = f }
}

// NewChecker returns a Checker for the stylequiz releases.
func NewChecker(opts ...Option) *Checker {
	c := &Checker{
		client:       &http.Client{Timeout: 30 * time.Second},
		apiBase:      defaultAPIBase,
		downloadBase: defaultDownloadBase,
		owner:        defaultOwner,
		repo:         defaultRepo,
		execPath:     os.Executable,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Latest fetches the newest release.
func (c *Checker) Latest(ctx context.Context) (*Release, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases/latest", c.apiBase, c.owner, c.repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch latest release: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch latest release: HTTP %d", resp.StatusCode)
	}

	var body struct {
		TagName string `json:"tag_name"`
		HTMLURL string `json:"html_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode release: %w", err)
	}
	v := canonical(body.TagName)
	if v == "" {
		return nil, fmt.Errorf("release tag %q is not a semantic version", body.TagName)
	}
	return &Release{Version: v, URL: body.HTMLURL}, nil
}

// Newer reports whether the latest release is newer than current. A
// development build never has an update.
func (c *Checker) Newer(ctx context.Context, current string) (*Release, bool, error) {
	if current == DevVersion {
		return nil, false, ErrDevBuild
	}
	cur := canonical(current)
	if cur == "" {
		return nil, false, fmt.Errorf("current version %q is not a semantic version", current)
	}
	rel, err := c.Latest(ctx)
	if err != nil {
		return nil, false, err
	}
	return rel, semver.Compare(rel.Version, cur) > 0, nil
}

// canonical accepts "1.2.3" as well as "v1.2.3".
func canonical(v string) string {
	v = strings.TrimSpace(v)
	if v != "" && !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return ""
	}
	return semver.Canonical(v)
}

var (
	ErrDevBuild      = errors.New("cannot update a development build")
	ErrAlreadyLatest = errors.New("already running the latest version")
	ErrChecksum      = errors.New("checksum verification failed")
)
