package update

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"strings"
	"time"

	rberrors "ribbon/internal/errors"
)

// DefaultTimeout bounds version checks when the caller supplies no deadline.
const DefaultTimeout = 5 * time.Second

// maxVersionBytes caps how much of the version file is read.
const maxVersionBytes = 1 << 10

// Error variables for specific error conditions.
var (
	ErrNetworkFailure   = rberrors.New(rberrors.CodeNetworkFailed, "network request failed", nil)
	ErrInvalidVersion   = rberrors.New(rberrors.CodeInvalidVersion, "invalid version format", nil)
	ErrDevelopmentBuild = rberrors.New(rberrors.CodeInvalidVersion, "development build; update check skipped", nil)
)

// UpdateInfo contains the result of a version check.
type UpdateInfo struct {
	CurrentVersion  Version
	LatestVersion   Version
	UpdateAvailable bool
	DownloadURL     string
	CheckedAt       time.Time
}

// Checker fetches the published version string.
type Checker struct {
	versionURL string
	assetURL   string
	httpClient *http.Client
	now        func() time.Time
}

// CheckerOption configures a Checker.
type CheckerOption func(*Checker)

// WithHTTPClient sets a custom HTTP client for the checker.
func WithHTTPClient(client *http.Client) CheckerOption {
	return func(c *Checker) {
		c.httpClient = client
	}
}

// WithAssetURL sets the asset template used to fill UpdateInfo.DownloadURL.
func WithAssetURL(template string) CheckerOption {
	return func(c *Checker) {
		c.assetURL = template
	}
}

// NewChecker creates a checker reading the version string at versionURL.
func NewChecker(versionURL string, opts ...CheckerOption) *Checker {
	c := &Checker{
		versionURL: versionURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Latest returns the published version string with surrounding whitespace removed.
func (c *Checker) Latest(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.versionURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/plain")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNetworkFailure, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrNetworkFailure, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxVersionBytes))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", ErrNetworkFailure, err)
	}
	return strings.TrimSpace(string(body)), nil
}

// Check fetches the latest version and compares it to currentVersion.
// Development builds return ErrDevelopmentBuild without touching the network.
func (c *Checker) Check(ctx context.Context, currentVersion string) (*UpdateInfo, error) {
	if isDevelopmentVersion(currentVersion) {
		return nil, ErrDevelopmentBuild
	}

	current, err := ParseVersion(currentVersion)
	if err != nil {
		return nil, fmt.Errorf("parse current version: %w", err)
	}

	raw, err := c.Latest(ctx)
	if err != nil {
		return nil, err
	}

	latest, err := ParseVersion(raw)
	if err != nil {
		return nil, fmt.Errorf("parse latest version: %w", err)
	}

	info := &UpdateInfo{
		CurrentVersion:  current,
		LatestVersion:   latest,
		UpdateAvailable: current.LessThan(latest),
		CheckedAt:       c.now(),
	}
	if c.assetURL != "" {
		info.DownloadURL = ResolveAssetURL(c.assetURL, latest.String(), runtime.GOOS, runtime.GOARCH)
	}
	return info, nil
}

func isDevelopmentVersion(v string) bool {
	switch strings.TrimSpace(v) {
	case "", "dev", "development":
		return true
	}
	return false
}

// ResolveAssetURL fills the {version}, {os} and {arch} placeholders of an
// asset URL template. A leading "v" on version is dropped so templates can
// spell the tag prefix themselves.
func ResolveAssetURL(template, version, goos, goarch string) string {
	version = strings.TrimPrefix(strings.TrimSpace(version), "v")
	return strings.NewReplacer(
		"{version}", version,
		"{os}", goos,
		"{arch}", goarch,
	).Replace(template)
}
