package update

import (
	"archive/tar"
	"bufio"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"

	rberrors "ribbon/internal/errors"
)

const (
	userAgent         = "ribbon-updater"
	defaultBinaryName = "ribbon"
	backupSuffix      = ".backup"
)

// Error variables for updater-specific errors.
var (
	ErrPermissionDenied    = rberrors.New(rberrors.CodeUpdateFailed, "permission denied", nil)
	ErrChecksumMismatch    = rberrors.New(rberrors.CodeUpdateFailed, "checksum verification failed", nil)
	ErrDownloadFailed      = rberrors.New(rberrors.CodeNetworkFailed, "download failed", nil)
	ErrExtractionFailed    = rberrors.New(rberrors.CodeUpdateFailed, "extraction failed", nil)
	ErrNoBackup            = rberrors.New(rberrors.CodeUpdateFailed, "no backup found", nil)
	ErrWindowsNoAutoUpdate = rberrors.New(rberrors.CodeUpdateFailed, "auto-update not supported on Windows; please download manually", nil)
)

// ProgressFunc receives the number of bytes downloaded so far and the
// expected total, which is -1 when the server sends no Content-Length.
type ProgressFunc func(done, total int64)

// Phase is a step of Update reported through WithPhaseFunc.
type Phase int

const (
	PhaseDownload Phase = iota
	PhaseVerify
	PhaseInstall
)

// Updater downloads a release archive and swaps it in for the running binary.
type Updater struct {
	assetURL     string
	checksumsURL string
	binaryName   string
	httpClient   *http.Client
	execPath     func() (string, error)
	progress     ProgressFunc
	phase        func(Phase)
	goos         string
	goarch       string
}

// UpdaterOption configures an Updater.
type UpdaterOption func(*Updater)

// WithUpdaterHTTPClient sets a custom HTTP client for the updater.
func WithUpdaterHTTPClient(client *http.Client) UpdaterOption {
	return func(u *Updater) {
		u.httpClient = client
	}
}

// WithChecksumsURL enables SHA256 verification against a checksums.txt
// template using the same placeholders as the asset URL.
func WithChecksumsURL(template string) UpdaterOption {
	return func(u *Updater) {
		u.checksumsURL = template
	}
}

// WithExecutablePath replaces the binary at path instead of os.Executable.
func WithExecutablePath(path string) UpdaterOption {
	return func(u *Updater) {
		u.execPath = func() (string, error) { return path, nil }
	}
}

// WithProgress registers a download progress callback.
func WithProgress(fn ProgressFunc) UpdaterOption {
	return func(u *Updater) {
		u.progress = fn
	}
}

// WithPhaseFunc registers a callback invoked as Update enters each phase.
// PhaseVerify is skipped when no checksums URL is configured.
func WithPhaseFunc(fn func(Phase)) UpdaterOption {
	return func(u *Updater) {
		u.phase = fn
	}
}

// NewUpdater creates an updater for assets published under assetURL, a
// template with {version}, {os} and {arch} placeholders.
func NewUpdater(assetURL string, opts ...UpdaterOption) *Updater {
	u := &Updater{
		assetURL:   assetURL,
		binaryName: defaultBinaryName,
		httpClient: &http.Client{
			Timeout: 0, // No timeout for downloads
		},
		execPath: currentExecutable,
		goos:     runtime.GOOS,
		goarch:   runtime.GOARCH,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Update downloads and installs the specified version.
// It performs an atomic replacement of the current binary and keeps the
// previous one next to it with a .backup suffix.
func (u *Updater) Update(ctx context.Context, version string) error {
	if u.goos == "windows" {
		return ErrWindowsNoAutoUpdate
	}

	execPath, err := u.execPath()
	if err != nil {
		return err
	}

	if err := checkWritePermission(execPath); err != nil {
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}

	// Stage next to the binary so the final rename stays on one filesystem.
	stageDir, err := os.MkdirTemp(filepath.Dir(execPath), ".ribbon-update-*")
	if err != nil {
		return fmt.Errorf("create staging directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(stageDir) }()

	assetURL := ResolveAssetURL(u.assetURL, version, u.goos, u.goarch)
	archivePath := filepath.Join(stageDir, assetName(assetURL))
	u.enter(PhaseDownload)
	if err := u.download(ctx, assetURL, archivePath, u.progress); err != nil {
		return err
	}

	if u.checksumsURL != "" {
		u.enter(PhaseVerify)
		if err := u.verify(ctx, version, archivePath); err != nil {
			return err
		}
	}

	//nolint:gosec // G304: archive lives in a staging directory we created
	archive, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	newBinary, err := extractTarball(archive, stageDir, u.binaryName)
	_ = archive.Close()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	u.enter(PhaseInstall)
	backupPath := execPath + backupSuffix
	if err := os.Rename(execPath, backupPath); err != nil {
		return fmt.Errorf("backup current binary: %w", err)
	}

	if err := os.Rename(newBinary, execPath); err != nil {
		_ = os.Rename(backupPath, execPath)
		return fmt.Errorf("install new binary: %w", err)
	}

	//nolint:gosec // G302: Binary needs to be executable
	if err := os.Chmod(execPath, 0755); err != nil {
		_ = os.Rename(backupPath, execPath)
		return fmt.Errorf("set executable permission: %w", err)
	}

	return nil
}

func (u *Updater) enter(p Phase) {
	if u.phase != nil {
		u.phase(p)
	}
}

// Rollback restores the previous version from backup.
func (u *Updater) Rollback() error {
	execPath, err := u.execPath()
	if err != nil {
		return err
	}

	backupPath := execPath + backupSuffix
	if _, err := os.Stat(backupPath); os.IsNotExist(err) {
		return fmt.Errorf("%w at %s", ErrNoBackup, backupPath)
	}

	if err := os.Rename(backupPath, execPath); err != nil {
		return fmt.Errorf("restore backup: %w", err)
	}

	return nil
}

func (u *Updater) download(ctx context.Context, url, dest string, progress ProgressFunc) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/octet-stream")
	req.Header.Set("User-Agent", userAgent)

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s: status %d", ErrDownloadFailed, url, resp.StatusCode)
	}

	//nolint:gosec // G304: dest is inside our staging directory
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}

	var body io.Reader = resp.Body
	if progress != nil {
		body = &progressReader{r: resp.Body, total: resp.ContentLength, fn: progress}
	}
	if _, err := io.Copy(out, body); err != nil {
		_ = out.Close()
		return fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	return out.Close()
}

func (u *Updater) verify(ctx context.Context, version, archivePath string) error {
	sumsPath := archivePath + ".checksums"
	url := ResolveAssetURL(u.checksumsURL, version, u.goos, u.goarch)
	if err := u.download(ctx, url, sumsPath, nil); err != nil {
		return err
	}

	//nolint:gosec // G304: sumsPath is inside our staging directory
	f, err := os.Open(sumsPath)
	if err != nil {
		return fmt.Errorf("open checksums: %w", err)
	}
	defer func() { _ = f.Close() }()

	sums, err := ParseChecksumFile(f)
	if err != nil {
		return err
	}
	name := filepath.Base(archivePath)
	expected, ok := sums[name]
	if !ok {
		return fmt.Errorf("%w: no checksum listed for %s", ErrChecksumMismatch, name)
	}
	return VerifyChecksum(archivePath, expected)
}

type progressReader struct {
	r     io.Reader
	done  int64
	total int64
	fn    ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.done += int64(n)
		p.fn(p.done, p.total)
	}
	return n, err
}

// extractTarball extracts the named binary from a .tar.gz archive into
// destDir and returns its path.
func extractTarball(r io.Reader, destDir, binaryName string) (string, error) {
	gzr, err := gzip.NewReader(r)
	if err != nil {
		return "", fmt.Errorf("create gzip reader: %w", err)
	}
	defer func() { _ = gzr.Close() }()

	tr := tar.NewReader(gzr)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read tar: %w", err)
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}

		name := filepath.Base(header.Name)
		if name != binaryName && name != binaryName+".exe" {
			continue
		}

		destPath := filepath.Join(destDir, name+".new")
		//nolint:gosec // G304: extracting to a directory we control
		outFile, err := os.Create(destPath)
		if err != nil {
			return "", fmt.Errorf("create file: %w", err)
		}
		//nolint:gosec // G110: decompression bomb unlikely for known release assets
		if _, err := io.Copy(outFile, tr); err != nil {
			_ = outFile.Close()
			return "", fmt.Errorf("extract file: %w", err)
		}
		if err := outFile.Close(); err != nil {
			return "", fmt.Errorf("close file: %w", err)
		}
		//nolint:gosec // G302: binary needs to be executable
		if err := os.Chmod(destPath, 0755); err != nil {
			return "", fmt.Errorf("chmod: %w", err)
		}
		return destPath, nil
	}

	return "", fmt.Errorf("binary %q not found in archive", binaryName)
}

// assetName returns the last path segment of url, ignoring any query string.
func assetName(url string) string {
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		url = url[:i]
	}
	name := path.Base(url)
	if name == "." || name == "/" || name == "" {
		return "asset.tar.gz"
	}
	return name
}

func currentExecutable() (string, error) {
	execPath, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("get executable path: %w", err)
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return "", fmt.Errorf("resolve symlinks: %w", err)
	}
	return execPath, nil
}

// checkWritePermission verifies the current process can write next to path.
func checkWritePermission(path string) error {
	dir := filepath.Dir(path)
	testFile := filepath.Join(dir, ".ribbon-update-test")

	//nolint:gosec // G304: Path is constructed from known binary directory
	f, err := os.Create(testFile)
	if err != nil {
		return err
	}
	_ = f.Close()
	_ = os.Remove(testFile)
	return nil
}

// VerifyChecksum verifies a file against an expected SHA256 checksum.
func VerifyChecksum(path, expected string) error {
	//nolint:gosec // G304: Path comes from caller; this is intentional for checksum verification
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return fmt.Errorf("hash file: %w", err)
	}

	actual := hex.EncodeToString(h.Sum(nil))
	if !strings.EqualFold(actual, strings.TrimSpace(expected)) {
		return fmt.Errorf("%w: expected %s, got %s", ErrChecksumMismatch, expected, actual)
	}

	return nil
}

// ParseChecksumFile parses a checksums.txt file and returns a map of filename to checksum.
// Format: "sha256hash  filename" (two spaces between hash and filename)
func ParseChecksumFile(r io.Reader) (map[string]string, error) {
	checksums := make(map[string]string)
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Fields(line)
		if len(parts) != 2 {
			continue
		}

		hash := parts[0]
		// sha256sum marks binary mode with a leading '*'
		filename := filepath.Base(strings.TrimPrefix(parts[1], "*"))
		if hash != "" && filename != "" {
			checksums[filename] = hash
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read checksums: %w", err)
	}

	return checksums, nil
}
