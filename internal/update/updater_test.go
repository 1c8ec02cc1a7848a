package update

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func buildTarball(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for name, content := range files {
		hdr := &tar.Header{Name: name, Mode: 0755, Size: int64(len(content)), Typeflag: tar.TypeReg}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("write header: %v", err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatalf("write body: %v", err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("close tar: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("close gzip: %v", err)
	}
	return buf.Bytes()
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// releaseServer serves /v{version}/ribbon_linux_amd64.tar.gz and a matching checksums.txt.
func releaseServer(t *testing.T, archive []byte, checksum string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1.0.1/ribbon_linux_amd64.tar.gz":
			w.Header().Set("Content-Length", fmt.Sprint(len(archive)))
			_, _ = w.Write(archive)
		case "/v1.0.1/checksums.txt":
			_, _ = fmt.Fprintf(w, "%s  ribbon_linux_amd64.tar.gz\n%s  ribbon_darwin_arm64.tar.gz\n", checksum, strings.Repeat("0", 64))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func installFakeBinary(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ribbon")
	if err := os.WriteFile(path, []byte(content), 0755); err != nil {
		t.Fatalf("write fake binary: %v", err)
	}
	return path
}

func newTestUpdater(serverURL, execPath string, opts ...UpdaterOption) *Updater {
	opts = append([]UpdaterOption{WithExecutablePath(execPath)}, opts...)
	u := NewUpdater(serverURL+"/v{version}/ribbon_{os}_{arch}.tar.gz", opts...)
	u.goos = "linux"
	u.goarch = "amd64"
	return u
}

func TestUpdaterUpdateReplacesBinary(t *testing.T) {
	archive := buildTarball(t, map[string]string{
		"README.md":           "docs",
		"ribbon_1.0.1/ribbon": "new binary",
	})
	server := releaseServer(t, archive, sha256Hex(archive))
	execPath := installFakeBinary(t, "old binary")

	var lastDone, lastTotal int64
	u := newTestUpdater(server.URL, execPath,
		WithChecksumsURL(server.URL+"/v{version}/checksums.txt"),
		WithProgress(func(done, total int64) { lastDone, lastTotal = done, total }),
	)

	if err := u.Update(context.Background(), "1.0.1"); err != nil {
		t.Fatalf("Update() error: %v", err)
	}

	got, err := os.ReadFile(execPath)
	if err != nil {
		t.Fatalf("read binary: %v", err)
	}
	if string(got) != "new binary" {
		t.Errorf("binary content = %q, want %q", got, "new binary")
	}
	backup, err := os.ReadFile(execPath + backupSuffix)
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if string(backup) != "old binary" {
		t.Errorf("backup content = %q, want %q", backup, "old binary")
	}
	if lastDone != int64(len(archive)) || lastTotal != int64(len(archive)) {
		t.Errorf("progress = %d/%d, want %d/%d", lastDone, lastTotal, len(archive), len(archive))
	}

	entries, err := os.ReadDir(filepath.Dir(execPath))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".ribbon-update") {
			t.Errorf("staging leftovers not cleaned up: %s", e.Name())
		}
	}
}

func TestUpdaterReportsPhases(t *testing.T) {
	archive := buildTarball(t, map[string]string{"ribbon": "new binary"})
	server := releaseServer(t, archive, sha256Hex(archive))

	tests := []struct {
		name      string
		checksums bool
		want      []Phase
	}{
		{"with checksums", true, []Phase{PhaseDownload, PhaseVerify, PhaseInstall}},
		{"without checksums", false, []Phase{PhaseDownload, PhaseInstall}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var phases []Phase
			opts := []UpdaterOption{WithPhaseFunc(func(p Phase) { phases = append(phases, p) })}
			if tt.checksums {
				opts = append(opts, WithChecksumsURL(server.URL+"/v{version}/checksums.txt"))
			}
			u := newTestUpdater(server.URL, installFakeBinary(t, "old binary"), opts...)
			if err := u.Update(context.Background(), "1.0.1"); err != nil {
				t.Fatalf("Update() error: %v", err)
			}
			if !slices.Equal(phases, tt.want) {
				t.Errorf("phases = %v, want %v", phases, tt.want)
			}
		})
	}
}

func TestUpdaterChecksumMismatchKeepsBinary(t *testing.T) {
	archive := buildTarball(t, map[string]string{"ribbon": "new binary"})
	server := releaseServer(t, archive, strings.Repeat("a", 64))
	execPath := installFakeBinary(t, "old binary")

	u := newTestUpdater(server.URL, execPath, WithChecksumsURL(server.URL+"/v{version}/checksums.txt"))

	err := u.Update(context.Background(), "1.0.1")
	if !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("Update() error = %v, want ErrChecksumMismatch", err)
	}
	got, _ := os.ReadFile(execPath)
	if string(got) != "old binary" {
		t.Errorf("binary should be untouched, got %q", got)
	}
}

func TestUpdaterMissingAsset(t *testing.T) {
	server := releaseServer(t, nil, "")
	execPath := installFakeBinary(t, "old binary")
	u := newTestUpdater(server.URL, execPath)

	err := u.Update(context.Background(), "9.9.9")
	if !errors.Is(err, ErrDownloadFailed) {
		t.Fatalf("Update() error = %v, want ErrDownloadFailed", err)
	}
}

func TestUpdaterArchiveWithoutBinary(t *testing.T) {
	archive := buildTarball(t, map[string]string{"other-tool": "x"})
	server := releaseServer(t, archive, sha256Hex(archive))
	execPath := installFakeBinary(t, "old binary")
	u := newTestUpdater(server.URL, execPath)

	err := u.Update(context.Background(), "1.0.1")
	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("Update() error = %v, want ErrExtractionFailed", err)
	}
}

func TestUpdaterWindowsRefuses(t *testing.T) {
	u := NewUpdater("unused", WithExecutablePath(filepath.Join(t.TempDir(), "ribbon.exe")))
	u.goos = "windows"
	if err := u.Update(context.Background(), "1.0.1"); !errors.Is(err, ErrWindowsNoAutoUpdate) {
		t.Fatalf("Update() error = %v, want ErrWindowsNoAutoUpdate", err)
	}
}

func TestUpdaterRollback(t *testing.T) {
	execPath := installFakeBinary(t, "new binary")
	u := NewUpdater("unused", WithExecutablePath(execPath))

	if err := u.Rollback(); !errors.Is(err, ErrNoBackup) {
		t.Fatalf("Rollback() without backup error = %v, want ErrNoBackup", err)
	}

	if err := os.WriteFile(execPath+backupSuffix, []byte("old binary"), 0755); err != nil {
		t.Fatalf("write backup: %v", err)
	}
	if err := u.Rollback(); err != nil {
		t.Fatalf("Rollback() error: %v", err)
	}
	got, _ := os.ReadFile(execPath)
	if string(got) != "old binary" {
		t.Errorf("binary after rollback = %q, want %q", got, "old binary")
	}
}

func TestParseChecksumFile(t *testing.T) {
	input := `# release checksums
abc123  ribbon_linux_amd64.tar.gz
def456 *./dist/ribbon_darwin_arm64.tar.gz

malformed-line
`
	sums, err := ParseChecksumFile(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseChecksumFile() error: %v", err)
	}
	if len(sums) != 2 {
		t.Fatalf("got %d entries, want 2: %v", len(sums), sums)
	}
	if sums["ribbon_linux_amd64.tar.gz"] != "abc123" {
		t.Errorf("linux checksum = %q", sums["ribbon_linux_amd64.tar.gz"])
	}
	if sums["ribbon_darwin_arm64.tar.gz"] != "def456" {
		t.Errorf("darwin checksum = %q", sums["ribbon_darwin_arm64.tar.gz"])
	}
}

func TestVerifyChecksumCaseInsensitive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blob")
	content := []byte("ribbon")
	if err := os.WriteFile(path, content, 0600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := VerifyChecksum(path, strings.ToUpper(sha256Hex(content))); err != nil {
		t.Fatalf("VerifyChecksum() error: %v", err)
	}
	if err := VerifyChecksum(path, sha256Hex([]byte("other"))); !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("VerifyChecksum() error = %v, want ErrChecksumMismatch", err)
	}
}

func TestAssetName(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://dl.test/v1/ribbon_linux_amd64.tar.gz", "ribbon_linux_amd64.tar.gz"},
		{"https://dl.test/v1/ribbon_linux_amd64.tar.gz?token=abc", "ribbon_linux_amd64.tar.gz"},
		{"https://dl.test/", "dl.test"},
	}
	for _, tt := range tests {
		if got := assetName(tt.url); got != tt.want {
			t.Errorf("assetName(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}
