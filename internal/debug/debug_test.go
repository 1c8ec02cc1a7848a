package debug

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// withTempLog points the logger at a file inside t.TempDir and returns its path.
func withTempLog(t *testing.T) string {
	t.Helper()
	resetForTest()

	logPath := filepath.Join(t.TempDir(), LogDirName, LogFileName)
	origGetLogPath := getLogPath
	getLogPath = func() (string, error) { return logPath, nil }
	t.Cleanup(func() {
		getLogPath = origGetLogPath
		Close()
		resetForTest()
	})
	return logPath
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	return string(content)
}

func TestInitDisabledIsNoop(t *testing.T) {
	resetForTest()
	t.Cleanup(resetForTest)

	if err := Init(false); err != nil {
		t.Fatalf("Init(false) failed: %v", err)
	}
	if Enabled() {
		t.Fatal("Enabled() should be false")
	}

	Log("ignored")
	Logf("ignored %d", 1)
	Logw("ignored", "k", "v")
	Error("ignored", errors.New("boom"))
}

func TestInitEnabledWritesMessages(t *testing.T) {
	logPath := withTempLog(t)

	if err := Init(true); err != nil {
		t.Fatalf("Init(true) failed: %v", err)
	}
	if !Enabled() {
		t.Fatal("Enabled() should be true")
	}

	Log("fetching ribbon image")
	Logf("elapsed %d days", 3653)
	Logw("cache hit", "path", "/tmp/ribbon.png")
	Error("check update", errors.New("status 404"))
	Error("never logged", nil)

	content := readLog(t, logPath)
	for _, want := range []string{
		"debug log started",
		"fetching ribbon image",
		"elapsed 3653 days",
		"cache hit",
		"/tmp/ribbon.png",
		"check update",
		"status 404",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("log file missing %q\n%s", want, content)
		}
	}
	if strings.Contains(content, "never logged") {
		t.Error("nil errors should not be logged")
	}
}

func TestInitTruncatesExistingLog(t *testing.T) {
	logPath := withTempLog(t)

	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(logPath, []byte("stale content\n"), 0600); err != nil {
		t.Fatalf("seed log: %v", err)
	}

	if err := Init(true); err != nil {
		t.Fatalf("Init(true) failed: %v", err)
	}

	content := readLog(t, logPath)
	if strings.Contains(content, "stale content") {
		t.Error("log file should have been truncated")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	withTempLog(t)

	if err := Init(true); err != nil {
		t.Fatalf("Init(true) failed: %v", err)
	}
	Close()
	Close()
}

func TestGetLogPathDefault(t *testing.T) {
	path, err := GetLogPath()
	if err != nil {
		t.Fatalf("GetLogPath() failed: %v", err)
	}
	want := filepath.Join(LogDirName, LogFileName)
	if !strings.HasSuffix(path, want) {
		t.Errorf("GetLogPath() = %q, want suffix %q", path, want)
	}
}

func resetForTest() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
	enabled = false
	logger = nil
}
