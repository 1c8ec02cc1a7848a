package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"

	"ribbon/internal/cache"
	"ribbon/internal/config"
	"ribbon/internal/countdown"
	"ribbon/internal/debug"
	rberrors "ribbon/internal/errors"
	"ribbon/internal/ui"
	"ribbon/internal/update"
)

// app carries the loaded settings and the terminal-facing seams the
// commands run through. Tests replace the function fields.
type app struct {
	stdout io.Writer
	stderr io.Writer

	settings config.Settings
	counter  countdown.Counter
	clock    countdown.Clock

	httpClient *http.Client
	executable string

	interactive func() bool
	termWidth   func() int
	profile     func() termenv.Profile

	menu     func(ctx context.Context, rows []ui.MenuRow) (ui.MenuRow, bool, error)
	alert    func(ctx context.Context, a ui.Alert) (int, error)
	preview  func(ctx context.Context, opts ui.PreviewOptions) error
	reporter func() (ui.Reporter, func())
}

func newApp(stdout, stderr io.Writer) *app {
	a := &app{
		stdout:      stdout,
		stderr:      stderr,
		clock:       time.Now,
		httpClient:  &http.Client{},
		interactive: func() bool { return isTerminal(stdout) },
		termWidth:   func() int { return terminalWidth(stdout) },
		profile:     func() termenv.Profile { return colorProfile(stdout) },
	}
	a.menu = func(ctx context.Context, rows []ui.MenuRow) (ui.MenuRow, bool, error) {
		return ui.RunMenu(rows, tea.WithContext(ctx), tea.WithOutput(a.stdout))
	}
	a.alert = func(ctx context.Context, al ui.Alert) (int, error) {
		return ui.RunAlert(al, tea.WithContext(ctx), tea.WithOutput(a.stdout))
	}
	a.preview = func(ctx context.Context, opts ui.PreviewOptions) error {
		return ui.RunPreview(opts, tea.WithContext(ctx), tea.WithOutput(a.stdout))
	}
	a.reporter = func() (ui.Reporter, func()) {
		if !isTerminal(a.stderr) {
			return ui.NopReporter{}, func() {}
		}
		d := ui.NewProgressDisplay(a.stderr)
		return d, d.Stop
	}
	return a
}

// loadOptions are the root flags that feed configuration.
type loadOptions struct {
	configPath string
	overrides  map[string]any
}

// load resolves configuration once per process and starts debug logging.
func (a *app) load(opts loadOptions) error {
	var cfgOpts []config.Option
	if opts.configPath != "" {
		cfgOpts = append(cfgOpts, config.WithUserConfig(opts.configPath))
	}
	if err := config.Initialize(cfgOpts...); err != nil {
		return rberrors.New(rberrors.CodeConfigurationError, "load configuration", err)
	}
	if err := config.ApplyOverrides(opts.overrides); err != nil {
		return rberrors.New(rberrors.CodeConfigurationError, "apply flags", err)
	}
	s, err := config.Load()
	if err != nil {
		return rberrors.New(rberrors.CodeConfigurationError, "invalid configuration", err)
	}

	if err := debug.Init(s.Debug); err != nil {
		_, _ = fmt.Fprintf(a.stderr, "Warning: debug logging disabled: %v\n", err)
	}

	counter, err := countdown.NewCounter(s.RememberDay, time.Local)
	if err != nil {
		return fmt.Errorf("%s: %w", config.KeyRememberDay, err)
	}
	counter.Clock = a.clock

	a.settings = s
	a.counter = counter
	debug.Logw("configuration loaded",
		"remember_day", s.RememberDay,
		"storage", s.CacheStorage,
		"format", s.OutputFormat,
		"palette", s.WidgetPalette,
	)
	return nil
}

// withTimeout applies network.timeout to ctx. Zero disables the limit.
func (a *app) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.settings.NetworkTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.settings.NetworkTimeout)
}

func (a *app) imageCache(progress func(done, total int64)) (*cache.Cache, error) {
	root, err := cache.DefaultRoot(a.settings.CacheStorage, a.settings.CacheDir)
	if err != nil {
		return nil, err
	}
	fetcher := &cache.HTTPFetcher{
		URL:      a.settings.ResourceURL,
		Client:   a.httpClient,
		Progress: progress,
	}
	return cache.New(root, cache.ResourceName, fetcher), nil
}

// ensureImage downloads the widget image if it is not cached yet and
// returns its path. A failed download is logged, not returned: the widget
// still renders with a placeholder.
func (a *app) ensureImage(ctx context.Context) (string, error) {
	c, err := a.imageCache(nil)
	if err != nil {
		return "", err
	}
	if c.Exists() {
		return c.Path(), nil
	}

	rep, stop := a.reporter()
	defer stop()
	rep.Stage(ui.StageFetchImage, "")
	c, err = a.imageCache(rep.Progress)
	if err != nil {
		return "", err
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	fetched, err := c.Ensure(ctx)
	if err != nil {
		debug.Error("fetch image", err)
		return c.Path(), nil
	}
	debug.Logw("image ready", "path", c.Path(), "fetched", fetched)
	return c.Path(), nil
}

// buildWidget rebuilds the whole view tree for the current time.
func (a *app) buildWidget(imagePath string) ui.Widget {
	palette, ok := ui.PaletteByName(a.settings.WidgetPalette)
	if !ok {
		debug.Logf("unknown palette %q, using %s", a.settings.WidgetPalette, palette.Name)
	}
	return ui.BuildWidget(ui.WidgetData{
		ImagePath:       imagePath,
		Caption:         a.settings.Caption,
		RememberDay:     a.settings.RememberDay,
		Days:            a.counter.Days(),
		DaySuffix:       a.settings.DaySuffix,
		RefreshInterval: a.settings.RefreshInterval,
		Now:             a.clock(),
		Palette:         palette,
	})
}

func (a *app) renderOptions(width int) ui.RenderOptions {
	if width <= 0 {
		width = ui.SmallWidth
	}
	if tw := a.termWidth(); tw > 0 && width > tw {
		width = tw
	}
	return ui.RenderOptions{Width: width, Profile: a.profile()}
}

// widgetOptions are the flags of `ribbon widget`.
type widgetOptions struct {
	json  bool
	watch bool
	width int
}

// runWidget prints the compact widget, the non-interactive path.
func (a *app) runWidget(ctx context.Context, opts widgetOptions) error {
	path, err := a.ensureImage(ctx)
	if err != nil {
		return err
	}
	if !opts.watch {
		return a.printWidget(path, opts)
	}

	interval := a.settings.RefreshInterval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		clearScreen(a.stdout)
		if err := a.printWidget(path, opts); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

type widgetJSON struct {
	Title        string    `json:"title"`
	Caption      string    `json:"caption"`
	RememberDay  string    `json:"remember_day"`
	Days         int       `json:"days"`
	Counter      string    `json:"counter"`
	ImagePath    string    `json:"image_path"`
	RefreshAfter time.Time `json:"refresh_after"`
}

func (a *app) printWidget(path string, opts widgetOptions) error {
	w := a.buildWidget(path)
	if opts.json || a.settings.OutputJSON {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(widgetJSON{
			Title:        a.settings.Title,
			Caption:      a.settings.Caption,
			RememberDay:  a.settings.RememberDay,
			Days:         a.counter.Days(),
			Counter:      w.CounterText(),
			ImagePath:    path,
			RefreshAfter: w.RefreshAfter,
		})
	}
	_, err := fmt.Fprintln(a.stdout, ui.Render(w, a.renderOptions(opts.width)))
	return err
}

// runMenu shows the preferences menu and performs the chosen action.
// Action failures are reported through an alert and never returned.
func (a *app) runMenu(ctx context.Context) error {
	path, err := a.ensureImage(ctx)
	if err != nil {
		return err
	}

	row, ok, err := a.menu(ctx, ui.DefaultMenuRows(a.settings.Title, Version))
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	debug.Logw("menu selection", "action", row.Action.String())

	switch row.Action {
	case ui.ActionCheckUpdate:
		if err := a.runUpdate(ctx, false); err != nil {
			debug.Error("menu update", err)
		}
	case ui.ActionPreview:
		if err := a.runPreview(ctx, path, false); err != nil {
			debug.Error("menu preview", err)
			a.showAlert(ctx, err.Error())
		}
	case ui.ActionClearCache:
		if err := a.clearCache(); err != nil {
			debug.Error("menu clear cache", err)
			a.showAlert(ctx, err.Error())
		}
	}
	return nil
}

func (a *app) runPreview(ctx context.Context, path string, watch bool) error {
	return a.preview(ctx, ui.PreviewOptions{
		Build:    func() ui.Widget { return a.buildWidget(path) },
		Render:   a.renderOptions(ui.SmallWidth),
		Watch:    watch,
		Interval: a.settings.RefreshInterval,
	})
}

func (a *app) clearCache() error {
	c, err := a.imageCache(nil)
	if err != nil {
		return err
	}
	return c.Clear()
}

// showAlert presents message with a single OK button. Without a terminal
// the alert is printed instead.
func (a *app) showAlert(ctx context.Context, message string) {
	al := ui.Alert{
		Title:   a.settings.Title + " Widget",
		Message: message,
		Format:  a.settings.OutputFormat,
	}
	if !a.interactive() {
		if err := ui.PrintAlert(a.stdout, al); err != nil {
			debug.Error("print alert", err)
		}
		return
	}
	if _, err := a.alert(ctx, al); err != nil {
		debug.Error("show alert", err)
	}
}

// networkClient copies the shared client with network.timeout applied.
// Zero leaves requests unbounded.
func (a *app) networkClient() *http.Client {
	client := *a.httpClient
	client.Timeout = a.settings.NetworkTimeout
	return &client
}

func (a *app) checkForUpdate(ctx context.Context) (*update.UpdateInfo, error) {
	checker := update.NewChecker(a.settings.VersionURL,
		update.WithHTTPClient(a.networkClient()),
		update.WithAssetURL(a.settings.AssetURL),
	)
	info, err := checker.Check(ctx, Version)
	if err != nil {
		return nil, err
	}
	debug.Logw("update check",
		"current", info.CurrentVersion.String(),
		"latest", info.LatestVersion.String(),
		"available", info.UpdateAvailable,
	)
	return info, nil
}

// runUpdate checks for a newer release and, unless checkOnly, installs it.
// The outcome is always shown as an alert; the returned error is non-nil
// only for failures that should fail the command.
func (a *app) runUpdate(ctx context.Context, checkOnly bool) error {
	rep, stop := a.reporter()
	rep.Stage(ui.StageCheckVersion, "")
	info, err := a.checkForUpdate(ctx)
	if err != nil {
		stop()
		return a.reportUpdateError(ctx, err)
	}

	current, latest := info.CurrentVersion.String(), info.LatestVersion.String()
	if !info.UpdateAvailable {
		stop()
		a.showAlert(ctx, upToDateMessage(current))
		return nil
	}
	if checkOnly {
		stop()
		a.showAlert(ctx, updateAvailableMessage(current, latest))
		return nil
	}

	opts := []update.UpdaterOption{
		update.WithUpdaterHTTPClient(a.networkClient()),
		update.WithProgress(rep.Progress),
		update.WithPhaseFunc(func(p update.Phase) { rep.Stage(updateStage(p), latest) }),
	}
	if a.settings.ChecksumsURL != "" {
		opts = append(opts, update.WithChecksumsURL(a.settings.ChecksumsURL))
	}
	if a.executable != "" {
		opts = append(opts, update.WithExecutablePath(a.executable))
	}
	err = update.NewUpdater(a.settings.AssetURL, opts...).Update(ctx, latest)
	if err != nil {
		stop()
		return a.reportUpdateError(ctx, err)
	}
	rep.Stage(ui.StageDone, latest)
	stop()
	a.showAlert(ctx, updatedMessage(latest))
	return nil
}

func updateStage(p update.Phase) ui.Stage {
	switch p {
	case update.PhaseVerify:
		return ui.StageVerify
	case update.PhaseInstall:
		return ui.StageInstall
	default:
		return ui.StageDownloadUpdate
	}
}

func (a *app) reportUpdateError(ctx context.Context, err error) error {
	msg, fatal := describeUpdateError(err)
	debug.Error("update", err)
	a.showAlert(ctx, msg)
	if !fatal {
		return nil
	}
	return reportedError{err: err}
}

// reportedError marks a failure the user has already been shown.
type reportedError struct {
	err error
}

func (e reportedError) Error() string { return e.err.Error() }

func (e reportedError) Unwrap() error { return e.err }

func (a *app) rollback() error {
	var opts []update.UpdaterOption
	if a.executable != "" {
		opts = append(opts, update.WithExecutablePath(a.executable))
	}
	if err := update.NewUpdater(a.settings.AssetURL, opts...).Rollback(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(a.stdout, "Restored the previous version.")
	return err
}
