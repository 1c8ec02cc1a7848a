package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ribbon/internal/config"
	"ribbon/internal/debug"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command line and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	defer debug.Close()

	root := newRootCmd(newApp(stdout, stderr))
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		var reported reportedError
		if !errors.As(err, &reported) {
			_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

type rootFlags struct {
	configPath string
	debug      bool
}

func newRootCmd(a *app) *cobra.Command {
	var flags rootFlags
	root := &cobra.Command{
		Use:   "ribbon",
		Short: "A daily remembrance widget for the terminal",
		Long: `Ribbon counts the days since a date worth remembering and shows them
as a small card with a ribbon image.

Run from a terminal it opens the preferences menu. Run from a script, a
status bar, or anything else that is not a terminal it prints the widget.

Examples:
  ribbon
  ribbon widget
  ribbon widget --json
  ribbon preview --watch
  ribbon update --check`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" || cmd.Name() == "help" {
				return nil
			}
			overrides := map[string]any{}
			if cmd.Flags().Changed("debug") {
				overrides[config.KeyDebug] = flags.debug
			}
			if cmd.Flags().Changed("json") {
				asJSON, _ := cmd.Flags().GetBool("json")
				overrides[config.KeyOutputJSON] = asJSON
			}
			return a.load(loadOptions{configPath: flags.configPath, overrides: overrides})
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.interactive() {
				return a.runMenu(cmd.Context())
			}
			return a.runWidget(cmd.Context(), widgetOptions{})
		},
	}

	root.PersistentFlags().StringVar(&flags.configPath, "config", "",
		"Config file to use instead of ~/.ribbon/config.yaml")
	root.PersistentFlags().BoolVar(&flags.debug, "debug", false,
		"Write a debug log to ~/.ribbon/debug.log")

	root.AddCommand(
		newWidgetCmd(a),
		newMenuCmd(a),
		newPreviewCmd(a),
		newUpdateCmd(a),
		newRollbackCmd(a),
		newClearCacheCmd(a),
		newVersionCmd(),
	)
	return root
}

func newWidgetCmd(a *app) *cobra.Command {
	var opts widgetOptions
	cmd := &cobra.Command{
		Use:   "widget",
		Short: "Print the widget card",
		Long: `Print the compact widget: the ribbon image, the caption, the remembered
date and the number of days since it.

Examples:
  ribbon widget
  ribbon widget --width 40
  ribbon widget --json
  ribbon widget --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runWidget(cmd.Context(), opts)
		},
	}
	cmd.Flags().BoolVar(&opts.json, "json", false, "Print the widget data as JSON")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Redraw every refresh interval until interrupted")
	cmd.Flags().IntVar(&opts.width, "width", 0, "Card width in columns (default 34)")
	return cmd
}

func newMenuCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Open the preferences menu",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runMenu(cmd.Context())
		},
	}
}

func newPreviewCmd(a *app) *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Preview the widget at its small size",
		Long: `Show the widget in the terminal until q is pressed. Press y to copy the
day counter to the clipboard.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := a.ensureImage(cmd.Context())
			if err != nil {
				return err
			}
			return a.runPreview(cmd.Context(), path, watch)
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Redraw every refresh interval")
	return cmd
}

func newUpdateCmd(a *app) *cobra.Command {
	var checkOnly bool
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update ribbon to the latest version",
		Long: `Compare the installed version with the published one and, when a newer
release exists, download it and replace the running binary. The previous
binary is kept next to it with a .backup suffix.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runUpdate(cmd.Context(), checkOnly)
		},
	}
	cmd.Flags().BoolVar(&checkOnly, "check", false, "Only report whether an update is available")
	return cmd
}

func newRollbackCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rollback",
		Short: "Restore the binary replaced by the last update",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return a.rollback()
		},
	}
}

func newClearCacheCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-cache",
		Short: "Delete the cached image",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.clearCache(); err != nil {
				return err
			}
			cmd.Println("Cache cleared.")
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			printVersion(cmd.OutOrStdout())
		},
	}
}
