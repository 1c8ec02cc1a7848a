package main

import (
	"errors"
	"fmt"
	"strings"

	rberrors "ribbon/internal/errors"
	"ribbon/internal/update"
)

func updatedMessage(latest string) string {
	return fmt.Sprintf("Update to version %s\nPlease launch the app again.", latest)
}

func upToDateMessage(current string) string {
	return fmt.Sprintf("version %s is currently the newest version available.", current)
}

func updateAvailableMessage(current, latest string) string {
	return fmt.Sprintf("version %s is available (installed: %s).\nRun `ribbon update` to install it.", latest, current)
}

// describeUpdateError turns an update failure into alert text. fatal is
// false for conditions that are expected, like running a development build.
func describeUpdateError(err error) (msg string, fatal bool) {
	if err == nil {
		return "", false
	}
	detail := strings.TrimSpace(err.Error())
	if detail == "" {
		detail = "unknown error"
	}

	switch {
	case errors.Is(err, update.ErrDevelopmentBuild):
		return "This is a development build, so update checks are disabled.", false
	case errors.Is(err, update.ErrWindowsNoAutoUpdate):
		return "Automatic updates are not supported on Windows.\nPlease download the new version manually.", true
	case errors.Is(err, update.ErrPermissionDenied):
		return fmt.Sprintf("Could not replace the ribbon binary.\n%s\nTry again with write access to its directory.", detail), true
	case errors.Is(err, update.ErrChecksumMismatch):
		return fmt.Sprintf("The downloaded update did not match its checksum, so it was not installed.\n%s", detail), true
	case errors.Is(err, update.ErrNoBackup):
		return fmt.Sprintf("There is no previous version to restore.\n%s", detail), true
	}

	switch rberrors.CodeOf(err) {
	case rberrors.CodeNetworkFailed:
		return fmt.Sprintf("Could not reach the update server.\n%s", detail), true
	case rberrors.CodeInvalidVersion:
		return fmt.Sprintf("Could not compare versions.\n%s", detail), true
	default:
		return fmt.Sprintf("Update failed.\n%s", detail), true
	}
}
