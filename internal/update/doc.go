// Package update provides version checking and self-update functionality.
//
// This package handles:
//   - Fetching the published version string from a plain-text URL
//   - Comparing dotted numeric versions after normalization
//   - Downloading a release archive and verifying its checksum
//   - Swapping the running binary atomically, with rollback
//
// The package is isolated from UI concerns. It returns structured data
// (UpdateInfo) and typed errors that the caller presents however it wants.
//
// Example usage:
//
//	checker := update.NewChecker(settings.VersionURL)
//	info, err := checker.Check(ctx, currentVersion)
//	if err != nil {
//	    // handle error
//	}
//	if info.UpdateAvailable {
//	    err = update.NewUpdater(settings.AssetURL).Update(ctx, info.LatestVersion.String())
//	}
package update
