// Package assets downloads team kit and logo images and installs them into
// the game folder.
//
// This package provides:
//   - Fetcher: a single-file HTTP download with bounded retry
//   - Dispatcher: concurrent per-team downloads on a fixed-size worker pool
//   - Normalizer: downscales oversized images in place
//   - Copier: copies the kit and logo folders into the game installation
//
// Download failures never surface as errors; they are logged and reported
// through the per-team results so one bad team cannot stop the others.
package assets
