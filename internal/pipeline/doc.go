// Package pipeline sequences the updater's steps: backup, fetch-transfers,
// update-database and copy-assets. Each step is retried with exponential
// backoff and an exhausted step aborts the rest of the run.
package pipeline
