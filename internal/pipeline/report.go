package pipeline

import (
	"fmt"
	"time"

	"github.com/GOLDENPLIX/pes-2013-updater/internal/assets"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/playerdb"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/store"
)

// Step names as they appear in logs, metrics and the run journal.
const (
	StepBackup         = "backup"
	StepFetchTransfers = "fetch-transfers"
	StepUpdateDatabase = "update-database"
	StepCopyAssets     = "copy-assets"
)

// Options selects which steps run. The zero value runs everything.
type Options struct {
	Transfers bool
	Database  bool
	Assets    bool
}

func (o Options) normalize() Options {
	if !o.Transfers && !o.Database && !o.Assets {
		return Options{Transfers: true, Database: true, Assets: true}
	}
	return o
}

// StepError is returned when a step failed for good.
type StepError struct {
	Step     string
	Attempts int
	Err      error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s failed after %d attempt(s): %v", e.Step, e.Attempts, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Report summarizes a run.
type Report struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Steps      []store.Step

	BackupPath string
	BatchPath  string
	Transfers  int
	Database   playerdb.Result
	Assets     assets.Report
	Copied     assets.CopyResult
}

// Step returns the named step, if it ran.
func (r Report) Step(name string) (store.Step, bool) {
	for _, s := range r.Steps {
		if s.Name == name {
			return s, true
		}
	}
	return store.Step{}, false
}
