package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	apptransfers "github.com/GOLDENPLIX/pes-2013-updater/internal/app/transfers"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/assets"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/backup"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/csvtable"
	domaintransfers "github.com/GOLDENPLIX/pes-2013-updater/internal/domain/transfers"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/metrics"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/playerdb"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/providers"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/store"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/teststubs"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/testutil"
)

type stubBackup struct {
	path  string
	errs  []error
	calls int
}

func (s *stubBackup) Run(context.Context) (string, error) {
	s.calls++
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return "", err
		}
	}
	return s.path, nil
}

type stubFetcher struct {
	set     domaintransfers.RecordSet
	path    string
	saveErr error
	saved   int
}

func (s *stubFetcher) FetchTransferData(context.Context) domaintransfers.RecordSet { return s.set }

func (s *stubFetcher) SaveBatch(domaintransfers.RecordSet) (string, error) {
	s.saved++
	return s.path, s.saveErr
}

type stubDatabase struct {
	result playerdb.Result
	err    error
	calls  int
	paths  []string
}

func (s *stubDatabase) Run(_ context.Context, path string) (playerdb.Result, error) {
	s.calls++
	s.paths = append(s.paths, path)
	return s.result, s.err
}

type stubDownloads struct {
	calls int
}

func (s *stubDownloads) FetchAll(_ context.Context, teams []string) map[string]*assets.TeamResult {
	s.calls++
	out := make(map[string]*assets.TeamResult, len(teams))
	for _, team := range teams {
		out[team] = &assets.TeamResult{Logo: true, Kit: true}
	}
	return out
}

type stubInstaller struct {
	errs  []error
	calls int
}

func (s *stubInstaller) Copy(context.Context) (assets.CopyResult, error) {
	s.calls++
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return assets.CopyResult{}, err
		}
	}
	return assets.CopyResult{Kits: 2, Logos: 2}, nil
}

func oneTransfer() domaintransfers.RecordSet {
	return teststubs.TransferSet([4]string{"John Doe", "Old Team", "New Team", "2024-01-01"})
}

func TestRunExecutesStepsInOrder(t *testing.T) {
	bk := &stubBackup{path: "backups/pes_backup_1"}
	fetch := &stubFetcher{set: oneTransfer(), path: "data/transfers_1.csv"}
	db := &stubDatabase{result: playerdb.Result{Transfers: 1, Matched: 1}}
	dl := &stubDownloads{}
	inst := &stubInstaller{}
	journal := store.NewMemoryStore()
	recorder := metrics.NewRecorder()

	p := New(Config{
		Backup: bk, Transfers: fetch, Database: db, Downloads: dl, Installer: inst,
		Teams:   []string{"Arsenal", "Chelsea"},
		Journal: journal, Recorder: recorder,
	})
	report, err := p.Run(context.Background(), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var names []string
	for _, s := range report.Steps {
		names = append(names, s.Name)
		if s.Status != store.StatusSucceeded || s.Attempts != 1 {
			t.Fatalf("unexpected step %+v", s)
		}
	}
	if strings.Join(names, ",") != "backup,fetch-transfers,update-database,copy-assets" {
		t.Fatalf("unexpected step order %v", names)
	}
	if db.paths[0] != "data/transfers_1.csv" {
		t.Fatalf("expected fetched batch to feed the update, got %q", db.paths[0])
	}
	if report.BackupPath != bk.path || report.Transfers != 1 || report.Assets.Full != 2 || report.Copied.Kits != 2 {
		t.Fatalf("unexpected report %+v", report)
	}

	saved, err := journal.GetRun(context.Background(), report.RunID)
	if err != nil {
		t.Fatalf("journal lookup: %v", err)
	}
	if saved.Status != store.StatusSucceeded || len(saved.Steps) != 4 {
		t.Fatalf("unexpected journaled run %+v", saved)
	}
	if recorder.Runs().Runs != 1 || recorder.Step(StepBackup).Attempts != 1 {
		t.Fatalf("expected run and step metrics to be recorded")
	}
}

func TestRunRetriesFailingStep(t *testing.T) {
	bk := &stubBackup{errs: []error{errors.New("disk busy"), errors.New("disk busy")}}
	recorder := metrics.NewRecorder()
	p := New(Config{Backup: bk, Attempts: 3, Recorder: recorder})

	report, err := p.Run(context.Background(), Options{Assets: true})
	if err != nil {
		t.Fatalf("expected success on third attempt, got %v", err)
	}
	if bk.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", bk.calls)
	}
	if s, _ := report.Step(StepBackup); s.Attempts != 3 {
		t.Fatalf("expected journaled attempts 3, got %d", s.Attempts)
	}
	if got := recorder.Step(StepBackup); got.Attempts != 3 || got.Errors != 2 {
		t.Fatalf("unexpected step metrics %+v", got)
	}
}

func TestRunAbortsAfterExhaustedStep(t *testing.T) {
	boom := errors.New("no space left")
	bk := &stubBackup{errs: []error{boom, boom, boom}}
	fetch := &stubFetcher{set: oneTransfer()}
	journal := store.NewMemoryStore()
	p := New(Config{Backup: bk, Transfers: fetch, Attempts: 3, Journal: journal})

	report, err := p.Run(context.Background(), Options{})
	var stepErr *StepError
	if !errors.As(err, &stepErr) {
		t.Fatalf("expected StepError, got %v", err)
	}
	if stepErr.Step != StepBackup || stepErr.Attempts != 3 || !errors.Is(err, boom) {
		t.Fatalf("unexpected step error %+v", stepErr)
	}
	if fetch.saved != 0 {
		t.Fatalf("expected later steps to be skipped")
	}
	if len(report.Steps) != 1 || report.Steps[0].Status != store.StatusFailed {
		t.Fatalf("unexpected steps %+v", report.Steps)
	}
	run, _ := journal.GetRun(context.Background(), report.RunID)
	if run.Status != store.StatusFailed || !strings.Contains(run.Error, "no space left") {
		t.Fatalf("expected failed run in journal, got %+v", run)
	}
}

func TestRunSkipsUpdateWhenFetchIsEmpty(t *testing.T) {
	fetch := &stubFetcher{set: domaintransfers.RecordSet{}}
	db := &stubDatabase{}
	p := New(Config{Transfers: fetch, Database: db})

	report, err := p.Run(context.Background(), Options{Transfers: true, Database: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if db.calls != 0 || fetch.saved != 0 {
		t.Fatalf("expected no batch and no update, got saves=%d updates=%d", fetch.saved, db.calls)
	}
	if s, ok := report.Step(StepUpdateDatabase); !ok || s.Status != store.StatusSkipped {
		t.Fatalf("expected skipped update step, got %+v", s)
	}
}

func TestRunDatabaseOnlyUsesLatestBatch(t *testing.T) {
	db := &stubDatabase{result: playerdb.Result{Transfers: 2}}
	p := New(Config{Database: db})

	if _, err := p.Run(context.Background(), Options{Database: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(db.paths) != 1 || db.paths[0] != "" {
		t.Fatalf("expected updater to pick the newest batch, got %v", db.paths)
	}
}

func TestUpdateStepTreatsMissingBatchAsNothingToDo(t *testing.T) {
	db := &stubDatabase{err: playerdb.ErrNoTransferFile}
	p := New(Config{Database: db, Attempts: 3})

	if _, err := p.Run(context.Background(), Options{Database: true}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if db.calls != 1 {
		t.Fatalf("expected a single attempt, got %d", db.calls)
	}
}

func TestMissingStoreDoesNotAbortRun(t *testing.T) {
	root := t.TempDir()
	batch := testutil.WriteCSV(t, filepath.Join(root, "transfers"), "transfers_20240101_000000.csv",
		[]string{"player_name", "from_team", "to_team", "transfer_date", "transfer_fee"},
		[]string{"John Doe", "Old Team", "New Team", "2024-01-01", "1"},
	)
	updater := playerdb.New(playerdb.Config{
		StorePath:   filepath.Join(root, "db", "missing.csv"),
		BackupDir:   filepath.Join(root, "db_backup"),
		TransferDir: filepath.Dir(batch),
	})
	installer := &stubInstaller{}
	p := New(Config{Database: updater, Installer: installer, Attempts: 3})

	report, err := p.Run(context.Background(), Options{Database: true, Assets: true})
	if err != nil {
		t.Fatalf("expected missing store to be non-fatal, got %v", err)
	}
	step, ok := report.Step(StepUpdateDatabase)
	if !ok || step.Attempts != 1 || step.Status != store.StatusSucceeded {
		t.Fatalf("expected a single successful attempt, got %+v", step)
	}
	if installer.calls != 1 {
		t.Fatalf("expected copy-assets to run, got %d calls", installer.calls)
	}
}

func TestUpdateStepDoesNotRetryMalformedFiles(t *testing.T) {
	db := &stubDatabase{err: csvtable.ErrMissingColumn}
	p := New(Config{Database: db, Attempts: 3})

	_, err := p.Run(context.Background(), Options{Database: true})
	if !errors.Is(err, playerdb.ErrMissingColumn) {
		t.Fatalf("expected missing column error, got %v", err)
	}
	if db.calls != 1 {
		t.Fatalf("expected no retries for malformed data, got %d calls", db.calls)
	}
}

func TestCopyAssetsDownloadsOnceAcrossRetries(t *testing.T) {
	dl := &stubDownloads{}
	inst := &stubInstaller{errs: []error{errors.New("locked")}}
	p := New(Config{Downloads: dl, Installer: inst, Teams: []string{"Arsenal"}, Attempts: 2})

	if _, err := p.Run(context.Background(), Options{Assets: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dl.calls != 1 || inst.calls != 2 {
		t.Fatalf("expected one download and two copies, got %d/%d", dl.calls, inst.calls)
	}
}

func TestRunStopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	bk := &stubBackup{errs: []error{context.Canceled}}
	p := New(Config{Backup: bk, Attempts: 3})

	_, err := p.Run(ctx, Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
	if bk.calls != 1 {
		t.Fatalf("expected no retries after cancel, got %d", bk.calls)
	}
}

func TestOptionsDefaultToEverything(t *testing.T) {
	if got := (Options{}).normalize(); !got.Transfers || !got.Database || !got.Assets {
		t.Fatalf("expected all steps, got %+v", got)
	}
	if got := (Options{Assets: true}).normalize(); got.Transfers || got.Database {
		t.Fatalf("expected only assets, got %+v", got)
	}
}

func TestRunEndToEnd(t *testing.T) {
	root := t.TempDir()
	pesFolder := filepath.Join(root, "PES2013")
	testutil.WriteFile(t, pesFolder, "pes2013.exe", "binary")
	storePath := testutil.WriteCSV(t, filepath.Join(root, "db"), "players.csv",
		[]string{"name", "team", "rating"},
		[]string{"John Doe", "Old Team", "80"},
		[]string{"Jane Roe", "Other Team", "75"},
	)
	kits := filepath.Join(root, "kits")
	logos := filepath.Join(root, "logos")
	testutil.WriteFile(t, kits, "arsenal_kit.png", "kit")
	testutil.WriteFile(t, logos, "arsenal_logo.png", "logo")

	source := &teststubs.StubSource{Set: oneTransfer()}
	processor := apptransfers.NewProcessor(apptransfers.Config{
		Sources: []providers.TransferSource{source},
		DataDir: filepath.Join(root, "transfers"),
	})
	updater := playerdb.New(playerdb.Config{
		StorePath:   storePath,
		BackupDir:   filepath.Join(root, "db_backup"),
		TransferDir: filepath.Join(root, "transfers"),
	})
	logger, buf := testutil.NewBufferLogger()

	p := New(Config{
		Backup:    backup.Folder{Source: pesFolder, Dir: filepath.Join(root, "backups")},
		Transfers: processor,
		Database:  updater,
		Installer: assets.Copier{KitFolder: kits, LogoFolder: logos, PESFolder: pesFolder},
		Journal:   store.NewMemoryStore(),
		Logger:    logger,
	})
	report, err := p.Run(context.Background(), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Database.Matched != 1 || report.Database.Rows != 2 {
		t.Fatalf("unexpected database result %+v", report.Database)
	}
	table, err := csvtable.Read(storePath)
	if err != nil {
		t.Fatalf("read store: %v", err)
	}
	if table.Get(0, "team") != "New Team" || table.Get(1, "team") != "Other Team" {
		t.Fatalf("unexpected store contents %v", table.Rows)
	}
	if _, err := os.Stat(filepath.Join(report.BackupPath, "pes2013.exe")); err != nil {
		t.Fatalf("expected folder backup: %v", err)
	}
	if _, err := os.Stat(filepath.Join(pesFolder, "kits", "arsenal_kit.png")); err != nil {
		t.Fatalf("expected kits copied: %v", err)
	}
	if !strings.Contains(buf.String(), "run_id="+report.RunID) {
		t.Fatalf("expected run id in logs")
	}
}
