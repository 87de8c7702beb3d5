package catalog_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"shelve/internal/errdefs"
	"shelve/internal/scan"
	"shelve/internal/testsupport"
)

func testSnapshot(root string, files int) *scan.Snapshot {
	snapshot := &scan.Snapshot{
		ID:      uuid.NewString(),
		Root:    root,
		TakenAt: time.Now().UTC(),
	}
	for i := 0; i < files; i++ {
		name := fmt.Sprintf("file-%d.pdf", i)
		snapshot.Files = append(snapshot.Files, scan.File{
			Name:     name,
			Path:     root + "/" + name,
			Ext:      ".pdf",
			Size:     int64(1000 * (i + 1)),
			Modified: time.Now().Add(-time.Duration(i) * time.Hour).UTC(),
		})
	}
	return snapshot
}

func TestOpenInitializesSchema(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)

	if store.Path() != cfg.CatalogPath() {
		t.Fatalf("store path = %s, want %s", store.Path(), cfg.CatalogPath())
	}

	// Opening a second time must accept the existing schema.
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	reopened := testsupport.MustOpenCatalog(t, cfg)
	if _, err := reopened.ListSnapshots(context.Background(), 5); err != nil {
		t.Fatalf("ListSnapshots on reopened store failed: %v", err)
	}
}

func TestSaveAndGetSnapshot(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)

	ctx := context.Background()
	snapshot := testSnapshot(cfg.Paths.Root, 3)
	if err := store.SaveSnapshot(ctx, snapshot); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	fetched, err := store.GetSnapshot(ctx, snapshot.ID)
	if err != nil {
		t.Fatalf("GetSnapshot failed: %v", err)
	}
	if fetched.ID != snapshot.ID || fetched.Root != snapshot.Root {
		t.Fatalf("unexpected snapshot identity: %#v", fetched)
	}
	if len(fetched.Files) != len(snapshot.Files) {
		t.Fatalf("fetched %d files, want %d", len(fetched.Files), len(snapshot.Files))
	}
	for i, f := range fetched.Files {
		want := snapshot.Files[i]
		if f.Name != want.Name || f.Path != want.Path || f.Ext != want.Ext || f.Size != want.Size {
			t.Fatalf("file %d mismatch: got %#v want %#v", i, f, want)
		}
		if !f.Modified.Equal(want.Modified) {
			t.Fatalf("file %d modified time %v, want %v", i, f.Modified, want.Modified)
		}
	}
}

func TestGetSnapshotMissing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)

	_, err := store.GetSnapshot(context.Background(), "no-such-snapshot")
	if err == nil {
		t.Fatal("expected error for missing snapshot")
	}
	if !errors.Is(err, errdefs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListSnapshotsNewestFirst(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)

	ctx := context.Background()
	older := testSnapshot(cfg.Paths.Root, 1)
	older.TakenAt = time.Now().Add(-time.Hour).UTC()
	newer := testSnapshot(cfg.Paths.Root, 2)
	for _, snapshot := range []*scan.Snapshot{older, newer} {
		if err := store.SaveSnapshot(ctx, snapshot); err != nil {
			t.Fatalf("SaveSnapshot failed: %v", err)
		}
	}

	summaries, err := store.ListSnapshots(ctx, 10)
	if err != nil {
		t.Fatalf("ListSnapshots failed: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("listed %d snapshots, want 2", len(summaries))
	}
	if summaries[0].ID != newer.ID || summaries[1].ID != older.ID {
		t.Fatalf("unexpected order: %s then %s", summaries[0].ID, summaries[1].ID)
	}
	if summaries[0].FileCount != 2 || summaries[1].FileCount != 1 {
		t.Fatalf("unexpected file counts: %d and %d", summaries[0].FileCount, summaries[1].FileCount)
	}
}

func TestRunLifecycle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)

	ctx := context.Background()
	planID := uuid.NewString()
	runID, err := store.StartRun(ctx, planID, "snapshot-1", 4)
	if err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}
	if runID == 0 {
		t.Fatal("expected run id to be assigned")
	}

	started, err := store.FindRunByPlan(ctx, planID)
	if err != nil {
		t.Fatalf("FindRunByPlan failed: %v", err)
	}
	if started.State != "EXECUTING" {
		t.Fatalf("state before finish = %s, want EXECUTING", started.State)
	}
	if started.Finished() {
		t.Fatal("run should not be finished yet")
	}

	if err := store.FinishRun(ctx, runID, "COMMITTED", 4, 0, 0, ""); err != nil {
		t.Fatalf("FinishRun failed: %v", err)
	}

	finished, err := store.FindRunByPlan(ctx, planID)
	if err != nil {
		t.Fatalf("FindRunByPlan after finish failed: %v", err)
	}
	if finished.State != "COMMITTED" || finished.Applied != 4 {
		t.Fatalf("unexpected finished run: %#v", finished)
	}
	if !finished.Finished() {
		t.Fatal("run should report finished")
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)

	ctx := context.Background()
	var planIDs []string
	for i := 0; i < 3; i++ {
		planID := fmt.Sprintf("plan-%d", i)
		planIDs = append(planIDs, planID)
		runID, err := store.StartRun(ctx, planID, fmt.Sprintf("snapshot-%d", i), i+1)
		if err != nil {
			t.Fatalf("StartRun failed: %v", err)
		}
		state := "COMMITTED"
		if i == 1 {
			state = "ROLLED_BACK"
		}
		if err := store.FinishRun(ctx, runID, state, i+1, 0, 0, ""); err != nil {
			t.Fatalf("FinishRun failed: %v", err)
		}
	}

	runs, err := store.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("listed %d runs, want 2", len(runs))
	}
	if runs[0].PlanID != planIDs[2] || runs[1].PlanID != planIDs[1] {
		t.Fatalf("unexpected order: %s then %s", runs[0].PlanID, runs[1].PlanID)
	}
	if runs[1].State != "ROLLED_BACK" {
		t.Fatalf("run state = %s, want ROLLED_BACK", runs[1].State)
	}
}

func TestFindRunByPlanMissing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)

	_, err := store.FindRunByPlan(context.Background(), "never-ran")
	if !errors.Is(err, errdefs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveSnapshotTwiceFails(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)

	ctx := context.Background()
	snapshot := testSnapshot(cfg.Paths.Root, 1)
	if err := store.SaveSnapshot(ctx, snapshot); err != nil {
		t.Fatalf("first SaveSnapshot failed: %v", err)
	}
	if err := store.SaveSnapshot(ctx, snapshot); err == nil {
		t.Fatal("expected duplicate snapshot insert to fail")
	}
}
