package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"log/slog"

	dbfs "github.com/hirepipe/hirepipe/db"
	"github.com/hirepipe/hirepipe/internal/db"
	"github.com/hirepipe/hirepipe/internal/repository/sqlite"
	"github.com/hirepipe/hirepipe/pkg/models"
	"github.com/hirepipe/hirepipe/pkg/repository"
)

func newTestRepo(t *testing.T) *sqlite.SQLiteRepo {
	t.Helper()
	ctx := context.Background()
	logger := slog.Default()

	d, err := db.New(ctx, "file:"+t.Name()+"?mode=memory&cache=shared", logger)
	if err != nil {
		t.Fatalf("db.New: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	if err := db.Migrate(ctx, d, dbfs.Migrations, dbfs.SeedFiles); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return sqlite.New(d, logger)
}

func TestStateStore_GetMissing(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetState(context.Background(), "nope")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStateStore_PutGetRoundtrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	state := models.NewWorkflowState("J1", "backend_engineer", "build APIs", []string{"resume A", "resume B"})
	if err := repo.PutState(ctx, state); err != nil {
		t.Fatalf("put: %v", err)
	}
	if state.Version != 1 {
		t.Fatalf("expected version bump to 1, got %d", state.Version)
	}

	got, err := repo.GetState(ctx, "J1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.JobID != "J1" || got.Stage != models.StageScreening || len(got.Resumes) != 2 {
		t.Fatalf("unexpected state after roundtrip: %+v", got)
	}
}

func TestStateStore_PutReplacesWholeRecord(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	state := models.NewWorkflowState("J1", "backend_engineer", "jd", []string{"r1"})
	if err := repo.PutState(ctx, state); err != nil {
		t.Fatalf("put 1: %v", err)
	}

	state.Stage = models.StageInterviewing
	state.ScreeningResults = []models.ScreeningResult{{CandidateID: "cand-1", Score: 0.9, Decision: models.ScreeningShortlist}}
	if err := repo.PutState(ctx, state); err != nil {
		t.Fatalf("put 2: %v", err)
	}

	got, err := repo.GetState(ctx, "J1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Version != 2 {
		t.Fatalf("expected version 2, got %d", got.Version)
	}
	if got.Stage != models.StageInterviewing || len(got.ScreeningResults) != 1 {
		t.Fatalf("replacement not applied: %+v", got)
	}

	snaps, err := repo.ListSnapshots(ctx, "J1")
	if err != nil {
		t.Fatalf("snapshots: %v", err)
	}
	if len(snaps) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(snaps))
	}
	if snaps[0].Version != 1 || snaps[1].Version != 2 {
		t.Fatalf("snapshot versions out of order: %+v", snaps)
	}
}

func TestStateStore_KeepsEmptyStageMarkers(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	// A zero-resume requisition checkpointed after screening: both slices
	// are empty but present, which is what marks the stages as done.
	st := models.NewWorkflowState("job-markers", "backend_engineer", "jd", nil)
	st.Stage = models.StageInterviewing
	st.ScreeningResults = []models.ScreeningResult{}
	st.Interviews = []models.CandidateInterview{}

	if err := repo.PutState(ctx, st); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := repo.GetState(ctx, "job-markers")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if !got.Screened() {
		t.Fatal("screening marker lost in store round trip")
	}
	if !got.InterviewsInitialized() {
		t.Fatal("interview marker lost in store round trip")
	}
}

func TestStateStore_ListJobIDs(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, id := range []string{"J2", "J1"} {
		if err := repo.PutState(ctx, models.NewWorkflowState(id, "r", "jd", nil)); err != nil {
			t.Fatalf("put %s: %v", id, err)
		}
	}

	ids, err := repo.ListJobIDs(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ids) != 2 || ids[0] != "J1" || ids[1] != "J2" {
		t.Fatalf("unexpected ids: %v", ids)
	}
}

func TestSlots_BookIsAtomic(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.AddSlots(ctx, "backend_engineer", []string{"mon 10:00", "mon 11:00"}); err != nil {
		t.Fatalf("add slots: %v", err)
	}
	// re-seeding must not duplicate
	if err := repo.AddSlots(ctx, "backend_engineer", []string{"mon 10:00"}); err != nil {
		t.Fatalf("re-add slots: %v", err)
	}

	avail, err := repo.AvailableSlots(ctx, "backend_engineer")
	if err != nil {
		t.Fatalf("available: %v", err)
	}
	if len(avail) != 2 {
		t.Fatalf("expected 2 available slots, got %v", avail)
	}

	if err := repo.BookSlot(ctx, "backend_engineer", "mon 10:00", "cand-1"); err != nil {
		t.Fatalf("book: %v", err)
	}
	// double booking the same slot must fail
	if err := repo.BookSlot(ctx, "backend_engineer", "mon 10:00", "cand-2"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on double booking, got %v", err)
	}

	avail, err = repo.AvailableSlots(ctx, "backend_engineer")
	if err != nil {
		t.Fatalf("available: %v", err)
	}
	if len(avail) != 1 || avail[0] != "mon 11:00" {
		t.Fatalf("unexpected availability after booking: %v", avail)
	}
}

func TestUsers_CreateAndLookup(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.CreateUser(ctx, &models.HRUser{Name: "Sam", Email: "sam@example.com", PasswordHash: "hash"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if id <= 0 {
		t.Fatalf("expected positive id, got %d", id)
	}

	u, err := repo.GetUserByEmail(ctx, "sam@example.com")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if u.Name != "Sam" || u.PasswordHash != "hash" {
		t.Fatalf("unexpected user: %+v", u)
	}

	if _, err := repo.GetUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSeededTemplatesAndSchemas(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, name := range []string{"screening", "feedback", "report"} {
		tpl, err := repo.GetTemplate(ctx, name, "v1")
		if err != nil {
			t.Fatalf("get template %s: %v", name, err)
		}
		if tpl == nil || tpl.TemplateTxt == "" {
			t.Fatalf("template %s:v1 not seeded", name)
		}
	}

	schemas, err := repo.ListSchemas(ctx)
	if err != nil {
		t.Fatalf("list schemas: %v", err)
	}
	if len(schemas) != 2 {
		t.Fatalf("expected 2 seeded schemas, got %d", len(schemas))
	}
}
