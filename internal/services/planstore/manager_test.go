package planstore

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"bizplan/internal/models"
	"bizplan/internal/services/events"
	"bizplan/internal/services/plan"
	"bizplan/internal/services/storage"
)

var fixedNow = time.Date(2026, 2, 10, 9, 30, 0, 0, time.UTC)

func setGoals(g models.Goals2026) plan.Reducer {
	return func(doc *models.PlanDocument) (models.Change, error) {
		return plan.SetGoals(doc, g)
	}
}

func openManager(t *testing.T, backend Backend, pub events.Publisher) *Manager {
	t.Helper()
	m, err := Open(context.Background(), backend, ManagerOptions{
		Publisher: pub,
		Now:       func() time.Time { return fixedNow },
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { m.Close(context.Background()) })
	return m
}

func TestOpenEmptyBackend(t *testing.T) {
	m := openManager(t, NewMemory(), nil)

	doc, err := m.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	if doc.BaseScenario != models.Conservative {
		t.Errorf("base scenario = %s", doc.BaseScenario)
	}
	if len(doc.Scenarios2026) != len(models.ScenarioNames) {
		t.Errorf("scenarios = %d", len(doc.Scenarios2026))
	}
	if st := m.Status(); st.Pending || st.Saves != 0 || st.Backend != "memory" {
		t.Errorf("status = %+v", st)
	}
}

func TestApplyPersistsAndReloads(t *testing.T) {
	ctx := context.Background()
	backend := NewMemory()
	rec := &events.Recorder{}
	m := openManager(t, backend, rec)

	goals := models.Goals2026{AnnualRevenue: 1_200_000, NetMarginPercent: 12, Headcount: 8}
	change, err := m.Apply(ctx, setGoals(goals))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if change.Kind != models.ChangeGoals || !change.At.Equal(fixedNow) {
		t.Errorf("change = %+v", change)
	}
	if err := m.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	st := m.Status()
	if st.Pending || st.Saves != 1 || st.LastSavedAt == nil || !st.UpdatedAt.Equal(fixedNow) {
		t.Errorf("status = %+v", st)
	}
	if got := rec.Changes(); len(got) != 1 || got[0].Kind != models.ChangeGoals {
		t.Errorf("published = %+v", got)
	}

	reopened := openManager(t, backend, nil)
	err = reopened.View(func(doc *models.PlanDocument) error {
		if doc.Goals2026 != goals {
			t.Errorf("goals = %+v", doc.Goals2026)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestFailedReducerLeavesPlanUntouched(t *testing.T) {
	ctx := context.Background()
	m := openManager(t, NewMemory(), nil)

	_, err := m.Apply(ctx, func(doc *models.PlanDocument) (models.Change, error) {
		doc.Goals2026.AnnualRevenue = 999
		return plan.SelectBaseScenario(doc, "pessimistic")
	})
	if !errors.Is(err, plan.ErrUnknownScenario) {
		t.Fatalf("err = %v, want ErrUnknownScenario", err)
	}

	doc, _ := m.Snapshot()
	if doc.Goals2026.AnnualRevenue != 0 {
		t.Error("partial reducer result leaked into the plan")
	}
	if m.Status().Pending {
		t.Error("failed reducer should not queue a save")
	}
}

func TestSaveFailureIsReportedAndRetried(t *testing.T) {
	ctx := context.Background()
	backend := NewMemory()
	m := openManager(t, backend, nil)

	backend.FailWith(errors.New("disk full"))
	if _, err := m.Apply(ctx, setGoals(models.Goals2026{Headcount: 3})); err != nil {
		t.Fatalf("edits must not wait for the store: %v", err)
	}
	if err := m.Flush(ctx); err == nil {
		t.Fatal("expected flush error")
	}
	st := m.Status()
	if !st.Pending || st.LastError != "disk full" {
		t.Errorf("status = %+v", st)
	}

	backend.FailWith(nil)
	if err := m.Flush(ctx); err != nil {
		t.Fatalf("retry: %v", err)
	}
	st = m.Status()
	if st.Pending || st.LastError != "" || st.Saves != 1 {
		t.Errorf("status after retry = %+v", st)
	}
}

func TestConcurrentAppliesSaveLatestPlan(t *testing.T) {
	ctx := context.Background()
	backend := NewMemory()
	m := openManager(t, backend, nil)

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if _, err := m.Apply(ctx, setGoals(models.Goals2026{Headcount: n})); err != nil {
				t.Error(err)
			}
		}(i)
	}
	wg.Wait()
	if err := m.Flush(ctx); err != nil {
		t.Fatal(err)
	}

	data, err := backend.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	saved, err := models.DecodePlan(data)
	if err != nil {
		t.Fatal(err)
	}
	current, _ := m.Snapshot()
	if saved.Goals2026.Headcount != current.Goals2026.Headcount {
		t.Errorf("saved headcount = %d, in memory = %d", saved.Goals2026.Headcount, current.Goals2026.Headcount)
	}
	if m.Status().Pending {
		t.Error("nothing should be pending after flush")
	}
}

func TestFailedSaveRetriesInBackground(t *testing.T) {
	ctx := context.Background()
	backend := NewMemory()
	m, err := Open(ctx, backend, ManagerOptions{RetryBackoff: 10 * time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { m.Close(context.Background()) })

	backend.FailWith(errors.New("connection reset"))
	if _, err := m.Apply(ctx, setGoals(models.Goals2026{Headcount: 4})); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for m.Status().LastError == "" {
		if time.Now().After(deadline) {
			t.Fatal("save was never attempted")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// no further edits or flushes: the saver has to pick the snapshot up again
	backend.FailWith(nil)
	for m.Status().Saves == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("failed save was not retried, status = %+v", m.Status())
		}
		time.Sleep(5 * time.Millisecond)
	}
	if st := m.Status(); st.Pending || st.LastError != "" {
		t.Errorf("status after retry = %+v", st)
	}
}

func TestOpenRejectsCorruptPlan(t *testing.T) {
	backend := NewMemory()
	backend.Save(context.Background(), []byte("{not json"))
	if _, err := Open(context.Background(), backend, ManagerOptions{}); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestFileBackend(t *testing.T) {
	ctx := context.Background()
	store, err := storage.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	backend := NewFile(store)

	if _, err := backend.Load(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	m := openManager(t, backend, nil)
	if _, err := m.Apply(ctx, setGoals(models.Goals2026{AverageTicket: 250})); err != nil {
		t.Fatal(err)
	}
	if err := m.Flush(ctx); err != nil {
		t.Fatal(err)
	}
	if !store.Exists(PlanFile) {
		t.Fatal("plan.json not written")
	}

	data, err := backend.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	doc, err := models.DecodePlan(data)
	if err != nil || doc.Goals2026.AverageTicket != 250 {
		t.Errorf("reloaded goals = %+v, %v", doc.Goals2026, err)
	}
}

func TestSQLiteBackend(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "db", "plan.db")

	backend, err := NewSQLite(ctx, path, DefaultDocumentID)
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	if _, err := backend.Load(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if err := backend.Save(ctx, []byte(`{"version":1}`)); err != nil {
		t.Fatal(err)
	}
	if err := backend.Save(ctx, []byte(`{"version":1,"base_scenario":"optimistic"}`)); err != nil {
		t.Fatal(err)
	}
	backend.Close()

	// migrations are idempotent on reopen
	backend, err = NewSQLite(ctx, path, DefaultDocumentID)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer backend.Close()
	data, err := backend.Load(ctx)
	if err != nil || string(data) != `{"version":1,"base_scenario":"optimistic"}` {
		t.Errorf("Load = %s, %v", data, err)
	}
}

func TestOpenBackendKinds(t *testing.T) {
	ctx := context.Background()
	store, _ := storage.New(t.TempDir())

	b, err := OpenBackend(ctx, Options{Kind: KindFile}, store)
	if err != nil || b.Name() != "file" {
		t.Errorf("file backend = %v, %v", b, err)
	}
	if _, err := OpenBackend(ctx, Options{Kind: KindFile}, nil); err == nil {
		t.Error("file backend without data dir should fail")
	}
	if _, err := OpenBackend(ctx, Options{Kind: "mongo"}, store); err == nil {
		t.Error("unknown kind should fail")
	}
}
