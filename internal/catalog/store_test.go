package catalog_test

import (
	"context"
	"testing"

	"broll/internal/catalog"
	"broll/internal/vectorindex"
)

func newTestStore(t *testing.T) *catalog.Store {
	t.Helper()
	db, err := catalog.Open(t.TempDir() + "/catalog.db")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	store := catalog.NewStore(db, vectorindex.NewSQLiteIndex(db))
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func strptr(s string) *string { return &s }

func testEntry(path, hash string) *catalog.Entry {
	return &catalog.Entry{
		Path:             path,
		Name:             path,
		SizeBytes:        1024,
		Fingerprint:      hash,
		Device:           "dji_pocket3",
		SceneDescription: strptr("Waves crashing on a rocky shore"),
		Tags:             []string{"ocean", "waves"},
		Mood:             strptr("serene"),
		CameraMovement:   strptr("aerial"),
		TimeOfDay:        strptr("sunset"),
	}
}

func TestStore_PutAndGet(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	entry := testEntry("clips/a.mp4", "hash-a")
	dur := 12.5
	entry.DurationSeconds = &dur

	id, err := store.Put(ctx, entry, []float32{1, 0, 0})
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if id == 0 {
		t.Fatal("Put() returned zero id")
	}

	got, err := store.GetByPath(ctx, "clips/a.mp4")
	if err != nil {
		t.Fatalf("GetByPath() error = %v", err)
	}
	if got.ID != id {
		t.Errorf("ID = %d, want %d", got.ID, id)
	}
	if got.DurationSeconds == nil || *got.DurationSeconds != 12.5 {
		t.Errorf("DurationSeconds = %v, want 12.5", got.DurationSeconds)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "ocean" {
		t.Errorf("Tags = %v", got.Tags)
	}
	if got.SceneDescription == nil || *got.SceneDescription != "Waves crashing on a rocky shore" {
		t.Errorf("SceneDescription = %v", got.SceneDescription)
	}

	byID, err := store.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if byID.Path != "clips/a.mp4" {
		t.Errorf("Path = %q", byID.Path)
	}
}

func TestStore_GetMissing(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if _, err := store.GetByPath(ctx, "nope.mp4"); err != catalog.ErrNotFound {
		t.Errorf("GetByPath() error = %v, want ErrNotFound", err)
	}
	if _, err := store.GetByID(ctx, 99); err != catalog.ErrNotFound {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestStore_TextSearchableAfterPut(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if _, err := store.Put(ctx, testEntry("clips/a.mp4", "hash-a"), nil); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	matches, err := store.SearchText(ctx, "waves", 10)
	if err != nil {
		t.Fatalf("SearchText() error = %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("SearchText() returned %d matches, want 1", len(matches))
	}
}

func TestStore_VectorSearchableAfterPut(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	id, err := store.Put(ctx, testEntry("clips/a.mp4", "hash-a"), []float32{1, 0})
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	matches, err := store.SearchVector(ctx, []float32{1, 0}, 5)
	if err != nil {
		t.Fatalf("SearchVector() error = %v", err)
	}
	if len(matches) != 1 || matches[0].ID != id {
		t.Fatalf("SearchVector() = %v, want single match for id %d", matches, id)
	}
}

func TestStore_RePutReplacesEverything(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	first := testEntry("clips/a.mp4", "hash-v1")
	firstID, err := store.Put(ctx, first, []float32{1, 0})
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	second := testEntry("clips/a.mp4", "hash-v2")
	second.SceneDescription = strptr("A mountain trail in fog")
	second.Tags = []string{"mountain", "fog"}
	secondID, err := store.Put(ctx, second, []float32{0, 1})
	if err != nil {
		t.Fatalf("Put() replace error = %v", err)
	}
	if secondID == firstID {
		t.Error("replacement reused the old id")
	}

	// Exactly one row remains for the path.
	entries, err := store.List(ctx, 0, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("List() returned %d entries, want 1", len(entries))
	}
	if entries[0].Fingerprint != "hash-v2" {
		t.Errorf("Fingerprint = %q, want hash-v2", entries[0].Fingerprint)
	}

	// Old text is gone from FTS, new text present.
	if matches, _ := store.SearchText(ctx, "waves", 10); len(matches) != 0 {
		t.Errorf("stale FTS row survived replacement: %v", matches)
	}
	matches, err := store.SearchText(ctx, "mountain", 10)
	if err != nil {
		t.Fatalf("SearchText() error = %v", err)
	}
	if len(matches) != 1 || matches[0].ID != secondID {
		t.Errorf("SearchText() = %v, want new id %d", matches, secondID)
	}

	// Old vector gone too.
	vec, err := store.SearchVector(ctx, []float32{1, 0}, 10)
	if err != nil {
		t.Fatalf("SearchVector() error = %v", err)
	}
	if len(vec) != 1 || vec[0].ID != secondID {
		t.Errorf("SearchVector() = %v, want only new id %d", vec, secondID)
	}
}

func TestStore_GetManyByIDs_PreservesOrderAndDropsMissing(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	idA, _ := store.Put(ctx, testEntry("a.mp4", "ha"), nil)
	idB, _ := store.Put(ctx, testEntry("b.mp4", "hb"), nil)
	idC, _ := store.Put(ctx, testEntry("c.mp4", "hc"), nil)

	entries, err := store.GetManyByIDs(ctx, []int64{idC, 999, idA, idB})
	if err != nil {
		t.Fatalf("GetManyByIDs() error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("GetManyByIDs() returned %d entries, want 3", len(entries))
	}
	wantOrder := []int64{idC, idA, idB}
	for i, want := range wantOrder {
		if entries[i].ID != want {
			t.Errorf("entries[%d].ID = %d, want %d", i, entries[i].ID, want)
		}
	}
}

func TestStore_AllFingerprints(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if _, err := store.Put(ctx, testEntry("a.mp4", "ha"), nil); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if _, err := store.Put(ctx, testEntry("b.mp4", "hb"), nil); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	known, err := store.AllFingerprints(ctx)
	if err != nil {
		t.Fatalf("AllFingerprints() error = %v", err)
	}
	if len(known) != 2 || known["a.mp4"] != "ha" || known["b.mp4"] != "hb" {
		t.Errorf("AllFingerprints() = %v", known)
	}
}

func TestStore_DeleteRemovesAllRows(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	id, err := store.Put(ctx, testEntry("a.mp4", "ha"), []float32{1, 0})
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := store.Delete(ctx, id); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := store.GetByID(ctx, id); err != catalog.ErrNotFound {
		t.Errorf("GetByID() after delete error = %v, want ErrNotFound", err)
	}
	if matches, _ := store.SearchText(ctx, "waves", 10); len(matches) != 0 {
		t.Errorf("FTS row survived delete: %v", matches)
	}
	if vec, _ := store.SearchVector(ctx, []float32{1, 0}, 10); len(vec) != 0 {
		t.Errorf("vector survived delete: %v", vec)
	}
}

func TestStore_Stats(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	good := testEntry("a.mp4", "ha")
	dur := 30.0
	good.DurationSeconds = &dur
	lat, lon := 43.77, 11.25
	good.Latitude, good.Longitude = &lat, &lon
	if _, err := store.Put(ctx, good, []float32{1, 0}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	bad := testEntry("b.mp4", "hb")
	bad.SceneDescription = strptr("ERROR: Could not process video - file may be corrupted or incomplete")
	if _, err := store.Put(ctx, bad, nil); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.TotalClips != 2 {
		t.Errorf("TotalClips = %d, want 2", stats.TotalClips)
	}
	if stats.AnalyzedClips != 1 {
		t.Errorf("AnalyzedClips = %d, want 1", stats.AnalyzedClips)
	}
	if stats.FailedClips != 1 {
		t.Errorf("FailedClips = %d, want 1", stats.FailedClips)
	}
	if stats.ClipsWithGPS != 1 {
		t.Errorf("ClipsWithGPS = %d, want 1", stats.ClipsWithGPS)
	}
	if stats.EmbeddedClips != 1 {
		t.Errorf("EmbeddedClips = %d, want 1", stats.EmbeddedClips)
	}
	if stats.TotalDuration != 30.0 {
		t.Errorf("TotalDuration = %v, want 30", stats.TotalDuration)
	}
	if stats.ClipsByDevice["dji_pocket3"] != 2 {
		t.Errorf("ClipsByDevice = %v", stats.ClipsByDevice)
	}
}
