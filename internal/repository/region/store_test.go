package region

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/tilekeep/tilekeep/pkg/logger"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "regions.db"), logger.NewNoOp())
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testRegion(id string, createdAt time.Time) OfflineRegion {
	return OfflineRegion{
		ID:        id,
		Name:      "Berlin Mitte",
		North:     52.55,
		South:     52.49,
		East:      13.45,
		West:      13.35,
		MinZoom:   10,
		MaxZoom:   14,
		CreatedAt: createdAt,
		Status:    StatusPending,
	}
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	s := newTestStore(t)

	created := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	want := testRegion("r1", created)

	if err := s.Upsert(want); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, exists, err := s.Get("r1")
	if err != nil || !exists {
		t.Fatalf("Get = exists=%v err=%v, want hit", exists, err)
	}

	if got.ID != want.ID || got.Name != want.Name || got.Status != want.Status {
		t.Errorf("Get = %+v, want %+v", got, want)
	}
	if got.North != want.North || got.South != want.South || got.East != want.East || got.West != want.West {
		t.Errorf("bbox mismatch: got %+v", got)
	}
	if got.MinZoom != want.MinZoom || got.MaxZoom != want.MaxZoom {
		t.Errorf("zoom mismatch: got %+v", got)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, created)
	}
	if got.DownloadedAt != nil {
		t.Errorf("DownloadedAt = %v, want nil", got.DownloadedAt)
	}
}

func TestSQLiteStoreGetMissing(t *testing.T) {
	s := newTestStore(t)

	r, exists, err := s.Get("nope")
	if err != nil {
		t.Fatalf("Get(missing) returned error: %v", err)
	}
	if exists || r != nil {
		t.Errorf("Get(missing) = %v exists=%v, want nil, false", r, exists)
	}
}

func TestSQLiteStoreUpsertReplaces(t *testing.T) {
	s := newTestStore(t)

	created := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	r := testRegion("r1", created)
	if err := s.Upsert(r); err != nil {
		t.Fatalf("initial Upsert failed: %v", err)
	}

	downloadedAt := time.Date(2026, 8, 1, 12, 5, 30, 123456789, time.UTC)
	r.Status = StatusDownloaded
	r.DownloadedAt = &downloadedAt
	r.TotalTiles = 120
	r.DownloadedTiles = 120
	if err := s.Upsert(r); err != nil {
		t.Fatalf("second Upsert failed: %v", err)
	}

	got, exists, err := s.Get("r1")
	if err != nil || !exists {
		t.Fatalf("Get = exists=%v err=%v", exists, err)
	}
	if got.Status != StatusDownloaded {
		t.Errorf("Status = %s, want downloaded", got.Status)
	}
	if got.DownloadedAt == nil || !got.DownloadedAt.Equal(downloadedAt) {
		t.Errorf("DownloadedAt = %v, want %v", got.DownloadedAt, downloadedAt)
	}
	if got.TotalTiles != 120 || got.DownloadedTiles != 120 {
		t.Errorf("tile counts = %d/%d, want 120/120", got.DownloadedTiles, got.TotalTiles)
	}

	regions, err := s.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(regions) != 1 {
		t.Errorf("List returned %d regions after upsert of same id, want 1", len(regions))
	}
}

func TestSQLiteStoreErrorRoundTrip(t *testing.T) {
	s := newTestStore(t)

	r := testRegion("r1", time.Now().UTC())
	r.Status = StatusError
	r.Error = "failed to fetch tile 12/2200/1343: status 503"
	if err := s.Upsert(r); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, _, err := s.Get("r1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Error != r.Error {
		t.Errorf("Error = %q, want %q", got.Error, r.Error)
	}
}

func TestSQLiteStoreListOrder(t *testing.T) {
	s := newTestStore(t)

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	// Insert out of creation order; List must come back in creation order.
	for _, tc := range []struct {
		id     string
		offset time.Duration
	}{
		{"c", 2 * time.Hour},
		{"a", 0},
		{"b", time.Hour},
	} {
		if err := s.Upsert(testRegion(tc.id, base.Add(tc.offset))); err != nil {
			t.Fatalf("Upsert(%s) failed: %v", tc.id, err)
		}
	}

	regions, err := s.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	var ids []string
	for _, r := range regions {
		ids = append(ids, r.ID)
	}
	want := []string{"a", "b", "c"}
	for i := range want {
		if i >= len(ids) || ids[i] != want[i] {
			t.Fatalf("List order = %v, want %v", ids, want)
		}
	}
}

func TestSQLiteStoreRemove(t *testing.T) {
	s := newTestStore(t)

	if err := s.Upsert(testRegion("r1", time.Now().UTC())); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	removed, err := s.Remove("r1")
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if !removed {
		t.Error("Remove of existing region returned false")
	}

	if _, exists, _ := s.Get("r1"); exists {
		t.Error("region still present after Remove")
	}

	removed, err = s.Remove("r1")
	if err != nil {
		t.Fatalf("second Remove failed: %v", err)
	}
	if removed {
		t.Error("Remove of absent region returned true")
	}
}

func TestOfflineRegionValidate(t *testing.T) {
	good := testRegion("r1", time.Now())
	if err := good.Validate(); err != nil {
		t.Fatalf("valid region rejected: %v", err)
	}

	swapped := good
	swapped.North, swapped.South = swapped.South, swapped.North
	if err := swapped.Validate(); err == nil {
		t.Error("inverted latitudes accepted")
	}

	zooms := good
	zooms.MinZoom, zooms.MaxZoom = 14, 10
	if err := zooms.Validate(); err == nil {
		t.Error("minZoom > maxZoom accepted")
	}

	negative := good
	negative.MinZoom = -1
	if err := negative.Validate(); err == nil {
		t.Error("negative minZoom accepted")
	}
}
