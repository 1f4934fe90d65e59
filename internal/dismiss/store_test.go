package dismiss

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestStoreAddAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dismissed.json")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Add("2025-06-10_950000_Electronics purchase"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := s.Add("2025-06-12_300000_Jewellery"); err != nil {
		t.Fatalf("Add: %v", err)
	}

	// Keys carry user-written descriptions, so non-ASCII must survive
	// the JSON round trip byte for byte.
	cyrillic := "2025-06-11_120000_Покупка электроники "
	if err := s.Add(cyrillic); err != nil {
		t.Fatalf("Add: %v", err)
	}

	reloaded, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if !reloaded.Contains("2025-06-10_950000_Electronics purchase") {
		t.Error("dismissal lost across reload")
	}
	if !reloaded.Contains(cyrillic) {
		t.Error("non-ASCII dismissal lost across reload")
	}
	if len(reloaded.Keys()) != 3 {
		t.Errorf("got %d keys, want 3", len(reloaded.Keys()))
	}
}

func TestStoreExpiresWholeSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dismissed.json")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	base := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }

	if err := s.Add("old-key"); err != nil {
		t.Fatalf("Add: %v", err)
	}

	// A day short of the limit: still there.
	s.now = func() time.Time { return base.Add(MaxAge - 24*time.Hour) }
	if !s.Contains("old-key") {
		t.Fatal("key expired early")
	}

	// Past the limit: the whole set clears at once.
	s.now = func() time.Time { return base.Add(MaxAge + time.Hour) }
	if s.Contains("old-key") {
		t.Error("key survived past expiry")
	}
	if len(s.Keys()) != 0 {
		t.Error("set not cleared wholesale")
	}

	// A fresh dismissal starts a new set with a new timestamp.
	if err := s.Add("new-key"); err != nil {
		t.Fatalf("Add after expiry: %v", err)
	}
	if !s.Contains("new-key") {
		t.Error("fresh key missing after expiry reset")
	}
}

func TestStoreIgnoresCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dismissed.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open with corrupt file: %v", err)
	}
	if len(s.Keys()) != 0 {
		t.Error("corrupt file must load as empty set")
	}
}

func TestStoreExpiredFileLoadsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dismissed.json")
	stale := `{"data":["k"],"timestamp":"2020-01-01T00:00:00Z"}`
	if err := os.WriteFile(path, []byte(stale), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.Contains("k") {
		t.Error("stale set must not load")
	}
}
