package actionlog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/napolitain/bag-optimizer/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "actions.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndQuery(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i, name := range []string{"Pidgey", "Rattata", "Weedle"} {
		if err := s.RecordTransfer(ctx, models.Creature{Name: name, CP: 10 * (i + 1), IV: 0.5}); err != nil {
			t.Fatalf("RecordTransfer: %v", err)
		}
	}
	if err := s.RecordEvolve(ctx, models.Creature{Name: "Eevee", CP: 400, IV: 0.9}); err != nil {
		t.Fatalf("RecordEvolve: %v", err)
	}

	transfers, err := s.Transfers(ctx, 2)
	if err != nil {
		t.Fatalf("Transfers: %v", err)
	}
	if len(transfers) != 2 || transfers[0].Pokemon != "Weedle" || transfers[1].CP != 20 {
		t.Errorf("Unexpected transfers: %+v", transfers)
	}

	evolutions, err := s.Evolutions(ctx, 0)
	if err != nil {
		t.Fatalf("Evolutions: %v", err)
	}
	if len(evolutions) != 1 || evolutions[0].Pokemon != "Eevee" || evolutions[0].IV != 0.9 {
		t.Errorf("Unexpected evolutions: %+v", evolutions)
	}
}

func TestCountSince(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		at := base.Add(time.Duration(i) * time.Hour)
		s.now = func() time.Time { return at }
		if err := s.RecordEvolve(ctx, models.Creature{Name: "Pidgey"}); err != nil {
			t.Fatalf("RecordEvolve: %v", err)
		}
	}

	n, err := s.CountSince(ctx, base.Add(time.Hour))
	if err != nil {
		t.Fatalf("CountSince: %v", err)
	}
	if n != 2 {
		t.Errorf("CountSince = %d, want 2", n)
	}
}

func TestReopenKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "actions.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.RecordTransfer(context.Background(), models.Creature{Name: "Zubat"}); err != nil {
		t.Fatalf("RecordTransfer: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("Reopen: %v", err)
	}
	defer s.Close()
	rows, err := s.Transfers(context.Background(), 10)
	if err != nil || len(rows) != 1 {
		t.Errorf("Transfers after reopen = %v, %v", rows, err)
	}
}
