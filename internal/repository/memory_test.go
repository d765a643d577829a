package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/lecitrade/coa-tracker/internal/common"
	"github.com/lecitrade/coa-tracker/internal/entity"
)

func TestMemoryStoreCreateAssignsIDAndOrder(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	a, err := s.Create(ctx, &entity.CoaRecord{FileName: "a.pdf"})
	if err != nil {
		t.Fatal(err)
	}
	if a.ID == uuid.Nil {
		t.Error("Create should assign an ID")
	}
	b, err := s.Create(ctx, &entity.CoaRecord{FileName: "b.pdf"})
	if err != nil {
		t.Fatal(err)
	}
	if !a.CreatedAt.Before(b.CreatedAt) {
		t.Error("creation order must be strict")
	}

	recs, err := s.FindMany(ctx, Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 || recs[0].ID != a.ID || recs[1].ID != b.ID {
		t.Errorf("FindMany order = %v", recs)
	}
}

func TestMemoryStoreUpdate(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	rec, err := s.Create(ctx, &entity.CoaRecord{FileName: "a.pdf", Fields: map[string]string{"AI": "5.0"}})
	if err != nil {
		t.Fatal(err)
	}
	got, err := s.Update(ctx, rec.ID, Partial{
		SampleID: entity.StrPtr("M20250001"),
		Fields:   map[string]string{"AI": "5.0", "AV": "19.3"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if entity.StrOrEmpty(got.SampleID) != "M20250001" || got.Field("AV") != "19.3" {
		t.Errorf("updated = %+v", got)
	}
	// Untouched members survive a partial update.
	if got.FileName != "a.pdf" {
		t.Errorf("FileName = %q", got.FileName)
	}

	if _, err := s.Update(ctx, uuid.New(), Partial{}); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreLegacyFallback(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	user := uuid.New()

	// Unowned legacy row only.
	if _, err := s.Create(ctx, &entity.CoaRecord{FileName: "legacy.pdf"}); err != nil {
		t.Fatal(err)
	}

	recs, err := s.FindMany(ctx, Filter{UserID: &user})
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 {
		t.Fatalf("legacy fallback returned %d records, want 1", len(recs))
	}

	// Once the user owns rows, the fallback stops applying.
	if _, err := s.Create(ctx, &entity.CoaRecord{UserID: &user, FileName: "owned.pdf"}); err != nil {
		t.Fatal(err)
	}
	recs, err = s.FindMany(ctx, Filter{UserID: &user})
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].FileName != "owned.pdf" {
		t.Errorf("scoped read = %v, want only the owned row", recs)
	}

	n, err := s.Count(ctx, Filter{UserID: &user})
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	rec, err := s.Create(ctx, &entity.CoaRecord{FileName: "a.pdf"})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, rec.ID); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, rec.ID); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreFilterByBatch(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if _, err := s.Create(ctx, &entity.CoaRecord{BatchID: entity.StrPtr("BA000001"), FileName: "a.pdf"}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Create(ctx, &entity.CoaRecord{BatchID: entity.StrPtr("BA000002"), FileName: "b.pdf"}); err != nil {
		t.Fatal(err)
	}
	recs, err := s.FindMany(ctx, Filter{BatchID: entity.StrPtr("BA000002")})
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].FileName != "b.pdf" {
		t.Errorf("filtered = %v", recs)
	}
}
