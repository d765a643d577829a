package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lecitrade/coa-tracker/internal/common"
	"github.com/lecitrade/coa-tracker/internal/entity"
)

// MemoryStore is an in-process Store used by tests and dry runs. Semantics
// mirror SQLStore, including the legacy-row read fallback.
type MemoryStore struct {
	mu   sync.Mutex
	recs map[uuid.UUID]*entity.CoaRecord
	seq  int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{recs: make(map[uuid.UUID]*entity.CoaRecord)}
}

func (s *MemoryStore) Create(_ context.Context, rec *entity.CoaRecord) (*entity.CoaRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := cloneRecord(rec)
	if out.ID == uuid.Nil {
		out.ID = uuid.New()
	}
	// The sequence offset keeps creation order strict even when the clock
	// does not advance between calls.
	s.seq++
	now := time.Now().UTC().Add(time.Duration(s.seq))
	if out.CreatedAt.IsZero() {
		out.CreatedAt = now
	}
	out.UpdatedAt = now
	s.recs[out.ID] = out
	return cloneRecord(out), nil
}

func (s *MemoryStore) FindMany(_ context.Context, f Filter) ([]*entity.CoaRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.match(f, false)
	if len(out) == 0 && f.UserID != nil {
		out = s.match(f, true)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) match(f Filter, legacy bool) []*entity.CoaRecord {
	var out []*entity.CoaRecord
	for _, rec := range s.recs {
		if f.UserID != nil {
			if legacy {
				if rec.UserID != nil {
					continue
				}
			} else if rec.UserID == nil || *rec.UserID != *f.UserID {
				continue
			}
		}
		if f.BatchID != nil && (rec.BatchID == nil || *rec.BatchID != *f.BatchID) {
			continue
		}
		if f.SampleID != nil && (rec.SampleID == nil || *rec.SampleID != *f.SampleID) {
			continue
		}
		if len(f.IDs) > 0 && !containsID(f.IDs, rec.ID) {
			continue
		}
		out = append(out, cloneRecord(rec))
	}
	return out
}

func (s *MemoryStore) Update(_ context.Context, id uuid.UUID, p Partial) (*entity.CoaRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.recs[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	if p.SampleID != nil {
		rec.SampleID = entity.StrPtr(*p.SampleID)
	}
	if p.BatchID != nil {
		rec.BatchID = entity.StrPtr(*p.BatchID)
	}
	if p.FileName != nil {
		rec.FileName = *p.FileName
	}
	if p.Fields != nil {
		rec.Fields = cloneMap(p.Fields)
	}
	if p.AdditionalFields != nil {
		rec.AdditionalFields = cloneMap(p.AdditionalFields)
	}
	s.seq++
	rec.UpdatedAt = time.Now().UTC().Add(time.Duration(s.seq))
	return cloneRecord(rec), nil
}

func (s *MemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.recs[id]; !ok {
		return common.ErrNotFound
	}
	delete(s.recs, id)
	return nil
}

func (s *MemoryStore) DeleteMany(_ context.Context, f Filter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, rec := range s.match(f, false) {
		delete(s.recs, rec.ID)
		n++
	}
	return n, nil
}

func (s *MemoryStore) Count(_ context.Context, f Filter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := int64(len(s.match(f, false)))
	if n == 0 && f.UserID != nil {
		n = int64(len(s.match(f, true)))
	}
	return n, nil
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
