// Package reconcile decides whether a new extraction updates an existing
// record or creates a new one, and compacts duplicate rows store-wide.
package reconcile

import (
	"context"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/lecitrade/coa-tracker/internal/entity"
	"github.com/lecitrade/coa-tracker/internal/identifier"
	"github.com/lecitrade/coa-tracker/internal/repository"
)

// Outcome reports what an upsert did.
type Outcome string

const (
	// OutcomeUpdated merged into an existing record for the same sample+batch.
	OutcomeUpdated Outcome = "updated"
	// OutcomeCreated created the first record for a resolved sample+batch.
	OutcomeCreated Outcome = "created"
	// OutcomeStandalone created a record whose identifiers could not be
	// resolved; standalone rows are never merge targets.
	OutcomeStandalone Outcome = "standalone"
)

type Engine struct {
	store  repository.Store
	logger *slog.Logger
}

func NewEngine(store repository.Store, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{store: store, logger: logger}
}

// Upsert persists one extraction result. Content-derived identifiers win over
// filename-derived ones; when either identifier stays unresolved the record is
// created standalone rather than merged blind.
func (e *Engine) Upsert(ctx context.Context, userID *uuid.UUID, fileName string, rec *entity.ExtractedRecord) (*entity.CoaRecord, Outcome, error) {
	sampleID, batchID := identifier.Resolve(rec.SampleID, rec.BatchID, fileName)
	normSample := identifier.NormalizeSampleID(sampleID)
	normBatch := identifier.NormalizeBatchID(batchID)

	if normSample == "" || normBatch == "" {
		created, err := e.create(ctx, userID, fileName, sampleID, batchID, rec)
		if err != nil {
			return nil, "", err
		}
		e.logger.Info("reconcile.standalone", "file", fileName, "sample_id", sampleID, "batch_id", batchID)
		return created, OutcomeStandalone, nil
	}

	target, err := e.findMergeTarget(ctx, userID, normSample, normBatch)
	if err != nil {
		return nil, "", err
	}
	if target == nil {
		created, err := e.create(ctx, userID, fileName, sampleID, batchID, rec)
		if err != nil {
			return nil, "", err
		}
		e.logger.Info("reconcile.created", "file", fileName, "sample_id", sampleID, "batch_id", batchID)
		return created, OutcomeCreated, nil
	}

	// Non-destructive merge: new non-empty values override, extraction gaps
	// never erase previously known data.
	fields := mergeNonEmpty(target.Fields, rec.Fields)
	extra := mergeNonEmpty(target.AdditionalFields, rec.AdditionalFields)

	p := repository.Partial{
		FileName:         &fileName,
		Fields:           fields,
		AdditionalFields: extra,
	}
	if entity.StrOrEmpty(target.SampleID) == "" && sampleID != "" {
		p.SampleID = &sampleID
	}
	if entity.StrOrEmpty(target.BatchID) == "" && batchID != "" {
		p.BatchID = &batchID
	}

	updated, err := e.store.Update(ctx, target.ID, p)
	if err != nil {
		return nil, "", err
	}
	e.logger.Info("reconcile.updated", "file", fileName, "record_id", target.ID, "sample_id", sampleID, "batch_id", batchID)
	return updated, OutcomeUpdated, nil
}

func (e *Engine) create(ctx context.Context, userID *uuid.UUID, fileName, sampleID, batchID string, rec *entity.ExtractedRecord) (*entity.CoaRecord, error) {
	out := &entity.CoaRecord{
		UserID:           userID,
		FileName:         fileName,
		Fields:           mergeNonEmpty(nil, rec.Fields),
		AdditionalFields: mergeNonEmpty(nil, rec.AdditionalFields),
	}
	if sampleID != "" {
		out.SampleID = entity.StrPtr(sampleID)
	}
	if batchID != "" {
		out.BatchID = entity.StrPtr(batchID)
	}
	return e.store.Create(ctx, out)
}

// findMergeTarget searches the user's records for one whose stored batch and
// sample identifiers normalize to the given pair. At most one is expected.
func (e *Engine) findMergeTarget(ctx context.Context, userID *uuid.UUID, normSample, normBatch string) (*entity.CoaRecord, error) {
	recs, err := e.store.FindMany(ctx, repository.Filter{UserID: userID})
	if err != nil {
		return nil, err
	}
	for _, r := range recs {
		if identifier.NormalizeBatchID(entity.StrOrEmpty(r.BatchID)) != normBatch {
			continue
		}
		if identifier.NormalizeSampleID(entity.StrOrEmpty(r.SampleID)) == normSample {
			return r, nil
		}
	}
	return nil, nil
}

// mergeNonEmpty lays the non-empty values of src over a copy of dst.
func mergeNonEmpty(dst, src map[string]string) map[string]string {
	out := make(map[string]string, len(dst)+len(src))
	for k, v := range dst {
		out[k] = v
	}
	for k, v := range src {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

// DedupReport summarizes a store-wide deduplication pass.
type DedupReport struct {
	Groups  int `json:"groups"`
	Merged  int `json:"merged"`
	Deleted int `json:"deleted"`
}

// DedupAll groups records by owner plus normalized (sample, batch) —
// recomputing filename-fallback identifiers for rows that lack stored ones —
// merges each group onto its earliest-created record in creation order, and
// deletes the rest. Rows that stay unkeyable even after fallback are left
// untouched. An unscoped pass sees every row but never merges across owners:
// one record per pair holds per user, not store-wide.
func (e *Engine) DedupAll(ctx context.Context, userID *uuid.UUID) (DedupReport, error) {
	recs, err := e.store.FindMany(ctx, repository.Filter{UserID: userID})
	if err != nil {
		return DedupReport{}, err
	}

	type key struct {
		user          uuid.UUID
		sample, batch string
	}
	groups := make(map[key][]*entity.CoaRecord)
	var order []key
	for _, r := range recs {
		sampleID, batchID := identifier.Resolve(entity.StrOrEmpty(r.SampleID), entity.StrOrEmpty(r.BatchID), r.FileName)
		k := key{
			sample: identifier.NormalizeSampleID(sampleID),
			batch:  identifier.NormalizeBatchID(batchID),
		}
		if r.UserID != nil {
			k.user = *r.UserID
		}
		if k.sample == "" || k.batch == "" {
			continue
		}
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], r)
	}

	var report DedupReport
	for _, k := range order {
		group := groups[k]
		if len(group) < 2 {
			continue
		}
		report.Groups++
		sort.Slice(group, func(i, j int) bool { return group[i].CreatedAt.Before(group[j].CreatedAt) })

		base := group[0]
		fields := mergeNonEmpty(nil, base.Fields)
		extra := mergeNonEmpty(nil, base.AdditionalFields)
		fileName := base.FileName
		sampleID := entity.StrOrEmpty(base.SampleID)
		batchID := entity.StrOrEmpty(base.BatchID)
		for _, dup := range group[1:] {
			// Creation order means more recent duplicates win ties.
			fields = mergeNonEmpty(fields, dup.Fields)
			extra = mergeNonEmpty(extra, dup.AdditionalFields)
			if dup.FileName != "" {
				fileName = dup.FileName
			}
			if s := entity.StrOrEmpty(dup.SampleID); s != "" {
				sampleID = s
			}
			if b := entity.StrOrEmpty(dup.BatchID); b != "" {
				batchID = b
			}
		}

		p := repository.Partial{
			FileName:         &fileName,
			Fields:           fields,
			AdditionalFields: extra,
		}
		if sampleID != "" {
			p.SampleID = &sampleID
		}
		if batchID != "" {
			p.BatchID = &batchID
		}
		if _, err := e.store.Update(ctx, base.ID, p); err != nil {
			return report, err
		}
		report.Merged++

		for _, dup := range group[1:] {
			if err := e.store.Delete(ctx, dup.ID); err != nil {
				return report, err
			}
			report.Deleted++
		}
	}

	e.logger.Info("reconcile.dedup.ok", "groups", report.Groups, "merged", report.Merged, "deleted", report.Deleted)
	return report, nil
}
