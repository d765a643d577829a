package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lecitrade/coa-tracker/internal/common"
	"github.com/lecitrade/coa-tracker/internal/entity"
)

// $n placeholders and TEXT columns keep this schema valid on both drivers.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS coa_records (
	id TEXT PRIMARY KEY,
	user_id TEXT,
	sample_id TEXT,
	batch_id TEXT,
	file_name TEXT NOT NULL DEFAULT '',
	fields TEXT NOT NULL DEFAULT '{}',
	additional_fields TEXT NOT NULL DEFAULT '{}',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
)`

// SQLStore implements Store over database/sql, running on Postgres (pgx
// stdlib) or SQLite (modernc).
type SQLStore struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewSQLStore(db *sql.DB, logger *slog.Logger) *SQLStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLStore{db: db, logger: logger}
}

func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaDDL); err != nil {
		return common.WrapError(err, "ensure coa_records schema")
	}
	return nil
}

func (s *SQLStore) Create(ctx context.Context, rec *entity.CoaRecord) (*entity.CoaRecord, error) {
	out := cloneRecord(rec)
	if out.ID == uuid.Nil {
		out.ID = uuid.New()
	}
	now := time.Now().UTC()
	if out.CreatedAt.IsZero() {
		out.CreatedAt = now
	}
	out.UpdatedAt = now

	fieldsJSON, err := marshalFields(out.Fields)
	if err != nil {
		return nil, err
	}
	extraJSON, err := marshalFields(out.AdditionalFields)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO coa_records (id, user_id, sample_id, batch_id, file_name, fields, additional_fields, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		out.ID.String(), uuidPtrToNull(out.UserID), ptrToNull(out.SampleID), ptrToNull(out.BatchID),
		out.FileName, fieldsJSON, extraJSON,
		out.CreatedAt.Format(time.RFC3339Nano), out.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		s.logger.Error("store.create.failed", "id", out.ID, "error", err)
		return nil, common.NewAppError("PERSISTENCE_FAILURE", "create record", common.ErrPersistence)
	}
	return out, nil
}

// FindMany returns records matching the filter, oldest first. When a user
// scope matches nothing, the query retries against unowned rows so legacy
// data stays readable.
func (s *SQLStore) FindMany(ctx context.Context, f Filter) ([]*entity.CoaRecord, error) {
	recs, err := s.findMany(ctx, f, false)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 && f.UserID != nil {
		return s.findMany(ctx, f, true)
	}
	return recs, nil
}

func (s *SQLStore) findMany(ctx context.Context, f Filter, legacy bool) ([]*entity.CoaRecord, error) {
	where, args := buildWhere(f, legacy)
	q := `SELECT id, user_id, sample_id, batch_id, file_name, fields, additional_fields, created_at, updated_at
		FROM coa_records` + where + ` ORDER BY created_at ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		s.logger.Error("store.find.failed", "error", err)
		return nil, common.NewAppError("PERSISTENCE_FAILURE", "find records", common.ErrPersistence)
	}
	defer func() { _ = rows.Close() }()

	var out []*entity.CoaRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLStore) Update(ctx context.Context, id uuid.UUID, p Partial) (*entity.CoaRecord, error) {
	sets := []string{}
	args := []any{}
	n := 0
	add := func(col string, v any) {
		n++
		sets = append(sets, fmt.Sprintf("%s = $%d", col, n))
		args = append(args, v)
	}

	if p.SampleID != nil {
		add("sample_id", *p.SampleID)
	}
	if p.BatchID != nil {
		add("batch_id", *p.BatchID)
	}
	if p.FileName != nil {
		add("file_name", *p.FileName)
	}
	if p.Fields != nil {
		j, err := marshalFields(p.Fields)
		if err != nil {
			return nil, err
		}
		add("fields", j)
	}
	if p.AdditionalFields != nil {
		j, err := marshalFields(p.AdditionalFields)
		if err != nil {
			return nil, err
		}
		add("additional_fields", j)
	}
	add("updated_at", time.Now().UTC().Format(time.RFC3339Nano))
	n++
	args = append(args, id.String())

	q := fmt.Sprintf("UPDATE coa_records SET %s WHERE id = $%d", strings.Join(sets, ", "), n)
	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		s.logger.Error("store.update.failed", "id", id, "error", err)
		return nil, common.NewAppError("PERSISTENCE_FAILURE", "update record", common.ErrPersistence)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, common.ErrNotFound
	}
	return s.get(ctx, id)
}

func (s *SQLStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM coa_records WHERE id = $1`, id.String())
	if err != nil {
		s.logger.Error("store.delete.failed", "id", id, "error", err)
		return common.NewAppError("PERSISTENCE_FAILURE", "delete record", common.ErrPersistence)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (s *SQLStore) DeleteMany(ctx context.Context, f Filter) (int64, error) {
	where, args := buildWhere(f, false)
	res, err := s.db.ExecContext(ctx, `DELETE FROM coa_records`+where, args...)
	if err != nil {
		s.logger.Error("store.delete_many.failed", "error", err)
		return 0, common.NewAppError("PERSISTENCE_FAILURE", "delete records", common.ErrPersistence)
	}
	return res.RowsAffected()
}

func (s *SQLStore) Count(ctx context.Context, f Filter) (int64, error) {
	where, args := buildWhere(f, false)
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM coa_records`+where, args...).Scan(&n); err != nil {
		return 0, common.NewAppError("PERSISTENCE_FAILURE", "count records", common.ErrPersistence)
	}
	if n == 0 && f.UserID != nil {
		where, args = buildWhere(f, true)
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM coa_records`+where, args...).Scan(&n); err != nil {
			return 0, common.NewAppError("PERSISTENCE_FAILURE", "count records", common.ErrPersistence)
		}
	}
	return n, nil
}

func (s *SQLStore) get(ctx context.Context, id uuid.UUID) (*entity.CoaRecord, error) {
	recs, err := s.findMany(ctx, Filter{IDs: []uuid.UUID{id}}, false)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, common.ErrNotFound
	}
	return recs[0], nil
}

func buildWhere(f Filter, legacy bool) (string, []any) {
	var conds []string
	var args []any
	n := 0
	arg := func(v any) string {
		n++
		args = append(args, v)
		return fmt.Sprintf("$%d", n)
	}

	if f.UserID != nil {
		if legacy {
			conds = append(conds, "user_id IS NULL")
		} else {
			conds = append(conds, "user_id = "+arg(f.UserID.String()))
		}
	}
	if f.BatchID != nil {
		conds = append(conds, "batch_id = "+arg(*f.BatchID))
	}
	if f.SampleID != nil {
		conds = append(conds, "sample_id = "+arg(*f.SampleID))
	}
	if len(f.IDs) > 0 {
		ph := make([]string, len(f.IDs))
		for i, id := range f.IDs {
			ph[i] = arg(id.String())
		}
		conds = append(conds, "id IN ("+strings.Join(ph, ", ")+")")
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(r rowScanner) (*entity.CoaRecord, error) {
	var (
		idStr, fileName, fieldsJSON, extraJSON, createdStr, updatedStr string
		userStr, sampleID, batchID                                    sql.NullString
	)
	if err := r.Scan(&idStr, &userStr, &sampleID, &batchID, &fileName, &fieldsJSON, &extraJSON, &createdStr, &updatedStr); err != nil {
		return nil, common.WrapError(err, "scan record")
	}

	rec := &entity.CoaRecord{FileName: fileName}
	var err error
	if rec.ID, err = uuid.Parse(idStr); err != nil {
		return nil, common.WrapError(err, "parse record id")
	}
	if userStr.Valid {
		u, err := uuid.Parse(userStr.String)
		if err != nil {
			return nil, common.WrapError(err, "parse user id")
		}
		rec.UserID = &u
	}
	if sampleID.Valid {
		rec.SampleID = entity.StrPtr(sampleID.String)
	}
	if batchID.Valid {
		rec.BatchID = entity.StrPtr(batchID.String)
	}
	if err := json.Unmarshal([]byte(fieldsJSON), &rec.Fields); err != nil {
		return nil, common.WrapError(err, "decode fields")
	}
	if err := json.Unmarshal([]byte(extraJSON), &rec.AdditionalFields); err != nil {
		return nil, common.WrapError(err, "decode additional fields")
	}
	if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdStr); err != nil {
		return nil, common.WrapError(err, "parse created_at")
	}
	if rec.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedStr); err != nil {
		return nil, common.WrapError(err, "parse updated_at")
	}
	return rec, nil
}

func marshalFields(m map[string]string) (string, error) {
	if m == nil {
		m = map[string]string{}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", common.WrapError(err, "encode fields")
	}
	return string(b), nil
}

func ptrToNull(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func uuidPtrToNull(p *uuid.UUID) any {
	if p == nil {
		return nil
	}
	return p.String()
}

func cloneRecord(rec *entity.CoaRecord) *entity.CoaRecord {
	out := *rec
	out.Fields = cloneMap(rec.Fields)
	out.AdditionalFields = cloneMap(rec.AdditionalFields)
	if rec.UserID != nil {
		u := *rec.UserID
		out.UserID = &u
	}
	if rec.SampleID != nil {
		out.SampleID = entity.StrPtr(*rec.SampleID)
	}
	if rec.BatchID != nil {
		out.BatchID = entity.StrPtr(*rec.BatchID)
	}
	return &out
}

func cloneMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
