package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// searchableColumns maps record keys to the users columns Find and Count may
// filter on. Anything else is rejected before it reaches SQL.
var searchableColumns = map[string]string{
	KeyName:       "name",
	KeyEmail:      "email",
	KeyRole:       "role",
	KeyPosition:   "position",
	KeyDepartment: "department",
}

const selectUserColumns = `
	SELECT id, name, email, role, position, department, join_date,
	       base_salary::text, bonus::text, annual_leave_days, sick_leave_days,
	       uploaded_documents, resubmission_requested, extra
	FROM users`

type postgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore constructs a RecordStore backed by the users table.
func NewPostgresStore(pool *pgxpool.Pool) RecordStore {
	return &postgresStore{pool: pool}
}

func (s *postgresStore) Get(ctx context.Context, id string) (*UserRecord, error) {
	rec, err := scanUser(s.pool.QueryRow(ctx, selectUserColumns+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("user id=%s: %w", id, err)
	}
	return rec, nil
}

func (s *postgresStore) Find(ctx context.Context, field, value string) (*UserRecord, error) {
	col, ok := searchableColumns[field]
	if !ok {
		return nil, fmt.Errorf("field %q is not searchable", field)
	}
	query := selectUserColumns + ` WHERE ` + col + ` = $1 ORDER BY id LIMIT 1`
	rec, err := scanUser(s.pool.QueryRow(ctx, query, value))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by %s: %w", field, err)
	}
	return rec, nil
}

func (s *postgresStore) Count(ctx context.Context, field, value string) (int, error) {
	col, ok := searchableColumns[field]
	if !ok {
		return 0, fmt.Errorf("field %q is not searchable", field)
	}
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE `+col+` = $1`, value).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users by %s: %w", field, err)
	}
	return n, nil
}

const upsertUser = `
	INSERT INTO users (id, name, email, role, position, department, join_date,
	                   base_salary, bonus, annual_leave_days, sick_leave_days,
	                   uploaded_documents, resubmission_requested, extra)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8::numeric, $9::numeric, $10, $11, $12, $13, $14)
	ON CONFLICT (id) DO UPDATE SET
		name = EXCLUDED.name,
		email = EXCLUDED.email,
		role = EXCLUDED.role,
		position = EXCLUDED.position,
		department = EXCLUDED.department,
		join_date = EXCLUDED.join_date,
		base_salary = EXCLUDED.base_salary,
		bonus = EXCLUDED.bonus,
		annual_leave_days = EXCLUDED.annual_leave_days,
		sick_leave_days = EXCLUDED.sick_leave_days,
		uploaded_documents = EXCLUDED.uploaded_documents,
		resubmission_requested = EXCLUDED.resubmission_requested,
		extra = EXCLUDED.extra`

// SaveRecords upserts recs into the users table in one transaction.
func SaveRecords(ctx context.Context, pool *pgxpool.Pool, recs []UserRecord) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, rec := range recs {
		var role *string
		if rec.Role != nil {
			r := string(*rec.Role)
			role = &r
		}
		batch.Queue(upsertUser,
			rec.ID, rec.Name, rec.Email, role, rec.Position, rec.Department, rec.JoinDate,
			nullDecimalText(rec.BaseSalary), nullDecimalText(rec.Bonus),
			rec.AnnualLeaveDays, rec.SickLeaveDays,
			rec.UploadedDocuments, rec.ResubmissionRequested, rec.Extra,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upsert users: %w", err)
	}
	return tx.Commit(ctx)
}

func nullDecimalText(d decimal.NullDecimal) *string {
	if !d.Valid {
		return nil
	}
	s := d.Decimal.String()
	return &s
}

func scanUser(row pgx.Row) (*UserRecord, error) {
	var (
		rec                UserRecord
		role               *string
		joinDate           *time.Time
		baseSalary, bonus  *string
		uploaded, resubmit map[string]bool
		extra              map[string]string
	)
	err := row.Scan(
		&rec.ID, &rec.Name, &rec.Email, &role, &rec.Position, &rec.Department, &joinDate,
		&baseSalary, &bonus, &rec.AnnualLeaveDays, &rec.SickLeaveDays,
		&uploaded, &resubmit, &extra,
	)
	if err != nil {
		return nil, err
	}
	if role != nil {
		r := Role(*role)
		rec.Role = &r
	}
	rec.JoinDate = joinDate
	if rec.BaseSalary, err = parseNullDecimal(baseSalary); err != nil {
		return nil, fmt.Errorf("base_salary: %w", err)
	}
	if rec.Bonus, err = parseNullDecimal(bonus); err != nil {
		return nil, fmt.Errorf("bonus: %w", err)
	}
	rec.UploadedDocuments = uploaded
	rec.ResubmissionRequested = resubmit
	rec.Extra = extra
	return &rec, nil
}

func parseNullDecimal(s *string) (decimal.NullDecimal, error) {
	if s == nil {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}
