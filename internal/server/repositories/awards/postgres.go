package awards

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"hamawards/internal/common"
	"hamawards/internal/dbx"
	"hamawards/internal/lifecycle"
	"hamawards/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, award *models.Award) (*models.Award, error) {
	query :=
		`INSERT INTO awards (name, description, bg_url, rules, layout, status, creator_id, audit_log)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at
		 `

	audit, err := json.Marshal(award.AuditLog)
	if err != nil {
		return nil, fmt.Errorf("error encoding audit log: %w", err)
	}

	err = r.db.QueryRowContext(ctx, query,
		award.Name, award.Description, award.BgURL,
		[]byte(award.Rules), []byte(award.Layout),
		string(award.Status), award.CreatorID, audit).
		Scan(&award.ID, &award.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return award, nil
}

func (r *PostgresRepository) Update(ctx context.Context, award *models.Award) error {
	query :=
		`UPDATE awards
		 SET name = $2, description = $3, bg_url = $4, rules = $5, layout = $6, status = $7, audit_log = $8
		 WHERE id = $1
		 `

	audit, err := json.Marshal(award.AuditLog)
	if err != nil {
		return fmt.Errorf("error encoding audit log: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query,
		award.ID, award.Name, award.Description, award.BgURL,
		[]byte(award.Rules), []byte(award.Layout),
		string(award.Status), audit)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}

	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Award, error) {
	query :=
		`SELECT id, name, description, bg_url, rules, layout, status, creator_id, audit_log, created_at
		 FROM awards
		 WHERE id = $1
		 `

	return r.scanAward(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Award, error) {
	query :=
		`SELECT id, name, description, bg_url, rules, layout, status, creator_id, audit_log, created_at
		 FROM awards
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Award
	for rows.Next() {
		award, err := r.scanAward(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, award)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Transition(ctx context.Context, id int64, from, to lifecycle.Status, entry models.AuditEntry) error {
	query :=
		`UPDATE awards
		 SET status = $3, audit_log = audit_log || $4::jsonb
		 WHERE id = $1 AND status = $2
		 `

	encoded, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("error encoding audit entry: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, id, string(from), string(to), encoded)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrInvalidTransition
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PostgresRepository) scanAward(row rowScanner) (*models.Award, error) {
	award := &models.Award{}
	var rules, layout, audit []byte
	var status string

	err := row.Scan(&award.ID, &award.Name, &award.Description, &award.BgURL,
		&rules, &layout, &status, &award.CreatorID, &audit, &award.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	award.Rules = json.RawMessage(rules)
	award.Layout = json.RawMessage(layout)
	award.Status = lifecycle.Status(status)
	if err := json.Unmarshal(audit, &award.AuditLog); err != nil {
		return nil, fmt.Errorf("error decoding audit log: %w", err)
	}

	return award, nil
}
