package qsos

import (
	"context"
	"encoding/json"
	"fmt"

	"hamawards/internal/adif"
	"hamawards/internal/dbx"
	"hamawards/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, qso *models.QSO) (bool, error) {
	query :=
		`INSERT INTO qsos (user_id, callsign, band, mode, qso_date, time_on,
		                   dxcc, country, gridsquare, iota, state, qsl_confirmed, raw_fields)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 ON CONFLICT ON CONSTRAINT qsos_dedup DO NOTHING
		 `

	raw, err := json.Marshal(qso.Record.Fields)
	if err != nil {
		return false, fmt.Errorf("error encoding fields: %w", err)
	}

	rec := qso.Record
	res, err := r.db.ExecContext(ctx, query,
		qso.UserID, rec.Call, rec.Band, rec.Mode, rec.Date, rec.Time,
		rec.DXCC, rec.Country, rec.Grid, rec.IOTA, rec.State, rec.QSL, raw)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return n > 0, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]*models.QSO, error) {
	query :=
		`SELECT id, user_id, callsign, band, mode, qso_date, time_on,
		        dxcc, country, gridsquare, iota, state, qsl_confirmed, raw_fields, created_at
		 FROM qsos
		 WHERE user_id = $1
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.QSO
	for rows.Next() {
		qso := &models.QSO{}
		var raw []byte
		err := rows.Scan(&qso.ID, &qso.UserID,
			&qso.Record.Call, &qso.Record.Band, &qso.Record.Mode,
			&qso.Record.Date, &qso.Record.Time,
			&qso.Record.DXCC, &qso.Record.Country, &qso.Record.Grid,
			&qso.Record.IOTA, &qso.Record.State, &qso.Record.QSL,
			&raw, &qso.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if err := json.Unmarshal(raw, &qso.Record.Fields); err != nil {
			return nil, fmt.Errorf("error decoding fields: %w", err)
		}
		if qso.Record.Fields == nil {
			qso.Record.Fields = adif.Fields{}
		}
		result = append(result, qso)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	query := `SELECT count(*) FROM qsos WHERE user_id = $1`

	var n int64
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return n, nil
}

func (r *PostgresRepository) DeleteByUser(ctx context.Context, userID int64) (int64, error) {
	query := `DELETE FROM qsos WHERE user_id = $1`

	res, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return n, nil
}
