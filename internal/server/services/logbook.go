package services

import (
	"context"
	"database/sql"
	"fmt"

	"hamawards/internal/adif"
	"hamawards/internal/dbx"
	"hamawards/internal/logging"
	"hamawards/internal/server/models"
	"hamawards/internal/server/repositories/repomanager"
)

// IngestSummary reports the outcome of one ADIF upload.
type IngestSummary struct {
	TotalParsed       int `json:"total_parsed"`
	Inserted          int `json:"inserted"`
	SkippedDuplicates int `json:"skipped_duplicates"`
}

// LogbookStats is the aggregate view of one operator's log.
type LogbookStats struct {
	TotalQSOs int64 `json:"total_qsos"`
}

type LogbookService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewLogbookService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *LogbookService {
	return &LogbookService{
		db:          db,
		repomanager: m,
		logger:      logger.With("module", "logbook"),
	}
}

// Ingest parses an ADIF export and stores the normalized contacts for the
// operator. Rows colliding with already stored contacts on the dedup key are
// counted as skipped, never as errors; re-uploading the same file is a no-op.
func (s *LogbookService) Ingest(ctx context.Context, userID int64, raw string) (*IngestSummary, error) {
	parsed := adif.Parse(raw)

	summary := &IngestSummary{TotalParsed: len(parsed)}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.QSOs(tx)
		for _, fields := range parsed {
			qso := &models.QSO{UserID: userID, Record: adif.Normalize(fields)}
			inserted, err := repo.Insert(ctx, qso)
			if err != nil {
				return err
			}
			if inserted {
				summary.Inserted++
			} else {
				summary.SkippedDuplicates++
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error ingesting log: %w", err)
	}

	s.logger.Info(ctx, "log ingested",
		"user_id", userID,
		"parsed", summary.TotalParsed,
		"inserted", summary.Inserted,
		"skipped", summary.SkippedDuplicates)

	return summary, nil
}

// List returns the operator's stored contacts in insertion order.
func (s *LogbookService) List(ctx context.Context, userID int64) ([]*models.QSO, error) {
	repo := s.repomanager.QSOs(s.db)
	result, err := repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing log: %w", err)
	}
	return result, nil
}

// Stats returns aggregate counters for the operator's log.
func (s *LogbookService) Stats(ctx context.Context, userID int64) (*LogbookStats, error) {
	repo := s.repomanager.QSOs(s.db)
	n, err := repo.CountByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error counting log: %w", err)
	}
	return &LogbookStats{TotalQSOs: n}, nil
}

// Purge deletes the operator's entire log and returns the number of removed
// contacts. Issued awards are unaffected.
func (s *LogbookService) Purge(ctx context.Context, userID int64) (int64, error) {
	repo := s.repomanager.QSOs(s.db)
	n, err := repo.DeleteByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("error purging log: %w", err)
	}

	s.logger.Info(ctx, "log purged", "user_id", userID, "deleted", n)

	return n, nil
}
