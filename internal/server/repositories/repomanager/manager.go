package repomanager

import (
	"context"
	"database/sql"

	"hamawards/internal/dbx"
	"hamawards/internal/server/repositories/awards"
	"hamawards/internal/server/repositories/claims"
	"hamawards/internal/server/repositories/qsos"
	"hamawards/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	QSOs(db dbx.DBTX) qsos.Repository
	Awards(db dbx.DBTX) awards.Repository
	Claims(db dbx.DBTX) claims.Repository
}
