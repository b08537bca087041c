// Package persistence writes prediction results to the result table and
// fans them out to the optional search index and event topic.
package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	apperrors "eiv-admissions/internal/common/errors"
	"eiv-admissions/internal/models"
)

// DefaultVOBID is stored when the request carried no VOB id.
const DefaultVOBID = "001"

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Columns of the result table in insert order.
var Columns = []string{
	"vob_id", "client_name", "prediction_date",
	"sca_eiv_percentage", "sca_eiv_money", "sca_client_type", "sca_probability", "sca_z_score", "sca_financial_status",
	"nsca_eiv_percentage", "nsca_eiv_money", "nsca_client_type", "nsca_probability", "nsca_z_score", "nsca_financial_status",
	"timestamp",
}

// Execer is satisfied by *sql.DB and database.PostgresClient.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// ResultStore upserts results keyed by (vob_id, prediction_date).
type ResultStore struct {
	db    Execer
	query string
	now   func() time.Time
}

func NewResultStore(db Execer, table string) (*ResultStore, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid result table name %q", table)
	}
	return &ResultStore{db: db, query: UpsertQuery(table), now: time.Now}, nil
}

// UpsertQuery builds the parameterized insert-or-update statement.
func UpsertQuery(table string) string {
	placeholders := make([]string, len(Columns))
	for i := range Columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	var updates []string
	for _, c := range Columns {
		if c == "vob_id" || c == "prediction_date" {
			continue
		}
		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", c, c))
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (vob_id, prediction_date) DO UPDATE SET %s",
		table, strings.Join(Columns, ", "), strings.Join(placeholders, ", "), strings.Join(updates, ", "))
}

// Args returns the bound values for r in column order.
func Args(r *models.PredictionResult, writtenAt time.Time) []interface{} {
	vobID := DefaultVOBID
	if r.VOBID != nil {
		vobID = *r.VOBID
	}
	return []interface{}{
		vobID, r.ClientName, r.PredictionDate.Format("2006-01-02"),
		r.SCA.EIVPercentage, r.SCA.EIVValue, r.SCA.EIVClientType, r.SCA.PercClientType, r.SCA.EIVZscore, r.SCA.FinancialStatus,
		r.NSCA.EIVPercentage, r.NSCA.EIVValue, r.NSCA.EIVClientType, r.NSCA.PercClientType, r.NSCA.EIVZscore, r.NSCA.FinancialStatus,
		writtenAt,
	}
}

// Upsert writes r. Any failure is a persistence error wrapping the cause.
func (s *ResultStore) Upsert(ctx context.Context, r *models.PredictionResult) error {
	if _, err := s.db.ExecContext(ctx, s.query, Args(r, s.now().UTC())...); err != nil {
		return apperrors.NewPersistenceError(fmt.Errorf("upsert result: %w", err))
	}
	return nil
}
