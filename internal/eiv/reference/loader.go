// Package reference loads the historical reference dataset and guards
// categorical request values against it.
package reference

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	apperrors "eiv-admissions/internal/common/errors"
	"eiv-admissions/internal/common/logger"
	"eiv-admissions/internal/common/metrics"
	"eiv-admissions/internal/models"
)

// Querier executes the reference query. *sql.DB and the warehouse client satisfy it.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// Loader fetches and deduplicates the reference dataset.
type Loader struct {
	db     Querier
	query  string
	cache  SnapshotStore
	logger logger.Logger
	now    func() time.Time
}

// NewLoader builds a loader. cache may be nil.
func NewLoader(db Querier, query string, cache SnapshotStore, log logger.Logger) *Loader {
	return &Loader{
		db:     db,
		query:  query,
		cache:  cache,
		logger: log.WithFields(map[string]interface{}{"component": "reference-loader"}),
		now:    time.Now,
	}
}

// Load returns the current snapshot. A cached snapshot is used when present;
// cache failures fall through to the warehouse.
func (l *Loader) Load(ctx context.Context) (*models.ReferenceDataset, error) {
	if l.cache != nil {
		ds, err := l.cache.Get(ctx, l.query)
		switch {
		case err != nil:
			metrics.ReferenceCacheHits.WithLabelValues("error").Inc()
			l.logger.Warn("Reference cache read failed", map[string]interface{}{"error": err.Error()})
		case ds != nil:
			metrics.ReferenceCacheHits.WithLabelValues("hit").Inc()
			l.logger.Debug("Reference snapshot served from cache", map[string]interface{}{"rows": len(ds.Rows)})
			return ds, nil
		default:
			metrics.ReferenceCacheHits.WithLabelValues("miss").Inc()
		}
	}

	ds, err := l.fetch(ctx)
	if err != nil {
		return nil, err
	}
	metrics.ReferenceRows.Set(float64(len(ds.Rows)))

	if l.cache != nil {
		if err := l.cache.Set(ctx, l.query, ds); err != nil {
			l.logger.Warn("Reference cache write failed", map[string]interface{}{"error": err.Error()})
		}
	}
	return ds, nil
}

func (l *Loader) fetch(ctx context.Context) (*models.ReferenceDataset, error) {
	start := l.now()

	rows, err := l.db.QueryContext(ctx, l.query)
	if err != nil {
		return nil, apperrors.NewReferenceLoadError(fmt.Errorf("reference query failed: %w", err))
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, apperrors.NewReferenceLoadError(err)
	}
	if len(columns) == 0 {
		return nil, apperrors.NewReferenceLoadError(fmt.Errorf("reference query returned no result"))
	}

	var all []models.ReferenceRow
	for rows.Next() {
		cells := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, apperrors.NewReferenceLoadError(fmt.Errorf("failed to scan reference row: %w", err))
		}

		row := make(models.ReferenceRow, len(columns)+1)
		for i, col := range columns {
			row[col] = normalizeCell(cells[i])
		}
		all = append(all, row)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewReferenceLoadError(err)
	}

	ds := &models.ReferenceDataset{
		Columns:  append(columns, models.ColVOBID),
		Rows:     Deduplicate(all),
		LoadedAt: l.now().UTC(),
	}
	for _, row := range ds.Rows {
		row[models.ColVOBID] = nil
	}

	l.logger.Info("Reference dataset loaded", map[string]interface{}{
		"rawRows":    len(all),
		"rows":       len(ds.Rows),
		"durationMs": l.now().Sub(start).Milliseconds(),
	})
	return ds, nil
}

// Deduplicate keeps the first row for each (CLIENT_NAME, ALLOWED) pair.
// Nulls compare equal to each other.
func Deduplicate(rows []models.ReferenceRow) []models.ReferenceRow {
	seen := make(map[string]struct{}, len(rows))
	out := make([]models.ReferenceRow, 0, len(rows))
	for _, row := range rows {
		key := cellKey(row[models.ColClientName]) + "\x1f" + cellKey(row[models.ColAllowed])
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, row)
	}
	return out
}

func cellKey(v interface{}) string {
	switch c := v.(type) {
	case nil:
		return "\x00"
	case float64:
		return "n:" + strconv.FormatFloat(c, 'g', -1, 64)
	case string:
		return "s:" + c
	default:
		return fmt.Sprintf("%T:%v", c, c)
	}
}

// normalizeCell maps driver values onto string, float64 or nil.
func normalizeCell(v interface{}) interface{} {
	switch c := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(c)
	case string:
		return c
	case float64:
		return c
	case float32:
		return float64(c)
	case int64:
		return float64(c)
	case int32:
		return float64(c)
	case int:
		return float64(c)
	case bool:
		if c {
			return "True"
		}
		return "False"
	case time.Time:
		return c.Format("2006-01-02")
	default:
		return fmt.Sprint(c)
	}
}
