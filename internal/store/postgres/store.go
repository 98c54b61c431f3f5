// Package postgres is the PostgreSQL core.Store.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JonMunkholm/indicators/internal/core"
	"github.com/JonMunkholm/indicators/internal/logging"
	"github.com/JonMunkholm/indicators/internal/schema"
)

const (
	tableIndicators  = "indicators"
	tableQuarantined = "quarantined_indicators"
)

// DB is the subset of pgxpool.Pool the store needs. pgx.Tx and pgxmock
// pools satisfy it too.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var (
	indicatorColumns   = append(append([]string{"id"}, schema.DBColumns()...), "status", "import_id", "created_at")
	quarantinedColumns = append(append([]string{"id"}, schema.DBColumns()...), "error_message", "import_id", "created_at")
)

// Store implements core.Store on PostgreSQL.
type Store struct {
	db   DB
	inTx bool
}

// New returns a store over db.
func New(db DB) *Store {
	return &Store{db: db}
}

var _ core.Store = (*Store)(nil)

type indicatorRow struct {
	ID                     int64     `db:"id"`
	Number                 string    `db:"number"`
	Structure              string    `db:"structure"`
	Level                  string    `db:"level"`
	Goal                   string    `db:"goal"`
	DeadlineStart          string    `db:"deadline_start"`
	DeadlineEnd            string    `db:"deadline_end"`
	Divisions              string    `db:"divisions"`
	Owner                  string    `db:"owner"`
	Coordinator            string    `db:"coordinator"`
	Responsibles           string    `db:"responsibles"`
	AdditionalResponsibles string    `db:"additional_responsibles"`
	Business               string    `db:"business"`
	Status                 string    `db:"status"`
	ErrorMessage           string    `db:"error_message"`
	ImportID               string    `db:"import_id"`
	CreatedAt              time.Time `db:"created_at"`
}

func (r indicatorRow) fields() core.Fields {
	return core.Fields{
		Number:                 r.Number,
		Structure:              core.ParseStructure(r.Structure),
		Level:                  r.Level,
		Goal:                   r.Goal,
		DeadlineStart:          r.DeadlineStart,
		DeadlineEnd:            r.DeadlineEnd,
		Divisions:              r.Divisions,
		Owner:                  r.Owner,
		Coordinator:            r.Coordinator,
		Responsibles:           r.Responsibles,
		AdditionalResponsibles: r.AdditionalResponsibles,
		Business:               r.Business,
	}
}

func (r indicatorRow) indicator() core.Indicator {
	return core.Indicator{ID: r.ID, Fields: r.fields(), Status: r.Status, ImportID: r.ImportID, CreatedAt: r.CreatedAt}
}

func (r indicatorRow) quarantined() core.QuarantinedIndicator {
	return core.QuarantinedIndicator{ID: r.ID, Fields: r.fields(), ErrorMessage: r.ErrorMessage, ImportID: r.ImportID, CreatedAt: r.CreatedAt}
}

// fieldMap returns the field columns of f keyed by column name.
func fieldMap(f core.Fields) map[string]any {
	values := f.Values()
	m := make(map[string]any, len(values))
	for i, col := range schema.DBColumns() {
		m[col] = values[i]
	}
	return m
}

func createdAt(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}

// SaveIndicator inserts ind and sets its ID.
func (s *Store) SaveIndicator(ctx context.Context, ind *core.Indicator) error {
	if ind.Status == "" {
		ind.Status = core.StatusValid
	}
	ind.CreatedAt = createdAt(ind.CreatedAt)

	values := fieldMap(ind.Fields)
	values["status"] = ind.Status
	values["import_id"] = ind.ImportID
	values["created_at"] = ind.CreatedAt

	query, args, err := psql.Insert(tableIndicators).SetMap(values).Suffix("RETURNING id").ToSql()
	if err != nil {
		return fmt.Errorf("building insert query: %w", err)
	}
	if err := s.db.QueryRow(ctx, query, args...).Scan(&ind.ID); err != nil {
		return fmt.Errorf("inserting indicator: %w", err)
	}
	return nil
}

// SaveQuarantined inserts q and sets its ID.
func (s *Store) SaveQuarantined(ctx context.Context, q *core.QuarantinedIndicator) error {
	q.CreatedAt = createdAt(q.CreatedAt)

	values := fieldMap(q.Fields)
	values["error_message"] = q.ErrorMessage
	values["import_id"] = q.ImportID
	values["created_at"] = q.CreatedAt

	query, args, err := psql.Insert(tableQuarantined).SetMap(values).Suffix("RETURNING id").ToSql()
	if err != nil {
		return fmt.Errorf("building insert query: %w", err)
	}
	if err := s.db.QueryRow(ctx, query, args...).Scan(&q.ID); err != nil {
		return fmt.Errorf("inserting quarantined indicator: %w", err)
	}
	return nil
}

func (s *Store) get(ctx context.Context, table string, columns []string, id int64) (indicatorRow, error) {
	query, args, err := psql.Select(columns...).From(table).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return indicatorRow{}, fmt.Errorf("building select query: %w", err)
	}
	var row indicatorRow
	if err := pgxscan.Get(ctx, s.db, &row, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return indicatorRow{}, fmt.Errorf("%s %d: %w", table, id, core.ErrNotFound)
		}
		return indicatorRow{}, fmt.Errorf("scanning %s row: %w", table, err)
	}
	return row, nil
}

// GetIndicator returns a valid record by id.
func (s *Store) GetIndicator(ctx context.Context, id int64) (core.Indicator, error) {
	row, err := s.get(ctx, tableIndicators, indicatorColumns, id)
	if err != nil {
		return core.Indicator{}, err
	}
	return row.indicator(), nil
}

// GetQuarantined returns a quarantined record by id.
func (s *Store) GetQuarantined(ctx context.Context, id int64) (core.QuarantinedIndicator, error) {
	row, err := s.get(ctx, tableQuarantined, quarantinedColumns, id)
	if err != nil {
		return core.QuarantinedIndicator{}, err
	}
	return row.quarantined(), nil
}

func (s *Store) update(ctx context.Context, table string, id int64, values map[string]any) error {
	query, args, err := psql.Update(table).SetMap(values).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("building update query: %w", err)
	}
	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating %s: %w", table, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %d: %w", table, id, core.ErrNotFound)
	}
	return nil
}

// UpdateIndicator overwrites the fields and status of a valid record.
func (s *Store) UpdateIndicator(ctx context.Context, ind core.Indicator) error {
	values := fieldMap(ind.Fields)
	values["status"] = ind.Status
	return s.update(ctx, tableIndicators, ind.ID, values)
}

// UpdateQuarantined overwrites the fields and error message of a quarantined record.
func (s *Store) UpdateQuarantined(ctx context.Context, q core.QuarantinedIndicator) error {
	values := fieldMap(q.Fields)
	values["error_message"] = q.ErrorMessage
	return s.update(ctx, tableQuarantined, q.ID, values)
}

// DeleteQuarantined removes one quarantined record.
func (s *Store) DeleteQuarantined(ctx context.Context, id int64) error {
	query, args, err := psql.Delete(tableQuarantined).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("building delete query: %w", err)
	}
	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("deleting quarantined indicator: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %d: %w", tableQuarantined, id, core.ErrNotFound)
	}
	return nil
}

func (s *Store) list(ctx context.Context, table string, columns []string) ([]indicatorRow, error) {
	query, args, err := psql.Select(columns...).From(table).OrderBy("id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}
	var rows []indicatorRow
	if err := pgxscan.Select(ctx, s.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("scanning %s rows: %w", table, err)
	}
	return rows, nil
}

// ListIndicators returns the valid store in insertion order.
func (s *Store) ListIndicators(ctx context.Context) ([]core.Indicator, error) {
	rows, err := s.list(ctx, tableIndicators, indicatorColumns)
	if err != nil {
		return nil, err
	}
	out := make([]core.Indicator, len(rows))
	for i, r := range rows {
		out[i] = r.indicator()
	}
	return out, nil
}

// ListQuarantined returns the quarantine store in insertion order.
func (s *Store) ListQuarantined(ctx context.Context) ([]core.QuarantinedIndicator, error) {
	rows, err := s.list(ctx, tableQuarantined, quarantinedColumns)
	if err != nil {
		return nil, err
	}
	out := make([]core.QuarantinedIndicator, len(rows))
	for i, r := range rows {
		out[i] = r.quarantined()
	}
	return out, nil
}

func (s *Store) deleteAll(ctx context.Context, table string) (int64, error) {
	query, args, err := psql.Delete(table).ToSql()
	if err != nil {
		return 0, fmt.Errorf("building delete query: %w", err)
	}
	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("clearing %s: %w", table, err)
	}
	return tag.RowsAffected(), nil
}

// DeleteAllIndicators empties the valid store.
func (s *Store) DeleteAllIndicators(ctx context.Context) (int64, error) {
	return s.deleteAll(ctx, tableIndicators)
}

// DeleteAllQuarantined empties the quarantine store.
func (s *Store) DeleteAllQuarantined(ctx context.Context) (int64, error) {
	return s.deleteAll(ctx, tableQuarantined)
}

// InTx runs fn in a database transaction. Calls from inside fn join the
// enclosing transaction.
func (s *Store) InTx(ctx context.Context, fn func(tx core.Store) error) (err error) {
	if s.inTx {
		return fn(s)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				logging.FromContext(ctx).Error("rollback failed", "error", rbErr)
			}
			return
		}
		if cmErr := tx.Commit(ctx); cmErr != nil {
			err = fmt.Errorf("commit transaction: %w", cmErr)
		}
	}()

	return fn(&Store{db: tx, inTx: true})
}
