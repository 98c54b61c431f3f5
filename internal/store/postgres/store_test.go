package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/indicators/internal/core"
	"github.com/JonMunkholm/indicators/internal/division"
	"github.com/JonMunkholm/indicators/internal/store/postgres"
)

var (
	indicatorCols = []string{
		"id", "number", "structure", "level", "goal", "deadline_start", "deadline_end",
		"divisions", "owner", "coordinator", "responsibles", "additional_responsibles",
		"business", "status", "import_id", "created_at",
	}
	quarantinedCols = []string{
		"id", "number", "structure", "level", "goal", "deadline_start", "deadline_end",
		"divisions", "owner", "coordinator", "responsibles", "additional_responsibles",
		"business", "error_message", "import_id", "created_at",
	}
)

func anyArgs(n int) []any {
	args := make([]any, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func quarantinedRows(mock pgxmock.PgxPoolIface, id int64, structure, divisions string) *pgxmock.Rows {
	return mock.NewRows(quarantinedCols).AddRow(
		id, "1.1.", structure, "", "Goal", "01-02-2024", "31-12-2024",
		divisions, "", `CORP\asmith`, "", "", "", "empty_owner", "imp-1", time.Now(),
	)
}

func TestSaveIndicator(t *testing.T) {
	mock := newMock(t)
	s := postgres.New(mock)

	mock.ExpectQuery("INSERT INTO indicators").
		WithArgs(anyArgs(15)...).
		WillReturnRows(mock.NewRows([]string{"id"}).AddRow(int64(7)))

	ind := &core.Indicator{Fields: core.Fields{Number: "1.", Structure: core.KindGoal}}
	require.NoError(t, s.SaveIndicator(context.Background(), ind))

	assert.Equal(t, int64(7), ind.ID)
	assert.Equal(t, core.StatusValid, ind.Status)
	assert.False(t, ind.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveQuarantined(t *testing.T) {
	mock := newMock(t)
	s := postgres.New(mock)

	mock.ExpectQuery("INSERT INTO quarantined_indicators").
		WithArgs(anyArgs(15)...).
		WillReturnRows(mock.NewRows([]string{"id"}).AddRow(int64(3)))

	q := &core.QuarantinedIndicator{ErrorMessage: core.ReasonEmptyNumber}
	require.NoError(t, s.SaveQuarantined(context.Background(), q))
	assert.Equal(t, int64(3), q.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetIndicator(t *testing.T) {
	mock := newMock(t)
	s := postgres.New(mock)
	created := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT (.+) FROM indicators WHERE id = \$1`).
		WithArgs(int64(3)).
		WillReturnRows(mock.NewRows(indicatorCols).AddRow(
			int64(3), "1.1.", "Task", "L1", "Goal", "01-02-2024", "31-12-2024",
			"HR, IT", `CORP\jdoe`, `CORP\asmith`, "", "", "Retail", "valid", "imp-1", created,
		))

	got, err := s.GetIndicator(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, core.Indicator{
		ID: 3,
		Fields: core.Fields{
			Number: "1.1.", Structure: core.KindTask, Level: "L1", Goal: "Goal",
			DeadlineStart: "01-02-2024", DeadlineEnd: "31-12-2024", Divisions: "HR, IT",
			Owner: `CORP\jdoe`, Coordinator: `CORP\asmith`, Business: "Retail",
		},
		Status:    core.StatusValid,
		ImportID:  "imp-1",
		CreatedAt: created,
	}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetQuarantined_SentinelStructures(t *testing.T) {
	tests := []struct {
		stored string
		want   core.StructureKind
	}{
		{"", core.KindEmpty},
		{" ", core.KindSpace},
		{"error", core.KindError},
		{"Subtask", core.KindSubtask},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			mock := newMock(t)
			s := postgres.New(mock)
			mock.ExpectQuery(`SELECT (.+) FROM quarantined_indicators WHERE id = \$1`).
				WithArgs(int64(2)).
				WillReturnRows(quarantinedRows(mock, 2, tt.stored, "HR"))

			got, err := s.GetQuarantined(context.Background(), 2)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Structure)
			assert.Equal(t, "empty_owner", got.ErrorMessage)
		})
	}
}

func TestGetNotFound(t *testing.T) {
	mock := newMock(t)
	s := postgres.New(mock)

	mock.ExpectQuery(`SELECT (.+) FROM indicators WHERE id = \$1`).
		WithArgs(int64(9)).
		WillReturnRows(mock.NewRows(indicatorCols))

	_, err := s.GetIndicator(context.Background(), 9)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateIndicator(t *testing.T) {
	mock := newMock(t)
	s := postgres.New(mock)

	ind := core.Indicator{
		ID:     4,
		Fields: core.Fields{Number: "2.", Structure: core.KindGoal, Divisions: "HR"},
		Status: core.StatusValid,
	}

	// SET columns are in name order, then the id.
	mock.ExpectExec(`UPDATE indicators SET (.+) WHERE id = \$14`).
		WithArgs("", "", "", "", "", "HR", "", "", "2.", "", "", core.StatusValid, "Goal", int64(4)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, s.UpdateIndicator(context.Background(), ind))

	mock.ExpectExec("UPDATE indicators SET").
		WithArgs(anyArgs(14)...).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	ind.ID = 5
	assert.ErrorIs(t, s.UpdateIndicator(context.Background(), ind), core.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateQuarantined(t *testing.T) {
	mock := newMock(t)
	s := postgres.New(mock)

	mock.ExpectExec("UPDATE quarantined_indicators SET").
		WithArgs(anyArgs(14)...).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	q := core.QuarantinedIndicator{ID: 1, ErrorMessage: "fixed"}
	require.NoError(t, s.UpdateQuarantined(context.Background(), q))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteQuarantined(t *testing.T) {
	mock := newMock(t)
	s := postgres.New(mock)

	mock.ExpectExec(`DELETE FROM quarantined_indicators WHERE id = \$1`).
		WithArgs(int64(1)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`DELETE FROM quarantined_indicators WHERE id = \$1`).
		WithArgs(int64(2)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.NoError(t, s.DeleteQuarantined(context.Background(), 1))
	assert.ErrorIs(t, s.DeleteQuarantined(context.Background(), 2), core.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListIndicators(t *testing.T) {
	mock := newMock(t)
	s := postgres.New(mock)
	now := time.Now()

	mock.ExpectQuery(`SELECT (.+) FROM indicators ORDER BY id`).
		WillReturnRows(mock.NewRows(indicatorCols).
			AddRow(int64(1), "2.", "Goal", "", "", "", "", "HR", "", "", "", "", "", "valid", "a", now).
			AddRow(int64(2), "1.", "Section", "", "", "", "", "IT", "", "", "", "", "", "valid", "a", now))

	list, err := s.ListIndicators(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "2.", list[0].Number)
	assert.Equal(t, core.KindSection, list[1].Structure)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteAll(t *testing.T) {
	mock := newMock(t)
	s := postgres.New(mock)

	mock.ExpectExec("DELETE FROM indicators").WillReturnResult(pgxmock.NewResult("DELETE", 12))
	mock.ExpectExec("DELETE FROM quarantined_indicators").WillReturnResult(pgxmock.NewResult("DELETE", 0))

	n, err := s.DeleteAllIndicators(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)

	n, err = s.DeleteAllQuarantined(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInTx(t *testing.T) {
	t.Run("commits on success", func(t *testing.T) {
		mock := newMock(t)
		s := postgres.New(mock)

		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM indicators").WillReturnResult(pgxmock.NewResult("DELETE", 1))
		mock.ExpectCommit()

		err := s.InTx(context.Background(), func(tx core.Store) error {
			// Nested calls join the outer transaction.
			return tx.InTx(context.Background(), func(inner core.Store) error {
				_, err := inner.DeleteAllIndicators(context.Background())
				return err
			})
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on error", func(t *testing.T) {
		mock := newMock(t)
		s := postgres.New(mock)
		boom := errors.New("boom")

		mock.ExpectBegin()
		mock.ExpectRollback()

		err := s.InTx(context.Background(), func(core.Store) error { return boom })
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports commit failure", func(t *testing.T) {
		mock := newMock(t)
		s := postgres.New(mock)

		mock.ExpectBegin()
		mock.ExpectCommit().WillReturnError(errors.New("connection reset by peer"))

		err := s.InTx(context.Background(), func(core.Store) error { return nil })
		assert.ErrorContains(t, err, "commit transaction")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin failure", func(t *testing.T) {
		mock := newMock(t)
		s := postgres.New(mock)

		mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

		called := false
		err := s.InTx(context.Background(), func(core.Store) error {
			called = true
			return nil
		})
		assert.ErrorContains(t, err, "beginning transaction")
		assert.False(t, called)
	})
}

func TestPromoteRollsBackOnMissingID(t *testing.T) {
	mock := newMock(t)
	svc, err := core.NewService(postgres.New(mock), division.NewRegistry("HR"), core.Options{})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM quarantined_indicators WHERE id = \$1`).
		WithArgs(int64(5)).
		WillReturnRows(quarantinedRows(mock, 5, "Task", "HR"))
	mock.ExpectQuery("INSERT INTO indicators").
		WithArgs(anyArgs(15)...).
		WillReturnRows(mock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectExec(`DELETE FROM quarantined_indicators WHERE id = \$1`).
		WithArgs(int64(5)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectQuery(`SELECT (.+) FROM quarantined_indicators WHERE id = \$1`).
		WithArgs(int64(9)).
		WillReturnRows(mock.NewRows(quarantinedCols))
	mock.ExpectRollback()

	_, err = svc.Promote(context.Background(), []int64{5, 9})
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
