package syncstats

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/require"

	"github.com/PrometheusPrograms/balloono/internal/stats"
)

func TestFlushOnceMirrorsCountersAndDrains(t *testing.T) {
	rdc, rmock := redismock.NewClientMock()
	db, dbmock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rmock.ExpectSMembers(stats.DirtySet).SetVal([]string{"stats:42"})
	rmock.ExpectHGetAll("stats:42").SetVal(map[string]string{
		stats.FieldScore:    "3",
		stats.FieldBalloons: "5",
		stats.FieldPowerups: "1",
	})

	dbmock.ExpectBegin()
	dbmock.ExpectExec("UPDATE users").
		WithArgs(int64(42), int64(3), int64(5), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	dbmock.ExpectCommit()

	rmock.ExpectDel("stats:42").SetVal(1)
	rmock.ExpectSRem(stats.DirtySet, "stats:42").SetVal(1)

	flushOnce(context.Background(), rdc, db)

	require.NoError(t, rmock.ExpectationsWereMet())
	require.NoError(t, dbmock.ExpectationsWereMet())
}

func TestFlushOnceNothingDirty(t *testing.T) {
	rdc, rmock := redismock.NewClientMock()
	db, dbmock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rmock.ExpectSMembers(stats.DirtySet).SetVal([]string{})

	flushOnce(context.Background(), rdc, db)

	require.NoError(t, rmock.ExpectationsWereMet())
	require.NoError(t, dbmock.ExpectationsWereMet(), "no transaction without dirty counters")
}
