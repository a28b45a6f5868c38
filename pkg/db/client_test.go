package db

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hijabina/hijabina-backend/pkg/logger"
)

type promoRow struct {
	ID   int
	Code string `gorm:"uniqueIndex"`
}

func openSQLite(t *testing.T, cfg *gorm.Config) *gorm.DB {
	t.Helper()
	if cfg == nil {
		cfg = &gorm.Config{SkipDefaultTransaction: true}
	}
	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), cfg)
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&promoRow{}))
	return conn
}

func countPromos(t *testing.T, conn *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, conn.Model(&promoRow{}).Count(&n).Error)
	return n
}

func TestWithTxCommitsOnSuccess(t *testing.T) {
	conn := openSQLite(t, nil)
	err := Wrap(conn).WithTx(context.Background(), func(tx *gorm.DB) error {
		return tx.Create(&promoRow{Code: "HIJAB10"}).Error
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, countPromos(t, conn))
}

func TestWithTxRollsBackOnError(t *testing.T) {
	conn := openSQLite(t, nil)
	boom := errors.New("stock check failed")
	err := Wrap(conn).WithTx(context.Background(), func(tx *gorm.DB) error {
		require.NoError(t, tx.Create(&promoRow{Code: "RAMADAN"}).Error)
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.EqualValues(t, 0, countPromos(t, conn))
}

func TestWithTxRollsBackOnPanic(t *testing.T) {
	conn := openSQLite(t, nil)
	assert.Panics(t, func() {
		_ = Wrap(conn).WithTx(context.Background(), func(tx *gorm.DB) error {
			tx.Create(&promoRow{Code: "WELCOME"})
			panic("handler bug")
		})
	})
	assert.EqualValues(t, 0, countPromos(t, conn))
}

func TestIsUniqueViolation(t *testing.T) {
	conn := openSQLite(t, nil)
	require.NoError(t, conn.Create(&promoRow{Code: "dup"}).Error)

	assert.True(t, IsUniqueViolation(conn.Create(&promoRow{Code: "dup"}).Error, ""))
	assert.False(t, IsUniqueViolation(errors.New("other failure"), ""))
	assert.False(t, IsUniqueViolation(nil, ""))
}

func TestPing(t *testing.T) {
	assert.NoError(t, Wrap(openSQLite(t, nil)).Ping(context.Background()))
}

func TestQueryLoggerReportsFailuresButNotMisses(t *testing.T) {
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Output: &buf, Format: "json"})
	conn := openSQLite(t, &gorm.Config{Logger: newQueryLogger(logg, time.Hour)})

	var row promoRow
	err := conn.First(&row, "code = ?", "missing").Error
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NotContains(t, buf.String(), "db.query_failed")

	_ = conn.Exec("SELECT * FROM no_such_table").Error
	assert.Contains(t, buf.String(), "db.query_failed")
	assert.Contains(t, buf.String(), "no_such_table")
}

func TestQueryLoggerFlagsSlowStatements(t *testing.T) {
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Output: &buf, Format: "json"})
	ql := newQueryLogger(logg, time.Millisecond)

	ql.Trace(context.Background(), time.Now().Add(-time.Second), func() (string, int64) {
		return "SELECT 1", 1
	}, nil)
	assert.Contains(t, buf.String(), "db.slow_query")

	buf.Reset()
	ql.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 1 }, nil)
	assert.Empty(t, buf.String())
}
