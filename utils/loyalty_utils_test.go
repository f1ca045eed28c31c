package utils

import (
	"context"
	"database/sql"
	"testing"

	"github.com/moria-pecas/moria-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ledgerConn records every statement gorm sends and answers each exec with a
// scripted rows-affected count, so the guarded debit statements can be
// checked without a database.
type ledgerConn struct {
	statements []string
	args       [][]interface{}
	rows       []int64
	calls      int
}

func (c *ledgerConn) ExecContext(_ context.Context, query string, args ...interface{}) (sql.Result, error) {
	c.statements = append(c.statements, query)
	c.args = append(c.args, args)
	rows := int64(1)
	if c.calls < len(c.rows) {
		rows = c.rows[c.calls]
	}
	c.calls++
	return ledgerResult(rows), nil
}

func (c *ledgerConn) PrepareContext(context.Context, string) (*sql.Stmt, error) {
	return nil, sql.ErrConnDone
}

func (c *ledgerConn) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, sql.ErrConnDone
}

func (c *ledgerConn) QueryRowContext(context.Context, string, ...interface{}) *sql.Row {
	return nil
}

func (c *ledgerConn) BeginTx(context.Context, *sql.TxOptions) (gorm.ConnPool, error) {
	return c, nil
}

func (c *ledgerConn) Commit() error   { return nil }
func (c *ledgerConn) Rollback() error { return nil }

type ledgerResult int64

func (r ledgerResult) LastInsertId() (int64, error) { return 0, nil }
func (r ledgerResult) RowsAffected() (int64, error) { return int64(r), nil }

func openLedgerDB(t *testing.T, conn *ledgerConn) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), &gorm.Config{
		DisableAutomaticPing: true,
		// The fake conn implements Commit/Rollback, which gorm would
		// otherwise mistake for an open transaction and wrap each
		// Transaction call in a SAVEPOINT a real *sql.DB never emits.
		DisableNestedTransaction: true,
		Logger:                   logger.Discard,
	})
	require.NoError(t, err)
	return db
}

func TestDebitPointsSerializesPerUser(t *testing.T) {
	conn := &ledgerConn{rows: []int64{1, 1}}
	db := openLedgerDB(t, conn)

	err := DebitPoints(db, 7, 500, models.LoyaltyReasonRedemption, "reward:3")
	require.NoError(t, err)

	require.Len(t, conn.statements, 2)
	assert.Contains(t, conn.statements[0], "FROM users")
	assert.Contains(t, conn.statements[0], "FOR UPDATE")
	assert.Contains(t, conn.statements[1], "INSERT INTO loyalty_transactions")
	assert.Contains(t, conn.statements[1], "COALESCE(SUM(points)")
	assert.Contains(t, conn.args[1], int64(-500))
}

func TestDebitPointsInsufficientBalance(t *testing.T) {
	conn := &ledgerConn{rows: []int64{1, 0}}
	db := openLedgerDB(t, conn)

	err := DebitPoints(db, 7, 500, models.LoyaltyReasonRedemption, "reward:3")
	require.ErrorIs(t, err, ErrInsufficientPoints)
}

func TestAdjustPointsDebitIsGuarded(t *testing.T) {
	conn := &ledgerConn{rows: []int64{1, 1}}
	db := openLedgerDB(t, conn)

	err := AdjustPoints(db, 9, -200, "support credit reversal")
	require.NoError(t, err)

	require.Len(t, conn.statements, 2)
	assert.Contains(t, conn.statements[0], "FOR UPDATE")
	assert.Contains(t, conn.statements[1], "INSERT INTO loyalty_transactions")
	assert.Contains(t, conn.args[1], int64(-200))
}

func TestAdjustPointsOverdrawRejected(t *testing.T) {
	conn := &ledgerConn{rows: []int64{1, 0}}
	db := openLedgerDB(t, conn)

	err := AdjustPoints(db, 9, -200, "typo fix")
	require.ErrorIs(t, err, ErrInsufficientPoints)
}
