package storage

import (
	"context"
	"io"
	"testing"

	"github.com/9seconds/tracemap/tracelib"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type pgxConnMock struct {
	mock.Mock
}

func (m *pgxConnMock) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	callArgs := m.Called(append([]interface{}{ctx, sql}, args...)...)

	return pgconn.CommandTag(callArgs.String(0)), callArgs.Error(1)
}

func (m *pgxConnMock) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	callArgs := m.Called(append([]interface{}{ctx, sql}, args...)...)

	return callArgs.Get(0).(pgx.Row)
}

type pgxRowMock struct {
	lat, lng  *float64
	isPrivate bool
	err       error
}

func (r pgxRowMock) Scan(dest ...interface{}) error {
	if r.err != nil {
		return r.err
	}

	*dest[0].(**float64) = r.lat
	*dest[1].(**float64) = r.lng
	*dest[2].(*bool) = r.isPrivate

	return nil
}

type PostgresStoreTestSuite struct {
	suite.Suite

	conn  *pgxConnMock
	store *PostgresStore
	ctx   context.Context
}

func (suite *PostgresStoreTestSuite) SetupTest() {
	suite.conn = &pgxConnMock{}
	suite.store = &PostgresStore{conn: suite.conn}
	suite.ctx = context.Background()
}

func (suite *PostgresStoreTestSuite) TearDownTest() {
	suite.conn.AssertExpectations(suite.T())
}

func (suite *PostgresStoreTestSuite) ExpectTable() {
	suite.conn.
		On("Exec", suite.ctx, postgresCreateTable).
		Once().
		Return("CREATE TABLE", nil)
}

func (suite *PostgresStoreTestSuite) TestCannotCreateTable() {
	suite.conn.
		On("Exec", suite.ctx, postgresCreateTable).
		Twice().
		Return("", io.EOF)

	_, _, err := suite.store.Get(suite.ctx, "1.1.1.1")

	suite.ErrorIs(err, io.EOF)
	suite.ErrorIs(suite.store.Put(suite.ctx, "1.1.1.1", tracelib.UnknownCacheEntry()), io.EOF)
}

func (suite *PostgresStoreTestSuite) TestGetAbsent() {
	suite.ExpectTable()
	suite.conn.
		On("QueryRow", suite.ctx, postgresSelectRow, "1.1.1.1").
		Once().
		Return(pgxRowMock{err: pgx.ErrNoRows})

	_, ok, err := suite.store.Get(suite.ctx, "1.1.1.1")

	suite.NoError(err)
	suite.False(ok)
}

func (suite *PostgresStoreTestSuite) TestGetError() {
	suite.ExpectTable()
	suite.conn.
		On("QueryRow", suite.ctx, postgresSelectRow, "1.1.1.1").
		Once().
		Return(pgxRowMock{err: io.EOF})

	_, _, err := suite.store.Get(suite.ctx, "1.1.1.1")

	suite.ErrorIs(err, io.EOF)
}

func (suite *PostgresStoreTestSuite) TestGetRows() {
	lat, lng := 0.0, 0.0

	suite.ExpectTable()
	suite.conn.
		On("QueryRow", suite.ctx, postgresSelectRow, "1.1.1.1").
		Once().
		Return(pgxRowMock{lat: &lat, lng: &lng})
	suite.conn.
		On("QueryRow", suite.ctx, postgresSelectRow, "10.0.0.1").
		Once().
		Return(pgxRowMock{isPrivate: true})
	suite.conn.
		On("QueryRow", suite.ctx, postgresSelectRow, "1.1.1.2").
		Once().
		Return(pgxRowMock{})

	entry, ok, err := suite.store.Get(suite.ctx, "1.1.1.1")

	suite.NoError(err)
	suite.True(ok)
	suite.Equal(tracelib.LocatedCacheEntry(0, 0), entry)

	entry, ok, err = suite.store.Get(suite.ctx, "10.0.0.1")

	suite.NoError(err)
	suite.True(ok)
	suite.Equal(tracelib.PrivateCacheEntry(), entry)

	entry, ok, err = suite.store.Get(suite.ctx, "1.1.1.2")

	suite.NoError(err)
	suite.True(ok)
	suite.Equal(tracelib.UnknownCacheEntry(), entry)
}

func (suite *PostgresStoreTestSuite) TestPut() {
	suite.ExpectTable()
	suite.conn.
		On("Exec", suite.ctx, postgresUpsertRow, "10.0.0.1", (*float64)(nil), (*float64)(nil), true).
		Once().
		Return("INSERT 0 1", nil)
	suite.conn.
		On("Exec", suite.ctx, postgresUpsertRow, "1.1.1.1",
			mock.MatchedBy(func(v *float64) bool { return v != nil && *v == 1.5 }),
			mock.MatchedBy(func(v *float64) bool { return v != nil && *v == -2.5 }),
			false).
		Once().
		Return("INSERT 0 1", nil)

	suite.NoError(suite.store.Put(suite.ctx, "10.0.0.1", tracelib.PrivateCacheEntry()))
	suite.NoError(suite.store.Put(suite.ctx, "1.1.1.1", tracelib.LocatedCacheEntry(1.5, -2.5)))
}

func (suite *PostgresStoreTestSuite) TestPutError() {
	suite.ExpectTable()
	suite.conn.
		On("Exec", suite.ctx, postgresUpsertRow, "1.1.1.1", (*float64)(nil), (*float64)(nil), false).
		Once().
		Return("", io.EOF)

	suite.ErrorIs(suite.store.Put(suite.ctx, "1.1.1.1", tracelib.UnknownCacheEntry()), io.EOF)
}

func (suite *PostgresStoreTestSuite) TestClose() {
	closed := false
	suite.store.close = func() { closed = true }

	suite.store.Close()

	suite.True(closed)
}

func (suite *PostgresStoreTestSuite) TestIncorrectDSN() {
	_, err := NewPostgresStore(suite.ctx, "postgres://user@localhost:port/db")

	suite.Error(err)
}

func (suite *PostgresStoreTestSuite) TestConnectCancelled() {
	ctx, cancel := context.WithCancel(suite.ctx)
	cancel()

	_, err := NewPostgresStore(ctx, "postgres://user@127.0.0.1:1/db?connect_timeout=1")

	suite.Error(err)
}

func TestPostgresStore(t *testing.T) {
	suite.Run(t, &PostgresStoreTestSuite{})
}
