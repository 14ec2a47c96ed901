package services

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/hobbytracker/internal/common"
	"github.com/dmitrijs2005/hobbytracker/internal/dbx"
	"github.com/dmitrijs2005/hobbytracker/internal/server/models"
	"github.com/dmitrijs2005/hobbytracker/internal/server/repositories/users"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// insertUser is the statement memUsersRepo.Create executes. stagingConn
// intercepts it instead of passing it to sqlmock.
const insertUser = "INSERT INTO users (username, email, password) VALUES ($1, $2, $3)"

var errDuplicate = errors.New("duplicate key value violates unique constraint")

// memStore is an in-memory users table with unique username and email.
// Inserts made inside a transaction are pending until that transaction's
// Commit succeeds in sqlmock. A failed commit or a rollback discards them.
// Pending rows already hold their keys, so a second transaction inserting
// the same username or email fails.
type memStore struct {
	mu        sync.Mutex
	committed []*models.User
	pending   map[*stagingTx][]*models.User
	nextID    int64

	findErr   error
	createErr error

	// skipFind hides committed rows from FindByUsernameOrEmail to simulate a
	// concurrent insert landing between check and create.
	skipFind bool

	findCalls   int
	createCalls int
}

func newMemStore(rows ...*models.User) *memStore {
	s := &memStore{pending: make(map[*stagingTx][]*models.User)}
	for _, u := range rows {
		s.committed = append(s.committed, u)
		if u.ID > s.nextID {
			s.nextID = u.ID
		}
	}
	return s
}

func (s *memStore) taken(username, email string) bool {
	for _, u := range s.committed {
		if u.Username == username || u.Email == email {
			return true
		}
	}
	for _, rows := range s.pending {
		for _, u := range rows {
			if u.Username == username || u.Email == email {
				return true
			}
		}
	}
	return false
}

// insert allocates an id and records the row, pending on tx when tx is set.
// Like BIGSERIAL, ids are not reused after a rollback.
func (s *memStore) insert(tx *stagingTx, username, email, password string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.taken(username, email) {
		return 0, errDuplicate
	}
	s.nextID++
	u := &models.User{ID: s.nextID, Username: username, Email: email, Password: password}
	if tx == nil {
		s.committed = append(s.committed, u)
	} else {
		s.pending[tx] = append(s.pending[tx], u)
	}
	return u.ID, nil
}

func (s *memStore) finish(tx *stagingTx, commit bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if commit {
		s.committed = append(s.committed, s.pending[tx]...)
	}
	delete(s.pending, tx)
}

func (s *memStore) rows() []*models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*models.User(nil), s.committed...)
}

func (s *memStore) pendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, rows := range s.pending {
		n += len(rows)
	}
	return n
}

// -------- driver wrapper --------

// stagingConnector opens sqlmock's connection wrapped in a stagingConn, so
// Begin/Commit/Rollback still go through sqlmock expectations.
type stagingConnector struct {
	inner driver.Driver
	dsn   string
	store *memStore
}

func (c *stagingConnector) Connect(ctx context.Context) (driver.Conn, error) {
	conn, err := c.inner.Open(c.dsn)
	if err != nil {
		return nil, err
	}
	return &stagingConn{Conn: conn, store: c.store}, nil
}

func (c *stagingConnector) Driver() driver.Driver { return c.inner }

type stagingConn struct {
	driver.Conn
	store   *memStore
	current *stagingTx
}

func (c *stagingConn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	tx, err := c.Conn.(driver.ConnBeginTx).BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	c.current = &stagingTx{Tx: tx, conn: c}
	return c.current, nil
}

func (c *stagingConn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	if query != insertUser {
		return c.Conn.(driver.ExecerContext).ExecContext(ctx, query, args)
	}
	if len(args) != 3 {
		return nil, fmt.Errorf("insert expects 3 args, got %d", len(args))
	}
	id, err := c.store.insert(c.current, args[0].Value.(string), args[1].Value.(string), args[2].Value.(string))
	if err != nil {
		return nil, err
	}
	return insertResult(id), nil
}

type stagingTx struct {
	driver.Tx
	conn *stagingConn
}

func (t *stagingTx) Commit() error {
	err := t.Tx.Commit()
	t.conn.store.finish(t, err == nil)
	t.conn.current = nil
	return err
}

func (t *stagingTx) Rollback() error {
	err := t.Tx.Rollback()
	t.conn.store.finish(t, false)
	t.conn.current = nil
	return err
}

type insertResult int64

func (r insertResult) LastInsertId() (int64, error) { return int64(r), nil }
func (r insertResult) RowsAffected() (int64, error) { return 1, nil }

var dsnSeq atomic.Int64

// newStagingDB returns a pool whose transactions are checked by sqlmock and
// whose inserts land in store only on a successful commit.
func newStagingDB(t *testing.T, store *memStore) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	dsn := fmt.Sprintf("memstore_%d", dsnSeq.Add(1))
	mockDB, mock, err := sqlmock.NewWithDSN(dsn)
	require.NoError(t, err)

	db := sql.OpenDB(&stagingConnector{inner: mockDB.Driver(), dsn: dsn, store: store})
	// every close of a pooled conn reaches sqlmock; keep them open instead
	db.SetMaxIdleConns(32)
	t.Cleanup(func() {
		_ = db.Close()
		_ = mockDB.Close()
	})
	return sqlx.NewDb(db, "sqlmock"), mock
}

// -------- repository fakes --------

// memUsersRepo is users.Repository over memStore, bound to one DBTX. Reads see
// committed rows only (READ COMMITTED).
type memUsersRepo struct {
	store *memStore
	db    dbx.DBTX
}

func (r *memUsersRepo) FindByUsernameOrEmail(ctx context.Context, username, email string) ([]*models.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	s.findCalls++
	if s.findErr != nil {
		return nil, s.findErr
	}
	if s.skipFind {
		return nil, nil
	}
	var out []*models.User
	for _, u := range s.committed {
		if u.Username == username || u.Email == email {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *memUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	r.store.mu.Lock()
	r.store.createCalls++
	createErr := r.store.createErr
	r.store.mu.Unlock()
	if createErr != nil {
		return nil, createErr
	}

	res, err := r.db.ExecContext(ctx, insertUser, u.Username, u.Email, u.Password)
	if err != nil {
		if errors.Is(err, errDuplicate) {
			return nil, fmt.Errorf("%w: %w", common.ErrorIntegrity, err)
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &models.User{ID: id, Username: u.Username, Email: u.Email}, nil
}

func (r *memUsersRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, u := range r.store.committed {
		if u.ID == id {
			return &models.User{ID: u.ID, Username: u.Username, Email: u.Email}, nil
		}
	}
	return nil, common.ErrorNotFound
}

type fakeRepoManager struct {
	store *memStore
	// repo, when set, replaces the memStore-backed repository.
	repo users.Repository

	mu      sync.Mutex
	gotDBTX []dbx.DBTX
}

func (m *fakeRepoManager) RunMigrations(ctx context.Context, db *sql.DB) error { return nil }

func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository {
	m.mu.Lock()
	m.gotDBTX = append(m.gotDBTX, db)
	m.mu.Unlock()
	if m.repo != nil {
		return m.repo
	}
	return &memUsersRepo{store: m.store, db: db}
}
