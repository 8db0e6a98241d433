package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sosalert/sos-service/internal/core/domain"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(context.Background(), Config{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func countUsers(t *testing.T, db *sql.DB, username string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM users WHERE username = ?`, username).Scan(&n))
	return n
}

func TestCreateAndFind(t *testing.T) {
	db := setupDB(t)
	r := NewAccountRepository(db)
	ctx := context.Background()

	created, err := r.Create(ctx, &domain.User{Username: "alice", PasswordHash: "h", ContactNumber: "+919876543210"})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	got, err := r.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "h", got.PasswordHash)
	assert.Equal(t, "+919876543210", got.ContactNumber)
}

func TestCreate_DuplicateUsername(t *testing.T) {
	db := setupDB(t)
	r := NewAccountRepository(db)
	ctx := context.Background()

	_, err := r.Create(ctx, &domain.User{Username: "bob", PasswordHash: "h1", ContactNumber: "+911"})
	require.NoError(t, err)

	_, err = r.Create(ctx, &domain.User{Username: "bob", PasswordHash: "h2", ContactNumber: "+912"})
	require.ErrorIs(t, err, domain.ErrUsernameTaken)

	assert.Equal(t, 1, countUsers(t, db, "bob"))
	got, err := r.FindByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, "+911", got.ContactNumber)
}

func TestCreate_ConcurrentDuplicates(t *testing.T) {
	db := setupDB(t)
	r := NewAccountRepository(db)
	ctx := context.Background()

	const attempts = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		ok      int
		taken   int
		unknown []error
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Create(ctx, &domain.User{Username: "carol", PasswordHash: "h", ContactNumber: "+91"})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrUsernameTaken):
				taken++
			default:
				unknown = append(unknown, err)
			}
		}()
	}
	wg.Wait()

	require.Empty(t, unknown)
	assert.Equal(t, 1, ok)
	assert.Equal(t, attempts-1, taken)
	assert.Equal(t, 1, countUsers(t, db, "carol"))
}

func TestFindByUsername_NotFound(t *testing.T) {
	r := NewAccountRepository(setupDB(t))

	_, err := r.FindByUsername(context.Background(), "ghost")
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestRunMigrations_Idempotent(t *testing.T) {
	db := setupDB(t)

	var buf bytes.Buffer
	require.NoError(t, RunMigrations(context.Background(), db, zerolog.New(&buf)))
	require.NoError(t, NewAccountRepository(db).Ping(context.Background()))

	assert.Contains(t, buf.String(), "no migrations to run")
	assert.Contains(t, buf.String(), `"component":"migrations"`)
}

func TestCreate_DriverError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	r := NewAccountRepository(db)

	mock.ExpectExec("INSERT INTO users").
		WithArgs("dave", "h", "+91").
		WillReturnError(errors.New("disk I/O error"))

	_, err = r.Create(context.Background(), &domain.User{Username: "dave", PasswordHash: "h", ContactNumber: "+91"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrUsernameTaken))
	assert.Contains(t, err.Error(), "insert user")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByUsername_DriverError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	r := NewAccountRepository(db)

	mock.ExpectQuery("SELECT id, username, password_hash, contact_number FROM users").
		WithArgs("erin").
		WillReturnError(errors.New("database is locked"))

	_, err = r.FindByUsername(context.Background(), "erin")
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrUserNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
