package store

import (
	"errors"
	"log"

	"whatsapp-hub/internal/observability"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // Import the pgx stdlib for sqlx
	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("not found")

// ErrDuplicateShortID is returned when a click log insert collides on short_id.
// Callers regenerate and retry.
var ErrDuplicateShortID = errors.New("duplicate short id")

// ErrClickAlreadyClaimed is returned when a conversation insert would bind a
// click that another conversation already claimed. At-most-once consumption
// is enforced by a partial unique index on conversations(click_log_id).
var ErrClickAlreadyClaimed = errors.New("click already claimed")

type Store struct {
	db     *sqlx.DB
	logger *observability.Logger
}

func New(connectionString string, logger *observability.Logger) (Store, error) {
	db, err := sqlx.Open("pgx", connectionString)
	if err != nil {
		log.Fatal(err)
		return Store{}, err
	}
	return Store{db: db, logger: logger}, nil
}

// DB returns the underlying database connection
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505)
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
