package sensor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// IdentityRepository defines the interface for identity persistence.
// This abstraction allows for different implementations (SQLite, mock, etc.)
// and enables unit testing without database dependencies.
type IdentityRepository interface {
	// GetByID retrieves an identity by its unique identifier.
	// Returns ErrNotFound if the sensor does not exist.
	GetByID(ctx context.Context, id int64) (*Identity, error)

	// GetByName retrieves an identity by name. A missing name is not an
	// error: the result is (nil, nil). Used for uniqueness checks before
	// registration.
	GetByName(ctx context.Context, name string) (*Identity, error)

	// List retrieves identities ordered by id, bounded by offset/limit.
	List(ctx context.Context, offset, limit int) ([]Identity, error)

	// Create inserts a new identity and assigns its integer id.
	// Returns ErrConflict if the name is already taken.
	Create(ctx context.Context, name string) (*Identity, error)

	// Delete removes an identity and returns the deleted record.
	// Returns ErrNotFound if the sensor does not exist.
	Delete(ctx context.Context, id int64) (*Identity, error)
}

// SQLiteIdentityRepository implements IdentityRepository using SQLite.
type SQLiteIdentityRepository struct {
	db *sql.DB
}

// NewSQLiteIdentityRepository creates a new SQLite-backed repository.
// The db parameter should be an open SQLite connection with the sensors
// table migrated.
func NewSQLiteIdentityRepository(db *sql.DB) *SQLiteIdentityRepository {
	return &SQLiteIdentityRepository{db: db}
}

// GetByID retrieves an identity by its unique identifier.
func (r *SQLiteIdentityRepository) GetByID(ctx context.Context, id int64) (*Identity, error) {
	query := `
		SELECT id, name, created_at
		FROM sensors
		WHERE id = ?`

	identity, err := scanIdentity(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying sensor by id: %w", err)
	}
	return identity, nil
}

// GetByName retrieves an identity by name, or (nil, nil) if absent.
func (r *SQLiteIdentityRepository) GetByName(ctx context.Context, name string) (*Identity, error) {
	query := `
		SELECT id, name, created_at
		FROM sensors
		WHERE name = ?`

	identity, err := scanIdentity(r.db.QueryRowContext(ctx, query, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying sensor by name: %w", err)
	}
	return identity, nil
}

// List retrieves identities ordered by id.
func (r *SQLiteIdentityRepository) List(ctx context.Context, offset, limit int) ([]Identity, error) {
	query := `
		SELECT id, name, created_at
		FROM sensors
		ORDER BY id
		LIMIT ? OFFSET ?`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing sensors: %w", err)
	}
	defer rows.Close()

	identities := make([]Identity, 0)
	for rows.Next() {
		var (
			identity  Identity
			createdAt string
		)
		if err := rows.Scan(&identity.ID, &identity.Name, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning sensor row: %w", err)
		}
		identity.CreatedAt, err = parseTimestamp(createdAt)
		if err != nil {
			return nil, err
		}
		identities = append(identities, identity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sensor rows: %w", err)
	}
	return identities, nil
}

// Create inserts a new identity. The id is assigned by SQLite.
func (r *SQLiteIdentityRepository) Create(ctx context.Context, name string) (*Identity, error) {
	now := time.Now().UTC().Truncate(time.Second)
	query := `
		INSERT INTO sensors (name, created_at)
		VALUES (?, ?)`

	result, err := r.db.ExecContext(ctx, query, name, now.Format(time.RFC3339))
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("inserting sensor: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading inserted sensor id: %w", err)
	}

	return &Identity{ID: id, Name: name, CreatedAt: now}, nil
}

// Delete removes an identity and returns the deleted record.
func (r *SQLiteIdentityRepository) Delete(ctx context.Context, id int64) (*Identity, error) {
	// Fetch first so the deleted record can be returned to the caller.
	identity, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM sensors WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("deleting sensor: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrNotFound
	}
	return identity, nil
}

// scanIdentity reads a single identity row.
func scanIdentity(row *sql.Row) (*Identity, error) {
	var (
		identity  Identity
		createdAt string
	)
	if err := row.Scan(&identity.ID, &identity.Name, &createdAt); err != nil {
		return nil, err
	}
	parsed, err := parseTimestamp(createdAt)
	if err != nil {
		return nil, err
	}
	identity.CreatedAt = parsed
	return &identity, nil
}

// parseTimestamp handles both RFC3339 and SQLite's default datetime format.
func parseTimestamp(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02 15:04:05", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", value, err)
	}
	return t, nil
}

// isUniqueConstraintError checks if an error is a SQLite unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "unique constraint")
}
