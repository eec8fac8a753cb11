package db_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/driveline-dms/driveline/internal/platform/db"
)

func TestIsUniqueViolation(t *testing.T) {
	uniqueErr := &pgconn.PgError{Code: "23505", ConstraintName: "vendors_email_key"}

	require.True(t, db.IsUniqueViolation(uniqueErr))
	require.True(t, db.IsUniqueViolation(fmt.Errorf("create vendor: %w", uniqueErr)))

	require.False(t, db.IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	require.False(t, db.IsUniqueViolation(errors.New("connection refused")))
	require.False(t, db.IsUniqueViolation(nil))
}

func TestIsForeignKeyViolation(t *testing.T) {
	fkErr := &pgconn.PgError{Code: "23503", ConstraintName: "bookings_customer_id_fkey"}

	require.True(t, db.IsForeignKeyViolation(fkErr))
	require.True(t, db.IsForeignKeyViolation(fmt.Errorf("delete customer: %w", fkErr)))

	require.False(t, db.IsForeignKeyViolation(&pgconn.PgError{Code: "23505"}))
	require.False(t, db.IsForeignKeyViolation(errors.New("connection refused")))
	require.False(t, db.IsForeignKeyViolation(nil))
}
