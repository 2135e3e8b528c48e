package database

import (
	"strings"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"

	_ "modernc.org/sqlite"
)

// Connect opens a gorm handle for the given DSN. Postgres URLs go through
// the pgx driver; anything else is treated as a sqlite file path so local
// development and tests run without a database server.
func Connect(dsn string) (*gorm.DB, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		zap.L().Info("connecting to postgres")
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	}

	zap.L().Info("using sqlite", zap.String("path", dsn))

	return gorm.Open(
		gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        dsn,
		}),
		&gorm.Config{},
	)
}

// ReservationOverlapConstraint is the postgres exclusion constraint that
// rejects two pending/confirmed reservations with overlapping [check_in,
// check_out) ranges on the same property. The application checks
// availability before every insert; this constraint is the backstop for
// the window between check and write.
const ReservationOverlapConstraint = "idx_no_double_booking"

// EnsureConstraints installs the constraints AutoMigrate cannot express.
// No-op on sqlite, which has no exclusion constraints; there the
// application-level availability check is the only guard.
func EnsureConstraints(db *gorm.DB) error {
	if db.Dialector.Name() != "postgres" {
		return nil
	}

	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS btree_gist").Error; err != nil {
		return err
	}

	return db.Exec(`
DO $$
BEGIN
	IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = '` + ReservationOverlapConstraint + `') THEN
		ALTER TABLE reservations
			ADD CONSTRAINT ` + ReservationOverlapConstraint + `
			EXCLUDE USING gist (
				property_id WITH =,
				tstzrange(check_in, check_out, '[)') WITH &&
			)
			WHERE (status IN ('pending', 'confirmed'));
	END IF;
END $$;
`).Error
}
