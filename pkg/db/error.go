package db

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	// PostgreSQL (error code 23505)
	if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
		return true
	}

	// MySQL (error code 1062)
	if strings.Contains(err.Error(), "Error 1062") {
		return true
	}

	// SQLite (error code 2067)
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return true
	}

	return false
}

// SupportsRowLocks reports whether the connected dialect understands
// SELECT ... FOR UPDATE. SQLite serializes writers on its own.
func SupportsRowLocks(db *gorm.DB) bool {
	return db.Dialector.Name() != "sqlite"
}

// IsMySQL reports whether the connection speaks MySQL, which takes
// INSERT IGNORE where PostgreSQL and SQLite take ON CONFLICT DO NOTHING.
func IsMySQL(db *gorm.DB) bool {
	return db.Dialector.Name() == "mysql"
}
