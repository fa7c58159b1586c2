package services

import (
	"database/sql"
	"fmt"

	"gorm.io/gorm"
)

// maxTxAttempts bounds the automatic retries on serialization failures.
const maxTxAttempts = 3

// runSerializable executes fn inside one SERIALIZABLE transaction.
// Every mutating operation goes through here: the isolation level is what
// keeps two requests from both seeing the last free copy and both
// committing a claim on it. Validation errors abort the transaction and
// propagate unchanged; only serialization failures are retried, a bounded
// number of times, before being surfaced as ErrTransientConflict.
func runSerializable(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = db.Transaction(fn, &sql.TxOptions{Isolation: sql.LevelSerializable})
		if err == nil || !isSerializationFailure(err) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", ErrTransientConflict, err)
}
