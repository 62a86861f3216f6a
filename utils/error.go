package utils

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// Error taxonomy shared by every job in this repository.
//
// ErrConfiguration: missing or invalid store location/credentials. Fatal,
// reported immediately, process exits non-zero.
//
// ErrDataUnavailable: a requested entity does not exist. Non-fatal when
// other scopes are still serviceable.
//
// ErrStoreOperation: connection lost, timeout, constraint violation during
// a read or write. Fatal for the current operation; no retry inside the
// core. Re-invoking the whole operation is safe because every per-key
// merge is idempotent.
var (
	ErrConfiguration   = errors.New("configuration error")
	ErrDataUnavailable = errors.New("requested data unavailable")
	ErrStoreOperation  = errors.New("store operation failed")
)

func ConfigurationError(detail string, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrConfiguration, detail, err)
	}
	return fmt.Errorf("%w: %s", ErrConfiguration, detail)
}

func DataUnavailableError(detail string) error {
	return fmt.Errorf("%w: %s", ErrDataUnavailable, detail)
}

// StoreError classifies a driver/gorm error into the taxonomy above.
// gorm's not-found sentinel maps to ErrDataUnavailable; everything else,
// including deadline expiry and MySQL server errors, is a store failure.
func StoreError(detail string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrDataUnavailable, detail)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: execution time allowance exceeded", ErrStoreOperation, detail)
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return fmt.Errorf("%w: %s: mysql error %d: %s", ErrStoreOperation, detail, mysqlErr.Number, mysqlErr.Message)
	}
	return fmt.Errorf("%w: %s: %v", ErrStoreOperation, detail, err)
}

// ExitCode maps taxonomy errors to the process exit status used by the
// cmd scripts. nil maps to 0.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrConfiguration):
		return 2
	case errors.Is(err, ErrDataUnavailable):
		return 3
	default:
		return 1
	}
}
