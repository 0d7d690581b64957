package sqlstore

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/VitaminP8/blogapp/internal/storage"
	mssql "github.com/denisenkom/go-mssqldb"
	"github.com/go-playground/validator/v10"
	"github.com/jinzhu/gorm"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// Номера ошибок SQL Server, означающие нарушение ограничений
const (
	mssqlCannotInsertNull   = 515
	mssqlConstraintConflict = 547
	mssqlDuplicateKeyIndex  = 2601
	mssqlDuplicateKey       = 2627
)

// translateError приводит ошибки драйверов к таксономии storage.Err*
func translateError(msg string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case gorm.IsRecordNotFoundError(err):
		return fmt.Errorf("%s: %w", msg, storage.ErrNotFound)
	case isConstraintError(err):
		return fmt.Errorf("%s: %w: %w", msg, storage.ErrConstraintViolation, err)
	case isConnectionError(err):
		return fmt.Errorf("%s: %w: %w", msg, storage.ErrConnection, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func validationError(msg string, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return fmt.Errorf("%s: %w: %v", msg, storage.ErrConstraintViolation, verrs)
	}
	return fmt.Errorf("%s: %w: %v", msg, storage.ErrConstraintViolation, err)
}

func isConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// класс 23 - integrity_constraint_violation
		return pqErr.Code.Class() == "23"
	}

	var msErr mssql.Error
	if errors.As(err, &msErr) {
		return isMSSQLConstraint(msErr.Number)
	}
	var msErrPtr *mssql.Error
	if errors.As(err, &msErrPtr) {
		return isMSSQLConstraint(msErrPtr.Number)
	}
	return false
}

func isMSSQLConstraint(number int32) bool {
	switch number {
	case mssqlCannotInsertNull, mssqlConstraintConflict, mssqlDuplicateKeyIndex, mssqlDuplicateKey:
		return true
	}
	return false
}

func isConnectionError(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
