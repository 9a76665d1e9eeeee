package mysql

import (
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
)

const (
	errDuplicateEntry   = 1062
	errNoReferencedRow  = 1452
	defaultListPageSize = 10
)

// isDuplicateEntry 违反唯一约束
func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == errDuplicateEntry
}

// isMissingReference 外键指向的记录不存在
func isMissingReference(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == errNoReferencedRow
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func offsetOf(page, pageSize int) (int, int) {
	if pageSize <= 0 {
		pageSize = defaultListPageSize
	}
	if page <= 0 {
		page = 1
	}
	return pageSize, (page - 1) * pageSize
}

func nowIfZero(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}
