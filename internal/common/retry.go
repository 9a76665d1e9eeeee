package common

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"
	"time"

	"github.com/go-sql-driver/mysql"
)

// IsTemporary 判断是否为临时性错误
func IsTemporary(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

// IsRetryable 判断是否可重试
func IsRetryable(err error) bool {
	return IsTemporary(err) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, mysql.ErrInvalidConn)
}

// WithRetry 通用重试机制，第 i 次失败后等待 i*delay
func WithRetry(operation func() error, maxRetries int, delay time.Duration, retryable func(error) bool) error {
	var err error
	for i := 0; i < maxRetries; i++ {
		if err = operation(); err == nil {
			return nil
		}
		if retryable != nil && !retryable(err) {
			return err
		}
		if i < maxRetries-1 {
			time.Sleep(delay * time.Duration(i+1))
		}
	}
	return err
}
