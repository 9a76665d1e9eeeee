package errors

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// ErrorAnalytics 错误分析
type ErrorAnalytics struct {
	mu            sync.RWMutex
	TotalErrors   int
	ErrorsByCode  map[ErrorCode]int
	ErrorsByPath  map[string]int
	ErrorPatterns map[string]int
	LastErrorTime time.Time
}

// NewErrorAnalytics 创建错误分析器
func NewErrorAnalytics() *ErrorAnalytics {
	return &ErrorAnalytics{
		ErrorsByCode:  make(map[ErrorCode]int),
		ErrorsByPath:  make(map[string]int),
		ErrorPatterns: make(map[string]int),
	}
}

// Record 记录错误
func (a *ErrorAnalytics) Record(err *TracedError) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.TotalErrors++
	a.ErrorsByCode[err.Code]++
	a.ErrorsByPath[err.Context.Method+" "+err.Context.Path]++
	a.LastErrorTime = err.Timestamp

	if pattern := identifyPattern(err); pattern != "" {
		a.ErrorPatterns[pattern]++
	}
}

// identifyPattern 字段错误按字段名归类，其余按错误码区段归类
func identifyPattern(err *TracedError) string {
	if err.HasFields() {
		fields := make([]string, 0, len(err.Fields))
		for field := range err.Fields {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		return "validation:" + strings.Join(fields, ",")
	}

	switch {
	case err.Code >= 1000 && err.Code < 2000:
		return "system"
	case err.Code >= 2000 && err.Code < 3000:
		return "auth"
	case err.Code >= 3000 && err.Code < 4000:
		return "request"
	case err.Code >= 4000 && err.Code < 5000:
		return "business"
	}
	return ""
}

// GetStats 获取统计信息
func (a *ErrorAnalytics) GetStats() map[string]interface{} {
	a.mu.RLock()
	defer a.mu.RUnlock()

	byCode := make(map[ErrorCode]int, len(a.ErrorsByCode))
	for code, count := range a.ErrorsByCode {
		byCode[code] = count
	}
	byPath := make(map[string]int, len(a.ErrorsByPath))
	for path, count := range a.ErrorsByPath {
		byPath[path] = count
	}
	patterns := make(map[string]int, len(a.ErrorPatterns))
	for pattern, count := range a.ErrorPatterns {
		patterns[pattern] = count
	}

	return map[string]interface{}{
		"total_errors":   a.TotalErrors,
		"errors_by_code": byCode,
		"errors_by_path": byPath,
		"error_patterns": patterns,
		"last_error":     a.LastErrorTime,
	}
}
