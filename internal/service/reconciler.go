package service

import (
	"context"
	"lake-backend/internal/monitoring"
	"lake-backend/internal/util"
	"time"

	"go.uber.org/zap"
)

// counterSource 可以按实际行数重算冗余计数的仓库
type counterSource interface {
	ReconcileCounters() (int64, error)
}

// CounterReconciler 定期校准用户、帖子和评论上的冗余计数
type CounterReconciler struct {
	sources map[string]counterSource
}

func NewCounterReconciler(users, posts, comments counterSource) *CounterReconciler {
	return &CounterReconciler{sources: map[string]counterSource{
		"users":    users,
		"posts":    posts,
		"comments": comments,
	}}
}

// RunOnce 执行一次校准，返回每张表被修正的行数
func (r *CounterReconciler) RunOnce() (map[string]int64, error) {
	fixed := make(map[string]int64, len(r.sources))
	for table, src := range r.sources {
		n, err := src.ReconcileCounters()
		if err != nil {
			return fixed, storageError(err, "校准计数失败")
		}
		fixed[table] = n
		if n > 0 {
			monitoring.CountersReconciled.WithLabelValues(table).Add(float64(n))
			util.Logger.Warn("冗余计数已修正", zap.String("table", table), zap.Int64("rows", n))
		}
	}
	return fixed, nil
}

// Start 按 interval 周期运行，interval 为 0 时不启动
func (r *CounterReconciler) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		util.Logger.Info("计数校准已关闭")
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := r.RunOnce(); err != nil {
					util.Logger.Error("计数校准失败", zap.Error(err))
				}
			}
		}
	}()
}
