package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	LoginSuccess = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "login_success_total",
		Help: "Total successful login attempts",
	})

	LoginFailure = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "login_failure_total",
		Help: "Total failed login attempts",
	}, []string{"reason"})

	RegisterSuccess = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "register_success_total",
		Help: "Total successful register attempts",
	})

	PostsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "posts_created_total",
		Help: "Total posts successfully created",
	})

	Likes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "likes_total",
		Help: "Total likes by target",
	}, []string{"target"})

	Follows = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "follows_total",
		Help: "Total follow relations created",
	})

	NotificationsCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_created_total",
		Help: "Total notifications persisted",
	}, []string{"type"})

	CountersReconciled = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "counters_reconciled_total",
		Help: "Rows whose denormalized counters were corrected",
	}, []string{"table"})
)

func init() {
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(LoginSuccess)
	prometheus.MustRegister(LoginFailure)
	prometheus.MustRegister(RegisterSuccess)
	prometheus.MustRegister(PostsCreated)
	prometheus.MustRegister(Likes)
	prometheus.MustRegister(Follows)
	prometheus.MustRegister(NotificationsCreated)
	prometheus.MustRegister(CountersReconciled)
}

// InstrumentHandler 记录请求耗时和状态码，路由取注册时的模板以控制标签基数
func InstrumentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		RequestDuration.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
	}
}
