package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "warbler_http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	RPCDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "warbler_grpc_request_duration_seconds",
			Help:    "Duration of gRPC requests served by the health endpoint.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "code"},
	)

	LoginSuccess = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "warbler_login_success_total",
		Help: "Total successful login attempts",
	})

	// LoginFailure reason: invalid_credentials, throttled
	LoginFailure = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "warbler_login_failure_total",
		Help: "Total failed login attempts",
	}, []string{"reason"})

	SignupSuccess = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "warbler_signup_success_total",
		Help: "Total successful signups",
	})

	MessagesPosted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "warbler_messages_posted_total",
		Help: "Total messages successfully posted",
	})

	// FollowChanges action: follow, unfollow
	FollowChanges = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "warbler_follow_changes_total",
		Help: "Total follow and unfollow operations",
	}, []string{"action"})

	// DependencyUp 1 表示依赖可用，由健康检查周期性更新
	DependencyUp = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "warbler_dependency_up",
		Help: "Whether a backing dependency answered the last health probe.",
	}, []string{"dependency"})
)

func init() {
	prometheus.MustRegister(
		RequestDuration,
		RPCDuration,
		LoginSuccess,
		LoginFailure,
		SignupSuccess,
		MessagesPosted,
		FollowChanges,
		DependencyUp,
	)
}
