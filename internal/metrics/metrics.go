// Package metrics holds the server's prometheus collectors.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wms",
		Name:      "http_requests_total",
		Help:      "HTTP requests processed, by method, route and status.",
	}, []string{"method", "route", "status"})

	httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "wms",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	authzDeniedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wms",
		Name:      "authz_denied_total",
		Help:      "Requests rejected by the action policy.",
	}, []string{"action"})

	loginsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wms",
		Name:      "logins_total",
		Help:      "Credential exchanges by result.",
	}, []string{"result"})

	wsClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "wms",
		Name:      "inventory_watchers",
		Help:      "Connected inventory websocket clients.",
	})

	registerOnce sync.Once
	registerErr  error
)

// Register adds every collector to reg (the default registerer when nil). Safe to call repeatedly.
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	registerOnce.Do(func() {
		for _, c := range []prometheus.Collector{httpRequestsTotal, httpRequestDuration, authzDeniedTotal, loginsTotal, wsClients} {
			if err := reg.Register(c); err != nil {
				var are prometheus.AlreadyRegisteredError
				if !errors.As(err, &are) {
					registerErr = err
					return
				}
			}
		}
	})
	return registerErr
}

// Handler serves /metrics from the default gatherer.
func Handler() http.Handler { return promhttp.Handler() }

// Middleware records request count and latency per matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func AuthzDenied(action string) { authzDeniedTotal.WithLabelValues(action).Inc() }

func Login(ok bool) {
	result := "failure"
	if ok {
		result = "success"
	}
	loginsTotal.WithLabelValues(result).Inc()
}

func SetWatchers(n int) { wsClients.Set(float64(n)) }
