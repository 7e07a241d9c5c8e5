package query

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	prometheus.MustRegister(requestsMetric)
}

var requestsMetric = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "lastquery",
	Subsystem: "query",
	Name:      "requests_total",
	Help:      "Total query requests by method and response code",
}, []string{"method", "code"})

func observe(method string, code int) {
	requestsMetric.WithLabelValues(method, strconv.Itoa(code)).Inc()
}
