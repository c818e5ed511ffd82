package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RegistrationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "user_registrations_total",
		Help: "Accepted registration requests (new accounts and token reissues)",
	})
	VerificationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "user_verifications_total",
		Help: "Accounts transitioned to verified",
	})
	EmailFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "verification_email_failures_total",
		Help: "Verification emails that could not be dispatched",
	})
)

func Init() {
	prometheus.MustRegister(RegistrationsTotal, VerificationsTotal, EmailFailuresTotal)
}

// Serve exposes /metrics on its own listener, away from the public API port.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(addr, mux)
}
