package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	OtpIssued = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "clinic_otp_issued_total",
		Help: "Number of one-time codes issued.",
	})

	OtpVerify = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "clinic_otp_verify_total",
		Help: "Code verification attempts by result.",
	}, []string{"result"})

	EmailDelivery = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "clinic_email_delivery_total",
		Help: "Code emails handed to a transport, by transport and result.",
	}, []string{"transport", "result"})

	Logins = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "clinic_logins_total",
		Help: "Completed verifications by path (existing, registration, restored).",
	}, []string{"path"})
)

// Register adds every collector to reg.
func Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{OtpIssued, OtpVerify, EmailDelivery, Logins} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
