package authapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Per-use-case outcome counters, labeled "result" ("success" or "error").
// Registered against the default registry at package
// init so a single promhttp.Handler in cmd/internal/app exposes them.
var (
	signUpsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arc_signups_total",
		Help: "Total SignUp attempts by outcome.",
	}, []string{"result"})

	signInsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arc_signins_total",
		Help: "Total SignIn attempts by outcome.",
	}, []string{"result"})

	refreshesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arc_refreshes_total",
		Help: "Total Refresh attempts by outcome.",
	}, []string{"result"})

	authorizationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arc_authorizations_total",
		Help: "Total Authorize attempts by outcome.",
	}, []string{"result"})

	keyPairRotationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arc_keypair_rotations_total",
		Help: "Total RotateKeyPairs attempts by outcome.",
	}, []string{"result"})
)

func outcomeLabel(err error) string {
	if err == nil {
		return "success"
	}
	return "error"
}
