// Package metrics expone contadores Prometheus de las operaciones del portal.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestsCreated solicitudes de corrección registradas.
	RequestsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "credifiscal",
		Name:      "requests_created_total",
		Help:      "Solicitudes de corrección creadas.",
	})

	// DecisionsSubmitted decisiones registradas, por organismo y tipo.
	DecisionsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "credifiscal",
		Name:      "decisions_submitted_total",
		Help:      "Decisiones de organismos registradas.",
	}, []string{"role", "kind"})

	// FinalOutcomes cierres de solicitud, por resultado (ADOPTADA | RECHAZADA).
	FinalOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "credifiscal",
		Name:      "final_outcomes_total",
		Help:      "Decisiones finales por resultado.",
	}, []string{"outcome"})

	// DocumentUploads versiones de documento subidas, por tipo documental.
	DocumentUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "credifiscal",
		Name:      "document_uploads_total",
		Help:      "Versiones de documento subidas.",
	}, []string{"doc_type"})
)

// Handler devuelve el handler HTTP del endpoint /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
