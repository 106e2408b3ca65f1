package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	documentsGeneratedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "verifycert_documents_generated_total",
		Help: "Total number of certificates generated (single and batch rows)",
	})
	batchRowsFailedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "verifycert_batch_rows_failed_total",
		Help: "Total number of CSV rows that failed during bulk generation",
	})
	conversionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "verifycert_pdf_conversions_total",
		Help: "Total number of DOCX to PDF conversions attempted",
	})
	verifyLookupsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "verifycert_verify_lookups_total",
		Help: "Total number of public verification lookups",
	})
)

// Register registers Prometheus collectors. Call once at startup.
func Register(registry *prometheus.Registry) {
	registry.MustRegister(documentsGeneratedTotal, batchRowsFailedTotal, conversionsTotal, verifyLookupsTotal)
}

// IncDocumentGenerated increments the generated documents counter.
func IncDocumentGenerated() { documentsGeneratedTotal.Inc() }

// IncBatchRowFailed increments the failed batch rows counter.
func IncBatchRowFailed() { batchRowsFailedTotal.Inc() }

// IncConversion increments the attempted conversions counter.
func IncConversion() { conversionsTotal.Inc() }

// IncVerifyLookup increments the verification lookups counter.
func IncVerifyLookup() { verifyLookupsTotal.Inc() }
