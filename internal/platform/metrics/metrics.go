// Pacote metrics registra os coletores Prometheus usados pela API e pelo worker.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	voteRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eleicao_vote_requests_total",
		Help: "Total de envios de voto recebidos por resultado",
	}, []string{"status"})

	votesRegisteredTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eleicao_votes_registered_total",
		Help: "Votos gravados com sucesso, separando abstencoes",
	}, []string{"tipo"})

	adminOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eleicao_admin_operations_total",
		Help: "Operacoes administrativas executadas por resultado",
	}, []string{"operacao", "status"})

	cacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eleicao_cache_lookups_total",
		Help: "Consultas ao cache de leitura",
	}, []string{"resultado"})

	degradedReadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eleicao_degraded_reads_total",
		Help: "Leituras servidas com dados estaticos por falha do banco",
	}, []string{"leitura"})

	auditProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eleicao_audit_events_processed_total",
		Help: "Eventos de auditoria processados pelo worker",
	}, []string{"status"})

	auditQueuePending = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "eleicao_audit_queue_pending",
		Help: "Eventos de auditoria aguardando o worker na fila Redis",
	})

	auditProcessingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "eleicao_audit_processing_duration_seconds",
		Help:    "Tempo para persistir um evento de auditoria no worker",
		Buckets: prometheus.DefBuckets,
	})
)

func ObserveVoteRequest(status string) {
	voteRequestsTotal.WithLabelValues(status).Inc()
}

func IncVoteRegistered(abstencao bool) {
	tipo := "candidato"
	if abstencao {
		tipo = "abstencao"
	}
	votesRegisteredTotal.WithLabelValues(tipo).Inc()
}

func ObserveAdminOperation(operacao, status string) {
	adminOperationsTotal.WithLabelValues(operacao, status).Inc()
}

func ObserveCacheLookup(hit bool) {
	if hit {
		cacheLookupsTotal.WithLabelValues("hit").Inc()
		return
	}
	cacheLookupsTotal.WithLabelValues("miss").Inc()
}

func IncDegradedRead(leitura string) {
	degradedReadsTotal.WithLabelValues(leitura).Inc()
}

func IncAuditProcessed(status string) {
	auditProcessedTotal.WithLabelValues(status).Inc()
}

func ObserveAuditProcessingDuration(seconds float64) {
	auditProcessingDuration.Observe(seconds)
}

func SetAuditQueuePending(n int64) {
	auditQueuePending.Set(float64(n))
}
