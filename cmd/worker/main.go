// Worker assíncrono que consome eventos de auditoria da fila, persiste no Postgres e mantém métricas expostas.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marcelojr/portal-eleicao/internal/app/worker"
	"github.com/marcelojr/portal-eleicao/internal/domain"
	"github.com/marcelojr/portal-eleicao/internal/platform/clock"
	"github.com/marcelojr/portal-eleicao/internal/platform/config"
	"github.com/marcelojr/portal-eleicao/internal/platform/health"
	"github.com/marcelojr/portal-eleicao/internal/platform/ids"
	"github.com/marcelojr/portal-eleicao/internal/platform/logger"
	"github.com/marcelojr/portal-eleicao/internal/platform/metrics"
	"github.com/marcelojr/portal-eleicao/internal/platform/migrations"
	postgresstorage "github.com/marcelojr/portal-eleicao/internal/platform/storage/postgres"
	redisstorage "github.com/marcelojr/portal-eleicao/internal/platform/storage/redis"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("configuracao invalida", "err", err)
	}
	logger.SetLevel(cfg.Level())

	db, err := postgresstorage.Open(ctx, cfg.PostgresDSN())
	if err != nil {
		logger.Fatal("falha ao conectar no postgres", "err", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("falha ao resgatar sql.DB", "err", err)
	}
	defer sqlDB.Close()

	if cfg.AutoMigrate {
		if err := migrations.Run(db); err != nil {
			logger.Fatal("falha na migracao automatica", "err", err)
		}
	}

	redisClient, err := redisstorage.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Fatal("falha ao conectar no redis", "err", err)
	}
	defer redisClient.Close()

	fila := redisstorage.NewFilaAuditoria(redisClient, cfg.FilaAuditoriaKey)
	checker := health.NewChecker(sqlDB, redisClient)

	if cfg.WorkerMetricsAddress != "" {
		r := chi.NewRouter()
		r.Handle("/metrics", promhttp.Handler())
		r.Get("/healthz", health.LiveHandler)
		r.Get("/readyz", checker.ReadyHandler())
		srv := &http.Server{Addr: cfg.WorkerMetricsAddress, Handler: r, ReadHeaderTimeout: 5 * time.Second}

		go func() {
			logger.Info("worker metrics ouvindo", "addr", cfg.WorkerMetricsAddress)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("erro no servidor de metrics do worker", "err", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	processor := worker.NewAuditProcessor(postgresstorage.NewAuditoriaRepository(db), clock.NewSystemClock(), ids.NewGenerator())

	go acompanharFila(ctx, fila, 15*time.Second)

	logger.Info("worker iniciado, aguardando eventos de auditoria")
	err = fila.ConsumirEventos(ctx, func(ctx context.Context, evento domain.EventoAuditoria) error {
		err := processor.Process(ctx, evento)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, domain.ErrIndisponivel):
			// Banco fora: o evento volta para a fila.
			logger.Warn("evento de auditoria devolvido a fila", "evento", evento.ID, "tipo", evento.Tipo, "err", err)
			return err
		default:
			logger.Error("evento de auditoria descartado", "evento", evento.ID, "tipo", evento.Tipo, "ator", evento.Ator,
				"alvo", evento.Alvo, "detalhe", evento.Detalhe, "err", err)
			return nil
		}
	})

	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		logger.Fatal("worker finalizado com erro", "err", err)
	}

	logger.Info("worker finalizado")
}

// acompanharFila publica o tamanho da fila de auditoria como métrica.
func acompanharFila(ctx context.Context, fila *redisstorage.FilaAuditoria, intervalo time.Duration) {
	ticker := time.NewTicker(intervalo)
	defer ticker.Stop()
	for {
		n, err := fila.Pendentes(ctx)
		if err != nil {
			logger.Warn("falha ao medir fila de auditoria", "err", err)
		} else {
			metrics.SetAuditQueuePending(n)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
