// Executável principal da API: carrega a configuração, inicializa dependências e sobe o servidor HTTP.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/crypto/bcrypt"

	"github.com/marcelojr/portal-eleicao/internal/app/auditoria"
	"github.com/marcelojr/portal-eleicao/internal/app/catalogo"
	"github.com/marcelojr/portal-eleicao/internal/app/eleicao"
	"github.com/marcelojr/portal-eleicao/internal/app/gestao"
	"github.com/marcelojr/portal-eleicao/internal/app/httpapi"
	"github.com/marcelojr/portal-eleicao/internal/app/web"
	"github.com/marcelojr/portal-eleicao/internal/domain"
	"github.com/marcelojr/portal-eleicao/internal/platform/antifraude"
	"github.com/marcelojr/portal-eleicao/internal/platform/clock"
	"github.com/marcelojr/portal-eleicao/internal/platform/config"
	"github.com/marcelojr/portal-eleicao/internal/platform/health"
	"github.com/marcelojr/portal-eleicao/internal/platform/identidade"
	"github.com/marcelojr/portal-eleicao/internal/platform/ids"
	"github.com/marcelojr/portal-eleicao/internal/platform/logger"
	"github.com/marcelojr/portal-eleicao/internal/platform/migrations"
	"github.com/marcelojr/portal-eleicao/internal/platform/sessao"
	postgresstorage "github.com/marcelojr/portal-eleicao/internal/platform/storage/postgres"
	redisstorage "github.com/marcelojr/portal-eleicao/internal/platform/storage/redis"
	"github.com/marcelojr/portal-eleicao/internal/platform/telemetry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// .env é opcional; variáveis já exportadas têm precedência.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("configuracao invalida", "err", err)
	}
	logger.SetLevel(cfg.Level())

	shutdownTracing, err := telemetry.Setup(ctx, cfg.OtelService, cfg.OtelEndpoint)
	if err != nil {
		logger.Warn("tracing desligado", "err", err)
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

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

	log := logger.L()
	clockSystem := clock.NewSystemClock()
	idGen := ids.NewGenerator()

	repos := catalogo.Repositorios{
		Configuracao: postgresstorage.NewConfiguracaoRepository(db),
		Cargos:       postgresstorage.NewCargoRepository(db),
		Candidatos:   postgresstorage.NewCandidatoRepository(db),
		Votos:        postgresstorage.NewVotoRepository(db),
		Eleitores:    postgresstorage.NewEleitorRepository(db),
	}

	// Catálogo e painel dividem o mesmo cache: uma invalidação vale para os dois.
	cache := redisstorage.NewCache(redisClient, cfg.CachePrefix, cfg.CacheTTL())
	leitor := catalogo.NewLeitor(repos, cache, cfg.EleitoresPadrao, cfg.TituloEleicao, log)
	registrador := auditoria.NewRegistrador(redisstorage.NewFilaAuditoria(redisClient, cfg.FilaAuditoriaKey), clockSystem, log)
	provedor := identidade.NewProvedor(postgresstorage.NewIdentidadeRepository(db), clockSystem, bcrypt.DefaultCost)
	emissor := sessao.NewEmissor(cfg.SessaoChave, cfg.SessaoEmissor, cfg.SessaoTTL(), redisstorage.NewRevogacao(redisClient, cfg.RevogacaoPrefix), clockSystem)

	var antifraudeSvc domain.Antifraude = antifraude.NewNoop()
	if cfg.RateLimitEnabled {
		antifraudeSvc = antifraude.NewRedisRateLimiter(redisClient, cfg.RateLimitMaxActions, cfg.RateLimitWindow(), cfg.RateLimitKeyPrefix)
	}

	eleicaoSvc := eleicao.NewService(eleicao.Dependencias{
		Eleitores:       repos.Eleitores,
		Votos:           repos.Votos,
		Identidades:     provedor,
		Sessoes:         emissor,
		Catalogo:        leitor,
		Trava:           redisstorage.NewTravaEnvio(redisClient, cfg.TravaPrefix, cfg.TravaTTL()),
		Antifraude:      antifraudeSvc,
		Auditoria:       registrador,
		Clock:           clockSystem,
		IDs:             idGen,
		EleitoresPadrao: cfg.EleitoresPadrao,
		Log:             log,
	})

	gestaoSvc := gestao.NewService(gestao.Dependencias{
		Eleitores:       repos.Eleitores,
		Cargos:          repos.Cargos,
		Candidatos:      repos.Candidatos,
		Votos:           repos.Votos,
		Configuracao:    repos.Configuracao,
		Agregado:        postgresstorage.NewPainelRepository(db),
		Historico:       postgresstorage.NewAuditoriaRepository(db),
		Identidades:     provedor,
		Catalogo:        leitor,
		Cache:           cache,
		Registrador:     registrador,
		Clock:           clockSystem,
		IDs:             idGen,
		EleitoresPadrao: cfg.EleitoresPadrao,
		Log:             log,
	})

	frontend, err := web.New(eleicaoSvc, cfg.CookieSeguro, log)
	if err != nil {
		logger.Fatal("erro ao carregar templates", "err", err)
	}

	checker := health.NewChecker(sqlDB, redisClient)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httpapi.RequestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(httpapi.Origem)

	r.Get("/healthz", health.LiveHandler)
	r.Get("/readyz", checker.ReadyHandler())
	r.Handle("/metrics", promhttp.Handler())
	httpapi.New(eleicaoSvc, gestaoSvc, log).Register(r)
	frontend.Register(r)

	srv := &http.Server{
		Addr:              cfg.HTTPAddress,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("api ouvindo", "addr", cfg.HTTPAddress)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("erro no servidor", "err", err)
		}
	}()

	<-ctx.Done()
	logger.Info("encerrando api")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("falha no encerramento gracioso", "err", err)
	}
}
