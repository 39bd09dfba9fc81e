// Pacote config centraliza o carregamento das variáveis de ambiente usadas pelos binários.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// ChaveSessaoMinima é o tamanho mínimo, em bytes, da chave HS256 das sessões.
const ChaveSessaoMinima = 32

// Config agrega todos os parâmetros necessários para API e worker.
type Config struct {
	HTTPAddress string `env:"HTTP_ADDRESS" envDefault:":8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     string `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER" envDefault:"eleicao"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" envDefault:"eleicao"`
	PostgresDB       string `env:"POSTGRES_DB" envDefault:"eleicao"`
	PostgresSSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	FilaAuditoriaKey string `env:"REDIS_AUDIT_QUEUE" envDefault:"fila:auditoria"`
	CachePrefix      string `env:"REDIS_CACHE_PREFIX" envDefault:"cache:eleicao"`
	CacheTTLSeconds  int    `env:"CACHE_TTL_SECONDS" envDefault:"5"`
	TravaPrefix      string `env:"REDIS_LOCK_PREFIX" envDefault:"trava:voto"`
	TravaTTLSeconds  int    `env:"VOTE_LOCK_TTL_SECONDS" envDefault:"10"`

	RateLimitEnabled       bool   `env:"ANTIFRAUDE_RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitMaxActions    int    `env:"ANTIFRAUDE_RATE_LIMIT_MAX" envDefault:"10"`
	RateLimitWindowSeconds int    `env:"ANTIFRAUDE_RATE_LIMIT_WINDOW" envDefault:"60"`
	RateLimitKeyPrefix     string `env:"ANTIFRAUDE_RATE_LIMIT_PREFIX" envDefault:"ratelimit:login"`

	SessaoChave      string `env:"SESSION_SIGNING_KEY,required,notEmpty"`
	SessaoEmissor    string `env:"SESSION_ISSUER" envDefault:"portal-eleicao"`
	SessaoTTLMinutes int    `env:"SESSION_TTL_MINUTES" envDefault:"480"`
	RevogacaoPrefix  string `env:"REDIS_REVOCATION_PREFIX" envDefault:"sessao:revogada"`
	CookieSeguro     bool   `env:"SESSION_COOKIE_SECURE" envDefault:"false"`
	TituloEleicao    string `env:"ELECTION_TITLE" envDefault:"PAMET Sorsogon Chapter Election 2025"`
	EleitoresPadrao  int64  `env:"DEFAULT_ELIGIBLE_VOTERS" envDefault:"120"`
	AutoMigrate      bool   `env:"DB_AUTO_MIGRATE" envDefault:"true"`

	WorkerMetricsAddress string `env:"WORKER_METRICS_ADDRESS" envDefault:":9090"`

	OtelEndpoint string `env:"OTEL_EXPORTER_ENDPOINT"`
	OtelService  string `env:"OTEL_SERVICE_NAME" envDefault:"portal-eleicao"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: variaveis invalidas: %w", err)
	}
	if cfg.CacheTTLSeconds < 0 {
		return Config{}, fmt.Errorf("config: CACHE_TTL_SECONDS negativo")
	}
	if len(cfg.SessaoChave) < ChaveSessaoMinima {
		return Config{}, fmt.Errorf("config: SESSION_SIGNING_KEY precisa de ao menos %d bytes", ChaveSessaoMinima)
	}
	return cfg, nil
}

func (c Config) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.PostgresUser,
		c.PostgresPassword,
		c.PostgresHost,
		c.PostgresPort,
		c.PostgresDB,
		c.PostgresSSLMode,
	)
}

func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

func (c Config) TravaTTL() time.Duration {
	return time.Duration(c.TravaTTLSeconds) * time.Second
}

func (c Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowSeconds) * time.Second
}

func (c Config) SessaoTTL() time.Duration {
	return time.Duration(c.SessaoTTLMinutes) * time.Minute
}

// Level converte LOG_LEVEL para slog; valores desconhecidos caem em info.
func (c Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
