// Pacote health expõe /healthz e /readyz para API e worker.
package health

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

const timeoutChecagem = 2 * time.Second

// Checker pinga as dependências que estiverem configuradas; nil significa "não usada".
type Checker struct {
	db    *sql.DB
	redis *redis.Client
}

func NewChecker(db *sql.DB, redis *redis.Client) *Checker {
	return &Checker{db: db, redis: redis}
}

type relatorio struct {
	Status       string            `json:"status"`
	Dependencias map[string]string `json:"dependencias"`
}

// Verificar devolve o estado de cada dependência e se todas responderam.
func (c *Checker) Verificar(ctx context.Context) (map[string]string, bool) {
	ctx, cancel := context.WithTimeout(ctx, timeoutChecagem)
	defer cancel()

	estados := map[string]string{}
	pronto := true

	if c.db != nil {
		estados["postgres"] = "ok"
		if err := c.db.PingContext(ctx); err != nil {
			estados["postgres"] = "indisponivel"
			pronto = false
		}
	}

	if c.redis != nil {
		estados["redis"] = "ok"
		if err := c.redis.Ping(ctx).Err(); err != nil {
			estados["redis"] = "indisponivel"
			pronto = false
		}
	}

	return estados, pronto
}

func (c *Checker) ReadyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		estados, pronto := c.Verificar(r.Context())

		rel := relatorio{Status: "ok", Dependencias: estados}
		status := http.StatusOK
		if !pronto {
			rel.Status = "indisponivel"
			status = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(rel)
	}
}

func LiveHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
