package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/marcelojr/portal-eleicao/internal/domain"
)

// liberarSeDono só apaga a trava se o token ainda for o de quem a adquiriu.
var liberarSeDono = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// TravaEnvio marca um envio de cédula em andamento. O TTL solta a trava se o processo cair.
type TravaEnvio struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewTravaEnvio(client *redis.Client, prefix string, ttl time.Duration) *TravaEnvio {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &TravaEnvio{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (t *TravaEnvio) Adquirir(ctx context.Context, chave string) (func(), error) {
	key := prefixar(t.prefix, chave)
	token := uuid.NewString()

	ok, err := t.client.SetNX(ctx, key, token, t.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redis trava: falha ao adquirir %s: %w", chave, err)
	}
	if !ok {
		return nil, domain.ErrEnvioEmAndamento
	}

	liberar := func() {
		// Contexto próprio: a requisição pode já ter sido cancelada quando liberamos.
		ctxLib, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = liberarSeDono.Run(ctxLib, t.client, []string{key}, token).Err()
	}
	return liberar, nil
}

var _ domain.TravaEnvio = (*TravaEnvio)(nil)
