package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/marcelojr/portal-eleicao/internal/domain"
)

// Cache guarda leituras da eleição em JSON com TTL curto. Invalidar troca a geração
// em vez de apagar chaves; entradas da geração antiga só expiram.
type Cache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewCache(client *redis.Client, prefix string, ttl time.Duration) *Cache {
	return &Cache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (c *Cache) Obter(ctx context.Context, chave string, destino any) (int64, bool, error) {
	if c.ttl <= 0 {
		return 0, false, nil
	}

	gen, err := c.geracao(ctx)
	if err != nil {
		return 0, false, err
	}

	payload, err := c.client.Get(ctx, c.chave(gen, chave)).Bytes()
	if errors.Is(err, redis.Nil) {
		return gen, false, nil
	}
	if err != nil {
		return gen, false, fmt.Errorf("redis cache: falha ao ler %s: %w", chave, err)
	}

	if err := json.Unmarshal(payload, destino); err != nil {
		// Entrada corrompida vira miss; a próxima gravação sobrescreve.
		return gen, false, nil
	}
	return gen, true, nil
}

// Gravar escreve na geração informada. Se houve Invalidar depois da leitura, a entrada
// fica numa geração que ninguém mais consulta e só expira.
func (c *Cache) Gravar(ctx context.Context, geracao int64, chave string, valor any) error {
	if c.ttl <= 0 {
		return nil
	}

	payload, err := json.Marshal(valor)
	if err != nil {
		return fmt.Errorf("redis cache: falha serializando %s: %w", chave, err)
	}

	if err := c.client.Set(ctx, c.chave(geracao, chave), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis cache: falha ao gravar %s: %w", chave, err)
	}
	return nil
}

func (c *Cache) Invalidar(ctx context.Context) error {
	if err := c.client.Incr(ctx, c.chaveGeracao()).Err(); err != nil {
		return fmt.Errorf("redis cache: falha ao invalidar: %w", err)
	}
	return nil
}

func (c *Cache) geracao(ctx context.Context) (int64, error) {
	val, err := c.client.Get(ctx, c.chaveGeracao()).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis cache: falha ao ler geracao: %w", err)
	}

	num, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("redis cache: geracao invalida %q: %w", val, err)
	}
	return num, nil
}

func (c *Cache) chave(gen int64, chave string) string {
	return prefixar(c.prefix, fmt.Sprintf("g%d:%s", gen, chave))
}

func (c *Cache) chaveGeracao() string {
	return prefixar(c.prefix, "geracao")
}

var _ domain.Cache = (*Cache)(nil)
