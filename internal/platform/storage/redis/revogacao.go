package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Revogacao lembra os tokens de sessão encerrados até o momento em que expirariam sozinhos.
type Revogacao struct {
	client *redis.Client
	prefix string
}

func NewRevogacao(client *redis.Client, prefix string) *Revogacao {
	return &Revogacao{
		client: client,
		prefix: prefix,
	}
}

func (r *Revogacao) Revogar(ctx context.Context, jti string, expiraEm time.Time) error {
	ttl := time.Until(expiraEm)
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, prefixar(r.prefix, jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis revogacao: falha ao revogar: %w", err)
	}
	return nil
}

func (r *Revogacao) Revogado(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, prefixar(r.prefix, jti)).Result()
	if err != nil {
		return false, fmt.Errorf("redis revogacao: falha ao consultar: %w", err)
	}
	return n > 0, nil
}
