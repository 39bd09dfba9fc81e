package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/marcelojr/portal-eleicao/internal/domain"
	"github.com/marcelojr/portal-eleicao/internal/platform/logger"
)

const pausaMaxima = 30 * time.Second

// FilaAuditoria usa uma lista Redis: a API publica eventos e o worker consome.
type FilaAuditoria struct {
	client *redis.Client
	key    string
	espera time.Duration
	pausa  time.Duration
	log    *slog.Logger
}

func NewFilaAuditoria(client *redis.Client, key string) *FilaAuditoria {
	return &FilaAuditoria{
		client: client,
		key:    key,
		espera: 5 * time.Second,
		pausa:  time.Second,
		log:    logger.L(),
	}
}

func (f *FilaAuditoria) PublicarEvento(ctx context.Context, evento domain.EventoAuditoria) error {
	payload, err := json.Marshal(evento)
	if err != nil {
		return fmt.Errorf("redis fila: falha serializando evento: %w", err)
	}
	if err := f.client.LPush(ctx, f.key, payload).Err(); err != nil {
		return fmt.Errorf("redis fila: falha ao enfileirar evento: %w", err)
	}
	return nil
}

// ConsumirEventos bloqueia até o contexto acabar ou o handler devolver um erro definitivo.
// Erro do handler que envolve domain.ErrIndisponivel devolve o evento para a ponta de consumo
// e o loop segue depois de uma pausa; falha do próprio Redis também só pausa o loop.
func (f *FilaAuditoria) ConsumirEventos(ctx context.Context, handler func(context.Context, domain.EventoAuditoria) error) error {
	pausa := f.pausa
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		res, err := f.client.BRPop(ctx, f.espera, f.key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			f.log.Warn("redis fila: falha ao consumir; tentando de novo", "espera", pausa, "error", err)
			if err := aguardar(ctx, pausa); err != nil {
				return err
			}
			pausa = min(pausa*2, pausaMaxima)
			continue
		}
		pausa = f.pausa

		if len(res) != 2 {
			continue
		}

		var evento domain.EventoAuditoria
		if err := json.Unmarshal([]byte(res[1]), &evento); err != nil {
			f.log.Error("redis fila: payload ilegivel descartado", "payload", res[1], "error", err)
			continue
		}

		err = handler(ctx, evento)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrIndisponivel) {
			return err
		}

		if errPush := f.client.RPush(context.WithoutCancel(ctx), f.key, res[1]).Err(); errPush != nil {
			f.log.Error("redis fila: evento perdido ao devolver para a fila", "payload", res[1], "error", errPush)
		}
		if err := aguardar(ctx, f.pausa); err != nil {
			return err
		}
	}
}

func aguardar(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Pendentes informa quantos eventos aguardam o worker.
func (f *FilaAuditoria) Pendentes(ctx context.Context) (int64, error) {
	n, err := f.client.LLen(ctx, f.key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis fila: falha ao contar pendentes: %w", err)
	}
	return n, nil
}

var _ domain.FilaAuditoria = (*FilaAuditoria)(nil)
