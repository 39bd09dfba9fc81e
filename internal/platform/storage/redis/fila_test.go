package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcelojr/portal-eleicao/internal/domain"
	"github.com/marcelojr/portal-eleicao/internal/platform/ids"
	"github.com/marcelojr/portal-eleicao/internal/platform/logger"
)

var errConcluido = errors.New("processamento concluido")

func novaFila(t *testing.T) *FilaAuditoria {
	client, _ := setupRedis(t)
	fila := NewFilaAuditoria(client, "fila:auditoria")
	fila.espera = 200 * time.Millisecond
	fila.pausa = 10 * time.Millisecond
	fila.log = logger.Discard()
	return fila
}

func TestFilaAuditoria_PublicarEConsumir_QuandoValido_DeveEntregarEvento(t *testing.T) {
	fila := novaFila(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// Arrange
	evento := domain.EventoAuditoria{
		ID:        ids.NewULID(),
		Tipo:      domain.EventoVotoRegistrado,
		Ator:      "maria@pamet.org",
		Alvo:      "cargo-1",
		OrigemIP:  "192.168.1.1",
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64)",
		CriadoEm:  time.Now().UTC(),
	}
	require.NoError(t, fila.PublicarEvento(ctx, evento))

	// Act
	var recebido domain.EventoAuditoria
	err := fila.ConsumirEventos(ctx, func(_ context.Context, e domain.EventoAuditoria) error {
		recebido = e
		return errConcluido
	})

	// Assert
	assert.ErrorIs(t, err, errConcluido)
	assert.Equal(t, evento.ID, recebido.ID)
	assert.Equal(t, evento.Tipo, recebido.Tipo)
	assert.Equal(t, evento.Ator, recebido.Ator)
	assert.Equal(t, evento.UserAgent, recebido.UserAgent)
}

func TestFilaAuditoria_ConsumirEventos_DeveManterOrdemDePublicacao(t *testing.T) {
	fila := novaFila(t)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	tipos := []string{domain.EventoLogin, domain.EventoVotoRegistrado, domain.EventoVotosLimpos}
	for _, tipo := range tipos {
		require.NoError(t, fila.PublicarEvento(ctx, domain.EventoAuditoria{ID: ids.NewULID(), Tipo: tipo}))
	}

	pendentes, err := fila.Pendentes(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), pendentes)

	// Act
	var recebidos []string
	err = fila.ConsumirEventos(ctx, func(_ context.Context, e domain.EventoAuditoria) error {
		recebidos = append(recebidos, e.Tipo)
		if len(recebidos) == len(tipos) {
			return errConcluido
		}
		return nil
	})

	// Assert
	assert.ErrorIs(t, err, errConcluido)
	assert.Equal(t, tipos, recebidos)
}

func TestFilaAuditoria_ConsumirEventos_QuandoPayloadInvalido_DeveDescartarESeguir(t *testing.T) {
	client, _ := setupRedis(t)
	fila := NewFilaAuditoria(client, "fila:auditoria")
	fila.espera = 200 * time.Millisecond
	fila.log = logger.Discard()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, client.LPush(ctx, "fila:auditoria", "{quebrado").Err())
	require.NoError(t, fila.PublicarEvento(ctx, domain.EventoAuditoria{ID: "evt-1", Tipo: domain.EventoLogin}))

	var recebido string
	err := fila.ConsumirEventos(ctx, func(_ context.Context, e domain.EventoAuditoria) error {
		recebido = e.ID
		return errConcluido
	})

	assert.ErrorIs(t, err, errConcluido)
	assert.Equal(t, "evt-1", recebido)
}

func TestFilaAuditoria_ConsumirEventos_QuandoFilaVazia_DeveAguardarAteOPrazo(t *testing.T) {
	fila := novaFila(t)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	var chamadas int
	err := fila.ConsumirEventos(ctx, func(context.Context, domain.EventoAuditoria) error {
		chamadas++
		return nil
	})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Zero(t, chamadas)
}

func TestFilaAuditoria_ConsumirEventos_QuandoContextoCancelado_DeveParar(t *testing.T) {
	fila := novaFila(t)

	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		err := fila.ConsumirEventos(ctx, func(context.Context, domain.EventoAuditoria) error {
			return nil
		})
		assert.ErrorIs(t, err, context.Canceled)
	}()

	cancel()
	wg.Wait()
}

func TestFilaAuditoria_ConsumirEventos_QuandoHandlerIndisponivel_DeveReentregarMesmoEvento(t *testing.T) {
	fila := novaFila(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, fila.PublicarEvento(ctx, domain.EventoAuditoria{ID: "evt-1", Tipo: domain.EventoLogin}))
	require.NoError(t, fila.PublicarEvento(ctx, domain.EventoAuditoria{ID: "evt-2", Tipo: domain.EventoLogin}))

	// Act: o banco cai na primeira entrega
	var entregas []string
	err := fila.ConsumirEventos(ctx, func(_ context.Context, e domain.EventoAuditoria) error {
		entregas = append(entregas, e.ID)
		switch len(entregas) {
		case 1:
			return fmt.Errorf("%w: conexao recusada", domain.ErrIndisponivel)
		case 3:
			return errConcluido
		}
		return nil
	})

	// Assert: volta na frente e a ordem se mantém
	assert.ErrorIs(t, err, errConcluido)
	assert.Equal(t, []string{"evt-1", "evt-1", "evt-2"}, entregas)

	pendentes, err := fila.Pendentes(context.Background())
	require.NoError(t, err)
	assert.Zero(t, pendentes)
}

func TestFilaAuditoria_ConsumirEventos_QuandoRedisCai_DeveRetomarSemEncerrar(t *testing.T) {
	client, mr := setupRedis(t)
	fila := NewFilaAuditoria(client, "fila:auditoria")
	fila.espera = 100 * time.Millisecond
	fila.pausa = 10 * time.Millisecond
	fila.log = logger.Discard()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	mr.Close()
	go func() {
		time.Sleep(150 * time.Millisecond)
		_ = mr.Restart()
		_, _ = mr.Lpush("fila:auditoria", `{"id":"evt-apos-queda","tipo":"login"}`)
	}()

	var recebido string
	err := fila.ConsumirEventos(ctx, func(_ context.Context, e domain.EventoAuditoria) error {
		recebido = e.ID
		return errConcluido
	})

	assert.ErrorIs(t, err, errConcluido)
	assert.Equal(t, "evt-apos-queda", recebido)
}
