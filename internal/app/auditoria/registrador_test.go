package auditoria

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcelojr/portal-eleicao/internal/domain"
	"github.com/marcelojr/portal-eleicao/internal/platform/logger"
)

type filaMemoria struct {
	eventos []domain.EventoAuditoria
	falha   error
}

func (f *filaMemoria) PublicarEvento(_ context.Context, e domain.EventoAuditoria) error {
	if f.falha != nil {
		return f.falha
	}
	f.eventos = append(f.eventos, e)
	return nil
}

func (f *filaMemoria) ConsumirEventos(context.Context, func(context.Context, domain.EventoAuditoria) error) error {
	return nil
}

type relogioFixo struct{ t time.Time }

func (r relogioFixo) Agora() time.Time { return r.t }

func TestRegistrador_Registrar_DevePreencherOrigemEHorario(t *testing.T) {
	fila := &filaMemoria{}
	agora := time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC)
	reg := NewRegistrador(fila, relogioFixo{t: agora}, logger.Discard())

	ctx := ComOrigem(context.Background(), Origem{IP: "10.0.0.7", UserAgent: "Mozilla/5.0"})
	reg.Registrar(ctx, domain.EventoVotoRegistrado, "maria@pamet.org", "cargo-1", "abstencao")

	require.Len(t, fila.eventos, 1)
	e := fila.eventos[0]
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, domain.EventoVotoRegistrado, e.Tipo)
	assert.Equal(t, "maria@pamet.org", e.Ator)
	assert.Equal(t, "cargo-1", e.Alvo)
	assert.Equal(t, "abstencao", e.Detalhe)
	assert.Equal(t, "10.0.0.7", e.OrigemIP)
	assert.Equal(t, "Mozilla/5.0", e.UserAgent)
	assert.Equal(t, agora, e.CriadoEm)
}

func TestRegistrador_Registrar_QuandoFilaFalha_NaoDevePropagar(t *testing.T) {
	fila := &filaMemoria{falha: errors.New("redis fora")}
	reg := NewRegistrador(fila, relogioFixo{t: time.Now()}, logger.Discard())

	assert.NotPanics(t, func() {
		reg.Registrar(context.Background(), domain.EventoLogin, "maria@pamet.org", "", "")
	})
	assert.Empty(t, fila.eventos)
}

func TestRegistrador_Registrar_QuandoContextoCancelado_AindaPublica(t *testing.T) {
	fila := &filaMemoria{}
	reg := NewRegistrador(fila, relogioFixo{t: time.Now()}, logger.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	reg.Registrar(ctx, domain.EventoLogin, "maria@pamet.org", "", "")

	assert.Len(t, fila.eventos, 1)
}

func TestRegistrador_QuandoNilOuSemFila_NaoFazNada(t *testing.T) {
	var nulo *Registrador
	assert.NotPanics(t, func() {
		nulo.Registrar(context.Background(), domain.EventoLogin, "", "", "")
	})

	semFila := NewRegistrador(nil, relogioFixo{t: time.Now()}, logger.Discard())
	assert.NotPanics(t, func() {
		semFila.Registrar(context.Background(), domain.EventoLogin, "", "", "")
	})
}

func TestOrigemDe_QuandoAusente_DeveVirVazia(t *testing.T) {
	assert.Equal(t, Origem{}, OrigemDe(context.Background()))
}
