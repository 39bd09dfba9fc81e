// Pacote auditoria publica os eventos de auditoria das operações da API. A publicação é
// best-effort: falhar aqui nunca desfaz nem bloqueia a operação que já foi concluída.
package auditoria

import (
	"context"
	"log/slog"

	"github.com/marcelojr/portal-eleicao/internal/domain"
	"github.com/marcelojr/portal-eleicao/internal/platform/ids"
)

type Origem struct {
	IP        string
	UserAgent string
}

type chaveOrigem struct{}

// ComOrigem anexa IP e user agent da requisição ao contexto.
func ComOrigem(ctx context.Context, o Origem) context.Context {
	return context.WithValue(ctx, chaveOrigem{}, o)
}

func OrigemDe(ctx context.Context) Origem {
	o, _ := ctx.Value(chaveOrigem{}).(Origem)
	return o
}

type Registrador struct {
	fila  domain.FilaAuditoria
	clock domain.Clock
	ids   *ids.Generator
	log   *slog.Logger
}

func NewRegistrador(fila domain.FilaAuditoria, clock domain.Clock, log *slog.Logger) *Registrador {
	return &Registrador{
		fila:  fila,
		clock: clock,
		ids:   ids.DefaultGenerator(),
		log:   log,
	}
}

func (r *Registrador) Registrar(ctx context.Context, tipo, ator, alvo, detalhe string) {
	if r == nil || r.fila == nil {
		return
	}

	origem := OrigemDe(ctx)
	evento := domain.EventoAuditoria{
		ID:        r.ids.New(),
		Tipo:      tipo,
		Ator:      ator,
		Alvo:      alvo,
		Detalhe:   detalhe,
		OrigemIP:  origem.IP,
		UserAgent: origem.UserAgent,
		CriadoEm:  r.clock.Agora(),
	}

	// A requisição pode ter terminado; o evento ainda deve sair.
	if err := r.fila.PublicarEvento(context.WithoutCancel(ctx), evento); err != nil {
		r.log.Warn("falha ao publicar evento de auditoria", "tipo", tipo, "alvo", alvo, "error", err)
	}
}
