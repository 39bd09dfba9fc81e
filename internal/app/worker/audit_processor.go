// Pacote worker grava na tabela de auditoria os eventos publicados pelos serviços na fila Redis.
package worker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mssola/useragent"

	"github.com/marcelojr/portal-eleicao/internal/domain"
	"github.com/marcelojr/portal-eleicao/internal/platform/ids"
	"github.com/marcelojr/portal-eleicao/internal/platform/metrics"
)

// AuditProcessor completa o evento com navegador e sistema e persiste no repositório.
type AuditProcessor struct {
	repo  domain.AuditoriaRepository
	clock domain.Clock
	ids   *ids.Generator
}

func NewAuditProcessor(repo domain.AuditoriaRepository, clock domain.Clock, idGen *ids.Generator) *AuditProcessor {
	if idGen == nil {
		idGen = ids.DefaultGenerator()
	}
	return &AuditProcessor{
		repo:  repo,
		clock: clock,
		ids:   idGen,
	}
}

func (p *AuditProcessor) Process(ctx context.Context, evento domain.EventoAuditoria) error {
	start := time.Now()

	if evento.ID == "" {
		evento.ID = p.ids.New()
	}
	if evento.CriadoEm.IsZero() {
		evento.CriadoEm = p.clock.Agora()
	}
	evento.Navegador, evento.Sistema = identificarAgente(evento.UserAgent)

	if err := p.repo.Registrar(ctx, evento); err != nil {
		metrics.IncAuditProcessed("erro")
		return fmt.Errorf("worker: registrar evento %s (%s): %w", evento.ID, evento.Tipo, domain.Indisponivel(err))
	}

	metrics.IncAuditProcessed("ok")
	metrics.ObserveAuditProcessingDuration(time.Since(start).Seconds())
	return nil
}

// identificarAgente resume o user agent em "Navegador versão" e sistema operacional.
func identificarAgente(bruto string) (navegador, sistema string) {
	bruto = strings.TrimSpace(bruto)
	if bruto == "" {
		return "", ""
	}

	ua := useragent.New(bruto)
	if ua.Bot() {
		nome, _ := ua.Browser()
		return "bot " + nome, ""
	}

	nome, versao := ua.Browser()
	navegador = strings.TrimSpace(nome + " " + versao)
	sistema = ua.OS()
	if ua.Mobile() && sistema != "" {
		sistema += " (mobile)"
	}
	return navegador, sistema
}
