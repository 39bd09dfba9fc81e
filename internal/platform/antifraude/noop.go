package antifraude

import (
	"context"

	"github.com/marcelojr/portal-eleicao/internal/domain"
)

// Noop aceita todas as tentativas; usado quando o limite de login está desligado.
type Noop struct{}

func NewNoop() Noop {
	return Noop{}
}

func (Noop) Validar(context.Context, string) error {
	return nil
}

var _ domain.Antifraude = Noop{}
