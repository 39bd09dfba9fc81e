package postgres

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/marcelojr/portal-eleicao/internal/domain"
)

// traduzir mantém a mensagem do GORM mas expõe os sentinelas do domínio para errors.Is.
func traduzir(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("gorm %s: %w", op, domain.ErrDuplicado)
	default:
		return fmt.Errorf("gorm %s: %w", op, err)
	}
}
