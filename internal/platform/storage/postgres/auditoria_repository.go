package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/marcelojr/portal-eleicao/internal/domain"
)

// AuditoriaRepository grava os eventos consumidos pelo worker.
type AuditoriaRepository struct {
	db *gorm.DB
}

func NewAuditoriaRepository(db *gorm.DB) *AuditoriaRepository {
	return &AuditoriaRepository{db: db}
}

func (r *AuditoriaRepository) Registrar(ctx context.Context, evento domain.EventoAuditoria) error {
	// Reentregas da fila repetem o ID; ignorar o conflito mantém o worker idempotente.
	return traduzir("auditoria: inserir", r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&evento).Error)
}

func (r *AuditoriaRepository) ListarRecentes(ctx context.Context, limite int) ([]domain.EventoAuditoria, error) {
	if limite <= 0 || limite > 500 {
		limite = 50
	}
	var eventos []domain.EventoAuditoria
	if err := r.db.WithContext(ctx).
		Order("criado_em DESC, id DESC").
		Limit(limite).
		Find(&eventos).Error; err != nil {
		return nil, traduzir("auditoria: listar", err)
	}
	return eventos, nil
}

var _ domain.AuditoriaRepository = (*AuditoriaRepository)(nil)
