package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/marcelojr/portal-eleicao/internal/domain"
)

// IdentidadeRepository guarda as credenciais de login separadas do perfil de eleitor.
type IdentidadeRepository struct {
	db *gorm.DB
}

func NewIdentidadeRepository(db *gorm.DB) *IdentidadeRepository {
	return &IdentidadeRepository{db: db}
}

type identidadeModel struct {
	ID           string    `gorm:"column:id;primaryKey"`
	Email        string    `gorm:"column:email"`
	SenhaHash    string    `gorm:"column:senha_hash"`
	CriadoEm     time.Time `gorm:"column:criado_em"`
	AtualizadoEm time.Time `gorm:"column:atualizado_em"`
}

func (identidadeModel) TableName() string {
	return "identidades"
}

func (m identidadeModel) toDomain() domain.Identidade {
	return domain.Identidade{
		ID:           domain.IdentidadeID(m.ID),
		Email:        m.Email,
		SenhaHash:    m.SenhaHash,
		CriadoEm:     m.CriadoEm,
		AtualizadoEm: m.AtualizadoEm,
	}
}

func fromDomainIdentidade(i domain.Identidade) identidadeModel {
	return identidadeModel{
		ID:           string(i.ID),
		Email:        i.Email,
		SenhaHash:    i.SenhaHash,
		CriadoEm:     i.CriadoEm,
		AtualizadoEm: i.AtualizadoEm,
	}
}

func (r *IdentidadeRepository) Criar(ctx context.Context, identidade domain.Identidade) error {
	model := fromDomainIdentidade(identidade)
	return traduzir("identidade: inserir", r.db.WithContext(ctx).Create(&model).Error)
}

func (r *IdentidadeRepository) Atualizar(ctx context.Context, identidade domain.Identidade) error {
	res := r.db.WithContext(ctx).Model(&identidadeModel{}).
		Where("id = ?", string(identidade.ID)).
		Updates(map[string]any{
			"email":         identidade.Email,
			"senha_hash":    identidade.SenhaHash,
			"atualizado_em": identidade.AtualizadoEm,
		})
	if res.Error != nil {
		return traduzir("identidade: atualizar", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *IdentidadeRepository) Excluir(ctx context.Context, id domain.IdentidadeID) error {
	res := r.db.WithContext(ctx).Delete(&identidadeModel{}, "id = ?", string(id))
	if res.Error != nil {
		return traduzir("identidade: excluir", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *IdentidadeRepository) BuscarPorID(ctx context.Context, id domain.IdentidadeID) (domain.Identidade, error) {
	var model identidadeModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", string(id)).Error; err != nil {
		return domain.Identidade{}, traduzir("identidade: buscar id", err)
	}
	return model.toDomain(), nil
}

func (r *IdentidadeRepository) BuscarPorEmail(ctx context.Context, email string) (domain.Identidade, error) {
	var model identidadeModel
	if err := r.db.WithContext(ctx).First(&model, "email = ?", email).Error; err != nil {
		return domain.Identidade{}, traduzir("identidade: buscar email", err)
	}
	return model.toDomain(), nil
}

var _ domain.IdentidadeRepository = (*IdentidadeRepository)(nil)
