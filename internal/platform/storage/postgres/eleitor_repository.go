package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/marcelojr/portal-eleicao/internal/domain"
)

// EleitorRepository mapeia os perfis de eleitor. JaVotou vem sempre da tabela de votos.
type EleitorRepository struct {
	db *gorm.DB
}

func NewEleitorRepository(db *gorm.DB) *EleitorRepository {
	return &EleitorRepository{db: db}
}

const selecaoEleitor = "eleitores.*, EXISTS (SELECT 1 FROM votos WHERE votos.eleitor_id = eleitores.id) AS ja_votou"

type eleitorModel struct {
	ID           string    `gorm:"column:id;primaryKey"`
	IdentidadeID string    `gorm:"column:identidade_id"`
	Email        string    `gorm:"column:email"`
	Nome         string    `gorm:"column:nome"`
	Sobrenome    string    `gorm:"column:sobrenome"`
	Matricula    *string   `gorm:"column:matricula"`
	Admin        bool      `gorm:"column:admin"`
	JaVotou      bool      `gorm:"column:ja_votou;->;-:migration"`
	CriadoEm     time.Time `gorm:"column:criado_em"`
	AtualizadoEm time.Time `gorm:"column:atualizado_em"`
}

func (eleitorModel) TableName() string {
	return "eleitores"
}

func (m eleitorModel) toDomain() domain.Eleitor {
	return domain.Eleitor{
		ID:           domain.EleitorID(m.ID),
		IdentidadeID: domain.IdentidadeID(m.IdentidadeID),
		Email:        m.Email,
		Nome:         m.Nome,
		Sobrenome:    m.Sobrenome,
		Matricula:    m.Matricula,
		Admin:        m.Admin,
		JaVotou:      m.JaVotou,
		CriadoEm:     m.CriadoEm,
		AtualizadoEm: m.AtualizadoEm,
	}
}

func fromDomainEleitor(e domain.Eleitor) eleitorModel {
	return eleitorModel{
		ID:           string(e.ID),
		IdentidadeID: string(e.IdentidadeID),
		Email:        e.Email,
		Nome:         e.Nome,
		Sobrenome:    e.Sobrenome,
		Matricula:    e.Matricula,
		Admin:        e.Admin,
		CriadoEm:     e.CriadoEm,
		AtualizadoEm: e.AtualizadoEm,
	}
}

func (r *EleitorRepository) Criar(ctx context.Context, eleitor domain.Eleitor) error {
	model := fromDomainEleitor(eleitor)
	return traduzir("eleitor: inserir", r.db.WithContext(ctx).Create(&model).Error)
}

func (r *EleitorRepository) Atualizar(ctx context.Context, eleitor domain.Eleitor) error {
	model := fromDomainEleitor(eleitor)
	res := r.db.WithContext(ctx).Model(&eleitorModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]any{
			"email":         model.Email,
			"nome":          model.Nome,
			"sobrenome":     model.Sobrenome,
			"matricula":     model.Matricula,
			"admin":         model.Admin,
			"atualizado_em": model.AtualizadoEm,
		})
	if res.Error != nil {
		return traduzir("eleitor: atualizar", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *EleitorRepository) buscar(ctx context.Context, op, filtro string, valor any) (domain.Eleitor, error) {
	var model eleitorModel
	if err := r.db.WithContext(ctx).
		Select(selecaoEleitor).
		Where(filtro, valor).
		Take(&model).Error; err != nil {
		return domain.Eleitor{}, traduzir(op, err)
	}
	return model.toDomain(), nil
}

func (r *EleitorRepository) BuscarPorID(ctx context.Context, id domain.EleitorID) (domain.Eleitor, error) {
	return r.buscar(ctx, "eleitor: buscar id", "eleitores.id = ?", string(id))
}

func (r *EleitorRepository) BuscarPorIdentidade(ctx context.Context, id domain.IdentidadeID) (domain.Eleitor, error) {
	return r.buscar(ctx, "eleitor: buscar identidade", "eleitores.identidade_id = ?", string(id))
}

func (r *EleitorRepository) Listar(ctx context.Context) ([]domain.Eleitor, error) {
	return listarEleitores(r.db.WithContext(ctx))
}

func listarEleitores(db *gorm.DB) ([]domain.Eleitor, error) {
	var models []eleitorModel
	if err := db.
		Select(selecaoEleitor).
		Order("eleitores.nome ASC, eleitores.sobrenome ASC").
		Find(&models).Error; err != nil {
		return nil, traduzir("eleitor: listar", err)
	}

	result := make([]domain.Eleitor, len(models))
	for i, model := range models {
		result[i] = model.toDomain()
	}
	return result, nil
}

func (r *EleitorRepository) ContarAptos(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&eleitorModel{}).
		Where("admin = ?", false).
		Count(&total).Error; err != nil {
		return 0, traduzir("eleitor: contar aptos", err)
	}
	return total, nil
}

// ExcluirPorEmail desfaz os votos do eleitor antes de apagá-lo para que total_votos
// continue igual à contagem de votos de cada candidato.
func (r *EleitorRepository) ExcluirPorEmail(ctx context.Context, email string) (domain.Eleitor, error) {
	var removido domain.Eleitor
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model eleitorModel
		if err := tx.Where("email = ?", email).Take(&model).Error; err != nil {
			return traduzir("eleitor: buscar email", err)
		}

		var votos []votoModel
		if err := tx.Where("eleitor_id = ?", model.ID).Find(&votos).Error; err != nil {
			return traduzir("eleitor: votos do eleitor", err)
		}
		for _, v := range votos {
			if v.CandidatoID == nil {
				continue
			}
			if err := tx.Model(&candidatoModel{}).
				Where("id = ? AND total_votos > 0", *v.CandidatoID).
				UpdateColumn("total_votos", gorm.Expr("total_votos - 1")).Error; err != nil {
				return traduzir("eleitor: estornar voto", err)
			}
		}

		if err := tx.Where("eleitor_id = ?", model.ID).Delete(&votoModel{}).Error; err != nil {
			return traduzir("eleitor: apagar votos", err)
		}
		if err := tx.Delete(&eleitorModel{}, "id = ?", model.ID).Error; err != nil {
			return traduzir("eleitor: apagar perfil", err)
		}

		model.JaVotou = len(votos) > 0
		removido = model.toDomain()
		return nil
	})
	if err != nil {
		return domain.Eleitor{}, err
	}
	return removido, nil
}

var _ domain.EleitorRepository = (*EleitorRepository)(nil)
