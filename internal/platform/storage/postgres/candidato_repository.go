package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/marcelojr/portal-eleicao/internal/domain"
)

// CandidatoRepository cuida do cadastro de candidatos. total_votos só muda pelo VotoRepository.
type CandidatoRepository struct {
	db *gorm.DB
}

func NewCandidatoRepository(db *gorm.DB) *CandidatoRepository {
	return &CandidatoRepository{db: db}
}

type candidatoModel struct {
	ID           string    `gorm:"column:id;primaryKey"`
	CargoID      string    `gorm:"column:cargo_id"`
	Nome         string    `gorm:"column:nome"`
	Sobrenome    string    `gorm:"column:sobrenome"`
	Plataforma   string    `gorm:"column:plataforma"`
	FotoURL      string    `gorm:"column:foto_url"`
	TotalVotos   int64     `gorm:"column:total_votos"`
	Ativo        bool      `gorm:"column:ativo"`
	CriadoEm     time.Time `gorm:"column:criado_em"`
	AtualizadoEm time.Time `gorm:"column:atualizado_em"`
}

func (candidatoModel) TableName() string {
	return "candidatos"
}

func (m candidatoModel) toDomain() domain.Candidato {
	return domain.Candidato{
		ID:           domain.CandidatoID(m.ID),
		CargoID:      domain.CargoID(m.CargoID),
		Nome:         m.Nome,
		Sobrenome:    m.Sobrenome,
		Plataforma:   m.Plataforma,
		FotoURL:      m.FotoURL,
		TotalVotos:   m.TotalVotos,
		Ativo:        m.Ativo,
		CriadoEm:     m.CriadoEm,
		AtualizadoEm: m.AtualizadoEm,
	}
}

func fromDomainCandidato(c domain.Candidato) candidatoModel {
	return candidatoModel{
		ID:           string(c.ID),
		CargoID:      string(c.CargoID),
		Nome:         c.Nome,
		Sobrenome:    c.Sobrenome,
		Plataforma:   c.Plataforma,
		FotoURL:      c.FotoURL,
		TotalVotos:   c.TotalVotos,
		Ativo:        c.Ativo,
		CriadoEm:     c.CriadoEm,
		AtualizadoEm: c.AtualizadoEm,
	}
}

func (r *CandidatoRepository) Criar(ctx context.Context, candidato domain.Candidato) error {
	model := fromDomainCandidato(candidato)
	model.TotalVotos = 0
	return traduzir("candidato: inserir", r.db.WithContext(ctx).Create(&model).Error)
}

// Atualizar trava a linha do candidato antes de comparar o cargo; candidato com voto
// não troca de cargo, mesmo que o voto tenha chegado depois da leitura do chamador.
func (r *CandidatoRepository) Atualizar(ctx context.Context, candidato domain.Candidato) error {
	model := fromDomainCandidato(candidato)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		atual, err := travarCandidato(tx, model.ID)
		if err != nil {
			return err
		}
		if atual.CargoID != model.CargoID {
			if err := semVotos(tx, model.ID); err != nil {
				return err
			}
		}

		res := tx.Model(&candidatoModel{}).
			Where("id = ?", model.ID).
			Updates(map[string]any{
				"cargo_id":      model.CargoID,
				"nome":          model.Nome,
				"sobrenome":     model.Sobrenome,
				"plataforma":    model.Plataforma,
				"foto_url":      model.FotoURL,
				"ativo":         model.Ativo,
				"atualizado_em": model.AtualizadoEm,
			})
		if res.Error != nil {
			return traduzir("candidato: atualizar", res.Error)
		}
		return nil
	})
}

// Excluir só remove candidatos sem votos; a trava da linha segura votos concorrentes até o fim.
func (r *CandidatoRepository) Excluir(ctx context.Context, id domain.CandidatoID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := travarCandidato(tx, string(id)); err != nil {
			return err
		}
		if err := semVotos(tx, string(id)); err != nil {
			return err
		}
		if err := tx.Delete(&candidatoModel{}, "id = ?", string(id)).Error; err != nil {
			return traduzir("candidato: excluir", err)
		}
		return nil
	})
}

func travarCandidato(tx *gorm.DB, id string) (candidatoModel, error) {
	var model candidatoModel
	err := tx.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Take(&model, "id = ?", id).Error
	if err != nil {
		return candidatoModel{}, traduzir("candidato: travar", err)
	}
	return model, nil
}

func semVotos(tx *gorm.DB, id string) error {
	var votos int64
	if err := tx.Model(&votoModel{}).Where("candidato_id = ?", id).Count(&votos).Error; err != nil {
		return traduzir("candidato: contar votos", err)
	}
	if votos > 0 {
		return fmt.Errorf("%w: candidato ja recebeu votos", domain.ErrDadosInvalidos)
	}
	return nil
}

func (r *CandidatoRepository) BuscarPorID(ctx context.Context, id domain.CandidatoID) (domain.Candidato, error) {
	var model candidatoModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", string(id)).Error; err != nil {
		return domain.Candidato{}, traduzir("candidato: buscar id", err)
	}
	return model.toDomain(), nil
}

func (r *CandidatoRepository) Listar(ctx context.Context) ([]domain.Candidato, error) {
	return listarCandidatos(r.db.WithContext(ctx))
}

func listarCandidatos(db *gorm.DB) ([]domain.Candidato, error) {
	var models []candidatoModel
	if err := db.Order("nome ASC, sobrenome ASC").Find(&models).Error; err != nil {
		return nil, traduzir("candidato: listar", err)
	}

	result := make([]domain.Candidato, len(models))
	for i, model := range models {
		result[i] = model.toDomain()
	}
	return result, nil
}

var _ domain.CandidatoRepository = (*CandidatoRepository)(nil)
