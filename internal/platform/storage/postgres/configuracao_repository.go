package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/marcelojr/portal-eleicao/internal/domain"
)

// ConfiguracaoRepository mantém a linha única de configuração. Última escrita vence;
// versao cresce a cada gravação para o painel detectar mudanças.
type ConfiguracaoRepository struct {
	db *gorm.DB
}

func NewConfiguracaoRepository(db *gorm.DB) *ConfiguracaoRepository {
	return &ConfiguracaoRepository{db: db}
}

type configuracaoModel struct {
	ID            string     `gorm:"column:id;primaryKey"`
	VotacaoAberta bool       `gorm:"column:votacao_aberta"`
	Titulo        string     `gorm:"column:titulo"`
	InicioVotacao *time.Time `gorm:"column:inicio_votacao"`
	FimVotacao    *time.Time `gorm:"column:fim_votacao"`
	Versao        int64      `gorm:"column:versao"`
	AtualizadoEm  time.Time  `gorm:"column:atualizado_em"`
	AtualizadoPor string     `gorm:"column:atualizado_por"`
}

func (configuracaoModel) TableName() string {
	return "configuracoes"
}

func (m configuracaoModel) toDomain() domain.Configuracao {
	return domain.Configuracao{
		ID:            m.ID,
		VotacaoAberta: m.VotacaoAberta,
		Titulo:        m.Titulo,
		InicioVotacao: m.InicioVotacao,
		FimVotacao:    m.FimVotacao,
		Versao:        m.Versao,
		AtualizadoEm:  m.AtualizadoEm,
		AtualizadoPor: m.AtualizadoPor,
	}
}

// travaCompartilhada impede que a votação seja fechada no meio da gravação de um voto.
// O dialeto SQLite descarta a cláusula de trava.
func travaCompartilhada(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: clause.LockingStrengthShare})
}

func lerConfiguracao(db *gorm.DB) (domain.Configuracao, error) {
	var model configuracaoModel
	if err := db.Take(&model, "id = ?", domain.ConfiguracaoID).Error; err != nil {
		return domain.Configuracao{}, traduzir("configuracao: obter", err)
	}
	return model.toDomain(), nil
}

func (r *ConfiguracaoRepository) Obter(ctx context.Context) (domain.Configuracao, error) {
	return lerConfiguracao(r.db.WithContext(ctx))
}

// Salvar cria a linha na primeira gravação e incrementa versao nas seguintes.
func (r *ConfiguracaoRepository) Salvar(ctx context.Context, cfg domain.Configuracao) (domain.Configuracao, error) {
	var salvo domain.Configuracao
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var atual configuracaoModel
		err := tx.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
			Take(&atual, "id = ?", domain.ConfiguracaoID).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return traduzir("configuracao: travar", err)
		}

		model := configuracaoModel{
			ID:            domain.ConfiguracaoID,
			VotacaoAberta: cfg.VotacaoAberta,
			Titulo:        cfg.Titulo,
			InicioVotacao: cfg.InicioVotacao,
			FimVotacao:    cfg.FimVotacao,
			AtualizadoEm:  cfg.AtualizadoEm,
			AtualizadoPor: cfg.AtualizadoPor,
		}

		if errors.Is(err, gorm.ErrRecordNotFound) {
			model.Versao = 1
			if err := tx.Create(&model).Error; err != nil {
				return traduzir("configuracao: inserir", err)
			}
		} else {
			model.Versao = atual.Versao + 1
			if err := tx.Save(&model).Error; err != nil {
				return traduzir("configuracao: atualizar", err)
			}
		}

		salvo = model.toDomain()
		return nil
	})
	if err != nil {
		return domain.Configuracao{}, err
	}
	return salvo, nil
}

var _ domain.ConfiguracaoRepository = (*ConfiguracaoRepository)(nil)
