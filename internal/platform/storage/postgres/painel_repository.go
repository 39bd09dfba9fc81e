package postgres

import (
	"context"
	"database/sql"
	"errors"

	"gorm.io/gorm"

	"github.com/marcelojr/portal-eleicao/internal/domain"
)

// PainelRepository lê tudo que o painel admin precisa num único snapshot.
type PainelRepository struct {
	db *gorm.DB
}

func NewPainelRepository(db *gorm.DB) *PainelRepository {
	return &PainelRepository{db: db}
}

func (r *PainelRepository) opcoes() *sql.TxOptions {
	if r.db.Dialector.Name() != "postgres" {
		return nil
	}
	return &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
}

func (r *PainelRepository) CarregarPainel(ctx context.Context) (domain.Painel, error) {
	var painel domain.Painel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cargos, err := listarCargos(tx)
		if err != nil {
			return err
		}
		candidatos, err := listarCandidatos(tx)
		if err != nil {
			return err
		}
		eleitores, err := listarEleitores(tx)
		if err != nil {
			return err
		}

		cfg, err := lerConfiguracao(tx)
		switch {
		case err == nil:
			painel.Configuracao = &cfg
		case errors.Is(err, domain.ErrNotFound):
		default:
			return err
		}

		painel.Cargos = cargos
		painel.Candidatos = candidatos
		painel.Eleitores = eleitores
		return nil
	}, r.opcoes())
	if err != nil {
		return domain.Painel{}, err
	}

	painel.Modo = domain.ModoAoVivo
	painel.Estatisticas = domain.CalcularEstatisticas(painel.Eleitores, domain.OrigemAgregado)
	return painel, nil
}

var _ domain.PainelRepository = (*PainelRepository)(nil)
