package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/marcelojr/portal-eleicao/internal/domain"
)

// VotoRepository é o único ponto que grava votos e mexe em total_votos.
type VotoRepository struct {
	db *gorm.DB
}

func NewVotoRepository(db *gorm.DB) *VotoRepository {
	return &VotoRepository{db: db}
}

type votoModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	EleitorID   string    `gorm:"column:eleitor_id"`
	CargoID     string    `gorm:"column:cargo_id"`
	CandidatoID *string   `gorm:"column:candidato_id"`
	CriadoEm    time.Time `gorm:"column:criado_em"`
}

func (votoModel) TableName() string {
	return "votos"
}

func (m votoModel) toDomain() domain.Voto {
	v := domain.Voto{
		ID:        domain.VotoID(m.ID),
		EleitorID: domain.EleitorID(m.EleitorID),
		CargoID:   domain.CargoID(m.CargoID),
		CriadoEm:  m.CriadoEm,
	}
	if m.CandidatoID != nil {
		id := domain.CandidatoID(*m.CandidatoID)
		v.CandidatoID = &id
	}
	return v
}

func fromDomainVoto(v domain.Voto) votoModel {
	m := votoModel{
		ID:        string(v.ID),
		EleitorID: string(v.EleitorID),
		CargoID:   string(v.CargoID),
		CriadoEm:  v.CriadoEm,
	}
	if v.CandidatoID != nil {
		id := string(*v.CandidatoID)
		m.CandidatoID = &id
	}
	return m
}

// Registrar executa todo o contrato de voto numa transação: votação aberta,
// cargo e candidato válidos, no máximo um voto por (eleitor, cargo) garantido
// pelo índice único e incremento do candidato. Qualquer falha desfaz tudo.
func (r *VotoRepository) Registrar(ctx context.Context, voto domain.Voto) (domain.Voto, error) {
	model := fromDomainVoto(voto)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cfg, err := lerConfiguracao(travaCompartilhada(tx))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrVotacaoEncerrada
			}
			return err
		}
		if !cfg.VotacaoAberta {
			return domain.ErrVotacaoEncerrada
		}

		var cargo cargoModel
		if err := tx.Take(&cargo, "id = ?", model.CargoID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: cargo inexistente", domain.ErrDadosInvalidos)
			}
			return traduzir("voto: buscar cargo", err)
		}
		if !cargo.Ativo {
			return fmt.Errorf("%w: cargo inativo", domain.ErrDadosInvalidos)
		}

		if model.CandidatoID != nil {
			var candidato candidatoModel
			// FOR UPDATE já aqui: o incremento abaixo travaria a linha de qualquer jeito, e
			// exclusão ou troca de cargo do candidato esperam este voto terminar.
			if err := tx.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
				Take(&candidato, "id = ?", *model.CandidatoID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: candidato inexistente", domain.ErrDadosInvalidos)
				}
				return traduzir("voto: buscar candidato", err)
			}
			if candidato.CargoID != model.CargoID {
				return fmt.Errorf("%w: candidato nao concorre a este cargo", domain.ErrDadosInvalidos)
			}
			if !candidato.Ativo {
				return fmt.Errorf("%w: candidato inativo", domain.ErrDadosInvalidos)
			}
		}

		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model)
		if res.Error != nil {
			return traduzir("voto: inserir", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrVotoDuplicado
		}

		if model.CandidatoID == nil {
			return nil
		}
		inc := tx.Model(&candidatoModel{}).
			Where("id = ?", *model.CandidatoID).
			UpdateColumn("total_votos", gorm.Expr("total_votos + 1"))
		if inc.Error != nil {
			return traduzir("voto: incrementar candidato", inc.Error)
		}
		if inc.RowsAffected != 1 {
			return fmt.Errorf("gorm voto: incremento afetou %d linhas", inc.RowsAffected)
		}
		return nil
	})
	if err != nil {
		return domain.Voto{}, err
	}
	return model.toDomain(), nil
}

func (r *VotoRepository) ListarPorEleitor(ctx context.Context, id domain.EleitorID) ([]domain.Voto, error) {
	var models []votoModel
	if err := r.db.WithContext(ctx).
		Where("eleitor_id = ?", string(id)).
		Order("criado_em ASC").
		Find(&models).Error; err != nil {
		return nil, traduzir("voto: listar eleitor", err)
	}

	votos := make([]domain.Voto, len(models))
	for i, m := range models {
		votos[i] = m.toDomain()
	}
	return votos, nil
}

func (r *VotoRepository) TotaisPorCargo(ctx context.Context) (map[domain.CargoID]int64, map[domain.CargoID]int64, error) {
	return totaisPorCargo(r.db.WithContext(ctx))
}

func totaisPorCargo(db *gorm.DB) (map[domain.CargoID]int64, map[domain.CargoID]int64, error) {
	type resultado struct {
		CargoID    string
		Total      int64
		Abstencoes int64
	}
	var res []resultado
	if err := db.
		Model(&votoModel{}).
		Select("cargo_id AS cargo_id, COUNT(*) AS total, CAST(SUM(CASE WHEN candidato_id IS NULL THEN 1 ELSE 0 END) AS BIGINT) AS abstencoes").
		Group("cargo_id").
		Scan(&res).Error; err != nil {
		return nil, nil, traduzir("voto: totais por cargo", err)
	}

	totais := make(map[domain.CargoID]int64, len(res))
	abstencoes := make(map[domain.CargoID]int64, len(res))
	for _, item := range res {
		totais[domain.CargoID(item.CargoID)] = item.Total
		abstencoes[domain.CargoID(item.CargoID)] = item.Abstencoes
	}
	return totais, abstencoes, nil
}

// Limpar apaga todos os votos e zera os candidatos numa única transação; depois relê o estado
// para o admin confirmar que nada sobrou.
func (r *VotoRepository) Limpar(ctx context.Context) (domain.VerificacaoLimpeza, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		global := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		if err := global.Delete(&votoModel{}).Error; err != nil {
			return traduzir("voto: apagar todos", err)
		}
		if err := global.Model(&candidatoModel{}).UpdateColumn("total_votos", 0).Error; err != nil {
			return traduzir("voto: zerar candidatos", err)
		}
		return nil
	})
	if err != nil {
		return domain.VerificacaoLimpeza{}, err
	}

	return r.verificar(ctx)
}

func (r *VotoRepository) verificar(ctx context.Context) (domain.VerificacaoLimpeza, error) {
	var v domain.VerificacaoLimpeza
	db := r.db.WithContext(ctx)

	if err := db.Model(&votoModel{}).Count(&v.VotosRestantes).Error; err != nil {
		return v, traduzir("voto: verificar votos", err)
	}
	if err := db.Model(&votoModel{}).Distinct("eleitor_id").Count(&v.EleitoresQueVotaram).Error; err != nil {
		return v, traduzir("voto: verificar eleitores", err)
	}
	if err := db.Model(&candidatoModel{}).
		Select("CAST(COALESCE(SUM(total_votos), 0) AS BIGINT)").
		Scan(&v.SomaVotosCandidatos).Error; err != nil {
		return v, traduzir("voto: verificar candidatos", err)
	}
	return v, nil
}

var _ domain.VotoRepository = (*VotoRepository)(nil)
