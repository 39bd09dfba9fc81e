package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/marcelojr/portal-eleicao/internal/domain"
)

// CargoRepository lê e grava os cargos em disputa, sempre na ordem da cédula.
type CargoRepository struct {
	db *gorm.DB
}

func NewCargoRepository(db *gorm.DB) *CargoRepository {
	return &CargoRepository{db: db}
}

type cargoModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	Titulo    string    `gorm:"column:titulo"`
	Descricao string    `gorm:"column:descricao"`
	Ordem     int       `gorm:"column:ordem"`
	Ativo     bool      `gorm:"column:ativo"`
	CriadoEm  time.Time `gorm:"column:criado_em"`
}

func (cargoModel) TableName() string {
	return "cargos"
}

func (m cargoModel) toDomain() domain.Cargo {
	return domain.Cargo{
		ID:        domain.CargoID(m.ID),
		Titulo:    m.Titulo,
		Descricao: m.Descricao,
		Ordem:     m.Ordem,
		Ativo:     m.Ativo,
		CriadoEm:  m.CriadoEm,
	}
}

func fromDomainCargo(c domain.Cargo) cargoModel {
	return cargoModel{
		ID:        string(c.ID),
		Titulo:    c.Titulo,
		Descricao: c.Descricao,
		Ordem:     c.Ordem,
		Ativo:     c.Ativo,
		CriadoEm:  c.CriadoEm,
	}
}

func (r *CargoRepository) Criar(ctx context.Context, cargo domain.Cargo) error {
	model := fromDomainCargo(cargo)
	return traduzir("cargo: inserir", r.db.WithContext(ctx).Create(&model).Error)
}

func (r *CargoRepository) BuscarPorID(ctx context.Context, id domain.CargoID) (domain.Cargo, error) {
	var model cargoModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", string(id)).Error; err != nil {
		return domain.Cargo{}, traduzir("cargo: buscar id", err)
	}
	return model.toDomain(), nil
}

func (r *CargoRepository) Listar(ctx context.Context) ([]domain.Cargo, error) {
	return listarCargos(r.db.WithContext(ctx))
}

func listarCargos(db *gorm.DB) ([]domain.Cargo, error) {
	var models []cargoModel
	if err := db.Order("ordem ASC").Find(&models).Error; err != nil {
		return nil, traduzir("cargo: listar", err)
	}

	result := make([]domain.Cargo, len(models))
	for i, model := range models {
		result[i] = model.toDomain()
	}
	return result, nil
}

var _ domain.CargoRepository = (*CargoRepository)(nil)
