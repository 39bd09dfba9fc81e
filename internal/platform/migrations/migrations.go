// Pacote migrations centraliza as versões gormigrate aplicadas na inicialização.
package migrations

import (
	"errors"
	"fmt"

	gormigrate "github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"github.com/marcelojr/portal-eleicao/internal/domain"
	"github.com/marcelojr/portal-eleicao/internal/platform/fallback"
)

func lista() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		{
			ID: "202501150001_init_schema",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(
					&domain.Identidade{},
					&domain.Eleitor{},
					&domain.Cargo{},
					&domain.Candidato{},
					&domain.Voto{},
					&domain.Configuracao{},
				)
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("votos", "candidatos", "cargos", "eleitores", "identidades", "configuracoes")
			},
		},
		{
			ID: "202501150002_configuracao_inicial",
			Migrate: func(tx *gorm.DB) error {
				// A eleição nasce fechada; o admin abre a votação pelo painel.
				var existente domain.Configuracao
				err := tx.First(&existente, "id = ?", domain.ConfiguracaoID).Error
				if err == nil {
					return nil
				}
				if !errors.Is(err, gorm.ErrRecordNotFound) {
					return err
				}
				cfg := fallback.Configuracao()
				cfg.AtualizadoPor = "migracao"
				return tx.Create(&cfg).Error
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Delete(&domain.Configuracao{}, "id = ?", domain.ConfiguracaoID).Error
			},
		},
		{
			ID: "202501200001_auditoria",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&domain.EventoAuditoria{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("auditoria")
			},
		},
	}
}

func Run(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("migrations: db nulo")
	}

	m := gormigrate.New(db, gormigrate.DefaultOptions, lista())
	if err := m.Migrate(); err != nil {
		return fmt.Errorf("migrations: falha ao aplicar: %w", err)
	}

	return nil
}
