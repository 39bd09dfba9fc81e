package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/marcelojr/portal-eleicao/internal/domain"
)

func setupDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func TestRun_QuandoBancoVazio_DeveCriarTabelasEConfiguracaoFechada(t *testing.T) {
	db := setupDB(t)

	require.NoError(t, Run(db))

	for _, tabela := range []string{"identidades", "eleitores", "cargos", "candidatos", "votos", "configuracoes", "auditoria"} {
		assert.True(t, db.Migrator().HasTable(tabela), "tabela %s ausente", tabela)
	}

	var cfg domain.Configuracao
	require.NoError(t, db.First(&cfg, "id = ?", domain.ConfiguracaoID).Error)
	assert.False(t, cfg.VotacaoAberta)
	assert.NotEmpty(t, cfg.Titulo)
}

func TestRun_QuandoExecutadoDuasVezes_DeveSerIdempotente(t *testing.T) {
	db := setupDB(t)

	require.NoError(t, Run(db))
	require.NoError(t, Run(db))

	var total int64
	require.NoError(t, db.Model(&domain.Configuracao{}).Count(&total).Error)
	assert.Equal(t, int64(1), total)
}

func TestRun_QuandoDBNulo_DeveFalhar(t *testing.T) {
	assert.Error(t, Run(nil))
}
