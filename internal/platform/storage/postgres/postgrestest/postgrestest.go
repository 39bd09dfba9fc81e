// Pacote postgrestest abre bancos SQLite em memória já migrados para testes de outros pacotes.
package postgrestest

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/marcelojr/portal-eleicao/internal/platform/migrations"
	"github.com/marcelojr/portal-eleicao/internal/platform/storage/postgres"
)

// Open devolve um banco isolado por teste, fechado no Cleanup.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), postgres.GormConfig())
	if err != nil {
		t.Fatalf("postgrestest: abrir sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("postgrestest: obter sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := migrations.Run(db); err != nil {
		t.Fatalf("postgrestest: migrar: %v", err)
	}

	t.Cleanup(func() {
		sqlDB.Close()
	})
	return db
}
