package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/marcelojr/portal-eleicao/internal/domain"
	"github.com/marcelojr/portal-eleicao/internal/platform/ids"
	"github.com/marcelojr/portal-eleicao/internal/platform/migrations"
)

func setupPostgres(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), GormConfig())
	require.NoError(t, err)

	// Cada conexão SQLite em memória é um banco novo; uma só conexão mantém o schema visível.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, migrations.Run(db))

	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db
}

type cenario struct {
	db         *gorm.DB
	gen        *ids.Generator
	cargo      domain.Cargo
	outroCargo domain.Cargo
	candidatoA domain.Candidato
	candidatoB domain.Candidato
	rival      domain.Candidato
	eleitor    domain.Eleitor
}

// novoCenario monta dois cargos, três candidatos e um eleitor com a votação aberta.
func novoCenario(t *testing.T) cenario {
	db := setupPostgres(t)
	ctx := context.Background()
	gen := ids.NewGenerator()
	now := time.Now().UTC()

	c := cenario{db: db, gen: gen}
	c.cargo = domain.Cargo{ID: gen.Cargo(), Titulo: "President", Ordem: 1, Ativo: true, CriadoEm: now}
	c.outroCargo = domain.Cargo{ID: gen.Cargo(), Titulo: "Secretary", Ordem: 2, Ativo: true, CriadoEm: now}
	cargos := NewCargoRepository(db)
	require.NoError(t, cargos.Criar(ctx, c.cargo))
	require.NoError(t, cargos.Criar(ctx, c.outroCargo))

	candidatos := NewCandidatoRepository(db)
	c.candidatoA = domain.Candidato{ID: gen.Candidato(), CargoID: c.cargo.ID, Nome: "Aileen", Sobrenome: "Lopez", Ativo: true}
	c.candidatoB = domain.Candidato{ID: gen.Candidato(), CargoID: c.cargo.ID, Nome: "Claire", Sobrenome: "Carrascal", Ativo: true}
	c.rival = domain.Candidato{ID: gen.Candidato(), CargoID: c.outroCargo.ID, Nome: "Evelyn", Sobrenome: "Lee", Ativo: true}
	for _, cand := range []domain.Candidato{c.candidatoA, c.candidatoB, c.rival} {
		require.NoError(t, candidatos.Criar(ctx, cand))
	}

	c.eleitor = novoEleitor(t, db, gen, "maria@pamet.org", false)
	abrirVotacao(t, db, true)
	return c
}

func novoEleitor(t *testing.T, db *gorm.DB, gen *ids.Generator, email string, admin bool) domain.Eleitor {
	e := domain.Eleitor{
		ID:           gen.Eleitor(),
		IdentidadeID: gen.Identidade(),
		Email:        email,
		Nome:         "Maria",
		Sobrenome:    "Baylon",
		Admin:        admin,
		CriadoEm:     time.Now().UTC(),
	}
	require.NoError(t, NewEleitorRepository(db).Criar(context.Background(), e))
	return e
}

func abrirVotacao(t *testing.T, db *gorm.DB, aberta bool) {
	_, err := NewConfiguracaoRepository(db).Salvar(context.Background(), domain.Configuracao{
		VotacaoAberta: aberta,
		Titulo:        "Eleicao de teste",
		AtualizadoEm:  time.Now().UTC(),
		AtualizadoPor: "teste",
	})
	require.NoError(t, err)
}

func (c cenario) voto(eleitor domain.EleitorID, cargo domain.CargoID, candidato *domain.CandidatoID) domain.Voto {
	return domain.Voto{
		ID:          c.gen.Voto(),
		EleitorID:   eleitor,
		CargoID:     cargo,
		CandidatoID: candidato,
		CriadoEm:    time.Now().UTC(),
	}
}

func ptr[T any](v T) *T {
	return &v
}
