package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcelojr/portal-eleicao/internal/domain"
)

func TestEleitorRepository_BuscarPorID_QuandoNaoVotou_DeveRetornarJaVotouFalso(t *testing.T) {
	c := novoCenario(t)

	eleitor, err := NewEleitorRepository(c.db).BuscarPorID(context.Background(), c.eleitor.ID)

	require.NoError(t, err)
	assert.Equal(t, c.eleitor.Email, eleitor.Email)
	assert.False(t, eleitor.JaVotou)
}

func TestEleitorRepository_BuscarPorIdentidade_QuandoVotouUmCargo_DeveDerivarJaVotou(t *testing.T) {
	c := novoCenario(t)
	ctx := context.Background()

	// Arrange
	_, err := NewVotoRepository(c.db).Registrar(ctx, c.voto(c.eleitor.ID, c.cargo.ID, nil))
	require.NoError(t, err)

	// Act
	eleitor, err := NewEleitorRepository(c.db).BuscarPorIdentidade(ctx, c.eleitor.IdentidadeID)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, c.eleitor.ID, eleitor.ID)
	assert.True(t, eleitor.JaVotou)
}

func TestEleitorRepository_BuscarPorID_QuandoInexistente_DeveRetornarErrNotFound(t *testing.T) {
	db := setupPostgres(t)

	_, err := NewEleitorRepository(db).BuscarPorID(context.Background(), domain.EleitorID("nao-existe"))

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEleitorRepository_Criar_QuandoEmailRepetido_DeveRetornarErrDuplicado(t *testing.T) {
	c := novoCenario(t)

	copia := c.eleitor
	copia.ID = c.gen.Eleitor()
	copia.IdentidadeID = c.gen.Identidade()
	err := NewEleitorRepository(c.db).Criar(context.Background(), copia)

	assert.ErrorIs(t, err, domain.ErrDuplicado)
}

func TestEleitorRepository_Atualizar_DeveAlterarDadosCadastrais(t *testing.T) {
	c := novoCenario(t)
	repo := NewEleitorRepository(c.db)
	ctx := context.Background()

	// Arrange
	alterado := c.eleitor
	alterado.Nome = "Maria Clara"
	alterado.Matricula = ptr("PAMET-0042")
	alterado.Admin = true
	alterado.AtualizadoEm = time.Now().UTC()

	// Act
	require.NoError(t, repo.Atualizar(ctx, alterado))

	// Assert
	salvo, err := repo.BuscarPorID(ctx, c.eleitor.ID)
	require.NoError(t, err)
	assert.Equal(t, "Maria Clara", salvo.Nome)
	require.NotNil(t, salvo.Matricula)
	assert.Equal(t, "PAMET-0042", *salvo.Matricula)
	assert.True(t, salvo.Admin)

	fantasma := alterado
	fantasma.ID = c.gen.Eleitor()
	assert.ErrorIs(t, repo.Atualizar(ctx, fantasma), domain.ErrNotFound)
}

func TestEleitorRepository_ContarAptos_DeveIgnorarAdmins(t *testing.T) {
	c := novoCenario(t)
	novoEleitor(t, c.db, c.gen, "joao@pamet.org", false)
	novoEleitor(t, c.db, c.gen, "admin@pamet.org", true)

	total, err := NewEleitorRepository(c.db).ContarAptos(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestEleitorRepository_Listar_DeveMarcarQuemVotou(t *testing.T) {
	c := novoCenario(t)
	ctx := context.Background()

	// Arrange
	joao := novoEleitor(t, c.db, c.gen, "joao@pamet.org", false)
	_, err := NewVotoRepository(c.db).Registrar(ctx, c.voto(joao.ID, c.cargo.ID, ptr(c.candidatoA.ID)))
	require.NoError(t, err)

	// Act
	eleitores, err := NewEleitorRepository(c.db).Listar(ctx)
	require.NoError(t, err)

	// Assert
	require.Len(t, eleitores, 2)
	porID := map[domain.EleitorID]bool{}
	for _, e := range eleitores {
		porID[e.ID] = e.JaVotou
	}
	assert.True(t, porID[joao.ID])
	assert.False(t, porID[c.eleitor.ID])
}

func TestEleitorRepository_ExcluirPorEmail_DeveEstornarVotosDosCandidatos(t *testing.T) {
	c := novoCenario(t)
	ctx := context.Background()
	votos := NewVotoRepository(c.db)

	// Arrange: eleitor vota em um candidato e se abstém no outro cargo
	_, err := votos.Registrar(ctx, c.voto(c.eleitor.ID, c.cargo.ID, ptr(c.candidatoA.ID)))
	require.NoError(t, err)
	_, err = votos.Registrar(ctx, c.voto(c.eleitor.ID, c.outroCargo.ID, nil))
	require.NoError(t, err)

	// Act
	removido, err := NewEleitorRepository(c.db).ExcluirPorEmail(ctx, c.eleitor.Email)
	require.NoError(t, err)

	// Assert
	assert.Equal(t, c.eleitor.ID, removido.ID)
	assert.True(t, removido.JaVotou)
	assert.Equal(t, int64(0), totalDoCandidato(t, c, c.candidatoA.ID))

	restantes, err := votos.ListarPorEleitor(ctx, c.eleitor.ID)
	require.NoError(t, err)
	assert.Empty(t, restantes)

	_, err = NewEleitorRepository(c.db).BuscarPorID(ctx, c.eleitor.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEleitorRepository_ExcluirPorEmail_QuandoEmailDesconhecido_DeveRetornarErrNotFound(t *testing.T) {
	db := setupPostgres(t)

	_, err := NewEleitorRepository(db).ExcluirPorEmail(context.Background(), "ninguem@pamet.org")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
