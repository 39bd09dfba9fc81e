package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodigo_DeveMapearCadaSentinela(t *testing.T) {
	casos := []struct {
		err      error
		esperado string
	}{
		{nil, CodigoOK},
		{ErrVotacaoEncerrada, CodigoVotacaoEncerrada},
		{ErrVotoDuplicado, CodigoVotoDuplicado},
		{fmt.Errorf("%w: cargo inativo", ErrDadosInvalidos), CodigoDadosInvalidos},
		{ErrDuplicado, CodigoDadosInvalidos},
		{ErrEnvioEmAndamento, CodigoEnvioEmAndamento},
		{ErrNaoAutenticado, CodigoNaoAutenticado},
		{ErrAcessoNegado, CodigoAcessoNegado},
		{ErrNotFound, CodigoNaoEncontrado},
		{ErrIndisponivel, CodigoIndisponivel},
		{ErrLimiteExcedido, CodigoLimiteExcedido},
		{errors.New("qualquer"), CodigoErroInterno},
	}

	for _, c := range casos {
		assert.Equal(t, c.esperado, Codigo(c.err), "erro %v", c.err)
	}
}

func TestIndisponivel_DevePreservarErrosDeNegocio(t *testing.T) {
	assert.Nil(t, Indisponivel(nil))

	negocio := fmt.Errorf("gorm voto: %w", ErrVotoDuplicado)
	assert.Same(t, negocio, Indisponivel(negocio))

	infra := errors.New("dial tcp: connection refused")
	err := Indisponivel(infra)
	assert.ErrorIs(t, err, ErrIndisponivel)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestCalcularEstatisticas_DeveSepararAdmins(t *testing.T) {
	eleitores := []Eleitor{
		{ID: "1", JaVotou: true},
		{ID: "2"},
		{ID: "3", Admin: true, JaVotou: true},
	}

	est := CalcularEstatisticas(eleitores, OrigemConsultas)

	assert.Equal(t, EstatisticasPainel{TotalEleitores: 2, TotalVotaram: 1, TotalAdmins: 1, Origem: OrigemConsultas}, est)
}

func TestVerificacaoLimpeza_Zerada(t *testing.T) {
	assert.True(t, VerificacaoLimpeza{}.Zerada())
	assert.False(t, VerificacaoLimpeza{SomaVotosCandidatos: 1}.Zerada())
}

func TestNomeCompleto(t *testing.T) {
	assert.Equal(t, "Maria Baylon", Eleitor{Nome: "Maria", Sobrenome: "Baylon"}.NomeCompleto())
	assert.Equal(t, "Ivy", Candidato{Nome: "Ivy"}.NomeCompleto())
}

func TestCatalogo_CandidatosDoCargo(t *testing.T) {
	cat := Catalogo{Candidatos: []Candidato{{ID: "a", CargoID: "p"}, {ID: "b", CargoID: "s"}, {ID: "c", CargoID: "p"}}}

	lista := cat.CandidatosDoCargo("p")

	assert.Len(t, lista, 2)
	assert.Equal(t, CandidatoID("a"), lista[0].ID)
	assert.Equal(t, CandidatoID("c"), lista[1].ID)
	assert.Empty(t, cat.CandidatosDoCargo("x"))
}

func TestVoto_Abstencao(t *testing.T) {
	id := CandidatoID("a")
	assert.True(t, Voto{}.Abstencao())
	assert.False(t, Voto{CandidatoID: &id}.Abstencao())
}
