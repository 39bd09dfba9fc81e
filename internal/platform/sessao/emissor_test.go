package sessao

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcelojr/portal-eleicao/internal/domain"
)

type relogio struct {
	mu sync.Mutex
	t  time.Time
}

func (r *relogio) Agora() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.t
}

func (r *relogio) avancar(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.t = r.t.Add(d)
}

type revogacaoMemoria struct {
	revogados map[string]time.Time
	falha     error
}

func (r *revogacaoMemoria) Revogar(_ context.Context, jti string, expiraEm time.Time) error {
	if r.falha != nil {
		return r.falha
	}
	r.revogados[jti] = expiraEm
	return nil
}

func (r *revogacaoMemoria) Revogado(_ context.Context, jti string) (bool, error) {
	if r.falha != nil {
		return false, r.falha
	}
	_, ok := r.revogados[jti]
	return ok, nil
}

func novoEmissor() (*Emissor, *relogio, *revogacaoMemoria) {
	rel := &relogio{t: time.Now().UTC()}
	rev := &revogacaoMemoria{revogados: map[string]time.Time{}}
	return NewEmissor("chave-de-teste", "portal-eleicao", time.Hour, rev, rel), rel, rev
}

func TestEmissor_EmitirEValidar_DeveDevolverIdentidade(t *testing.T) {
	e, rel, _ := novoEmissor()
	ctx := context.Background()

	token, err := e.Emitir("ident-1")
	require.NoError(t, err)
	assert.WithinDuration(t, rel.Agora().Add(time.Hour), token.ExpiraEm, time.Second)

	claims, err := e.Validar(ctx, token.Valor)
	require.NoError(t, err)
	assert.Equal(t, domain.IdentidadeID("ident-1"), claims.IdentidadeID())
	assert.Equal(t, "portal-eleicao", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
}

func TestEmissor_Emitir_CadaTokenTemJTIProprio(t *testing.T) {
	e, _, _ := novoEmissor()
	ctx := context.Background()

	a, err := e.Emitir("ident-1")
	require.NoError(t, err)
	b, err := e.Emitir("ident-1")
	require.NoError(t, err)

	ca, err := e.Validar(ctx, a.Valor)
	require.NoError(t, err)
	cb, err := e.Validar(ctx, b.Valor)
	require.NoError(t, err)
	assert.NotEqual(t, ca.ID, cb.ID)
}

func TestEmissor_Validar_QuandoExpirado_DeveRecusar(t *testing.T) {
	e, rel, _ := novoEmissor()

	token, err := e.Emitir("ident-1")
	require.NoError(t, err)

	rel.avancar(2 * time.Hour)

	_, err = e.Validar(context.Background(), token.Valor)
	assert.ErrorIs(t, err, domain.ErrNaoAutenticado)
}

func TestEmissor_Validar_QuandoAssinadoComOutraChave_DeveRecusar(t *testing.T) {
	e, rel, _ := novoEmissor()
	outro := NewEmissor("outra-chave", "portal-eleicao", time.Hour, nil, rel)

	token, err := outro.Emitir("ident-1")
	require.NoError(t, err)

	_, err = e.Validar(context.Background(), token.Valor)
	assert.ErrorIs(t, err, domain.ErrNaoAutenticado)
}

func TestEmissor_Validar_QuandoOutroEmissorOuAlgoritmo_DeveRecusar(t *testing.T) {
	e, rel, _ := novoEmissor()
	ctx := context.Background()

	outroEmissor := NewEmissor("chave-de-teste", "intruso", time.Hour, nil, rel)
	token, err := outroEmissor.Emitir("ident-1")
	require.NoError(t, err)
	_, err = e.Validar(ctx, token.Valor)
	assert.ErrorIs(t, err, domain.ErrNaoAutenticado)

	semAssinatura := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "ident-1",
		Issuer:    "portal-eleicao",
		ID:        "jti",
		ExpiresAt: jwt.NewNumericDate(rel.Agora().Add(time.Hour)),
	}})
	valor, err := semAssinatura.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = e.Validar(ctx, valor)
	assert.ErrorIs(t, err, domain.ErrNaoAutenticado)

	_, err = e.Validar(ctx, "lixo")
	assert.ErrorIs(t, err, domain.ErrNaoAutenticado)
}

func TestEmissor_Revogar_DeveInvalidarApenasAquelaSessao(t *testing.T) {
	e, _, rev := novoEmissor()
	ctx := context.Background()

	// Arrange
	sair, err := e.Emitir("ident-1")
	require.NoError(t, err)
	ficar, err := e.Emitir("ident-1")
	require.NoError(t, err)

	// Act
	require.NoError(t, e.Revogar(ctx, sair.Valor))

	// Assert
	_, err = e.Validar(ctx, sair.Valor)
	assert.ErrorIs(t, err, domain.ErrNaoAutenticado)
	_, err = e.Validar(ctx, ficar.Valor)
	assert.NoError(t, err)
	assert.Len(t, rev.revogados, 1)
}

func TestEmissor_Validar_QuandoRevogacaoIndisponivel_DeveFalharFechado(t *testing.T) {
	e, _, rev := novoEmissor()

	token, err := e.Emitir("ident-1")
	require.NoError(t, err)
	rev.falha = errors.New("redis fora")

	_, err = e.Validar(context.Background(), token.Valor)
	assert.ErrorIs(t, err, domain.ErrIndisponivel)
}
