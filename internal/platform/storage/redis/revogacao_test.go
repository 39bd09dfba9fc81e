package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRevogacao_Revogar_DeveMarcarTokenAteExpirar(t *testing.T) {
	client, mr := setupRedis(t)
	rev := NewRevogacao(client, "sessao:revogada")
	ctx := context.Background()

	// Act
	require.NoError(t, rev.Revogar(ctx, "jti-1", time.Now().Add(time.Hour)))

	// Assert
	revogado, err := rev.Revogado(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revogado)

	outro, err := rev.Revogado(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, outro)

	mr.FastForward(2 * time.Hour)
	revogado, err = rev.Revogado(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revogado)
}

func TestRevogacao_Revogar_QuandoTokenJaExpirado_NaoDeveGravar(t *testing.T) {
	client, mr := setupRedis(t)
	rev := NewRevogacao(client, "sessao:revogada")

	require.NoError(t, rev.Revogar(context.Background(), "jti-velho", time.Now().Add(-time.Minute)))

	assert.Empty(t, mr.Keys())
}
