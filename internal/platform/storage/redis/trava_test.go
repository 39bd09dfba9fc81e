package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcelojr/portal-eleicao/internal/domain"
)

func TestTravaEnvio_Adquirir_QuandoLivre_DeveConcederELiberar(t *testing.T) {
	client, mr := setupRedis(t)
	trava := NewTravaEnvio(client, "trava:voto", 10*time.Second)
	ctx := context.Background()

	// Act
	liberar, err := trava.Adquirir(ctx, "eleitor-1:cargo-1")
	require.NoError(t, err)

	// Assert
	assert.True(t, mr.Exists("trava:voto:eleitor-1:cargo-1"))
	assert.Equal(t, 10*time.Second, mr.TTL("trava:voto:eleitor-1:cargo-1"))

	liberar()
	assert.False(t, mr.Exists("trava:voto:eleitor-1:cargo-1"))
}

func TestTravaEnvio_Adquirir_QuandoOcupada_DeveRetornarEnvioEmAndamento(t *testing.T) {
	client, _ := setupRedis(t)
	trava := NewTravaEnvio(client, "trava:voto", 10*time.Second)
	ctx := context.Background()

	// Arrange
	liberar, err := trava.Adquirir(ctx, "eleitor-1")
	require.NoError(t, err)
	defer liberar()

	// Act
	_, err = trava.Adquirir(ctx, "eleitor-1")

	// Assert
	assert.ErrorIs(t, err, domain.ErrEnvioEmAndamento)

	outra, err := trava.Adquirir(ctx, "eleitor-2")
	require.NoError(t, err)
	outra()
}

func TestTravaEnvio_Liberar_QuandoTravaExpirouEFoiRetomada_NaoDeveApagarADoOutro(t *testing.T) {
	client, mr := setupRedis(t)
	trava := NewTravaEnvio(client, "trava:voto", time.Second)
	ctx := context.Background()

	// Arrange: a primeira trava expira e outro envio assume
	liberarAntiga, err := trava.Adquirir(ctx, "eleitor-1")
	require.NoError(t, err)
	mr.FastForward(2 * time.Second)

	liberarNova, err := trava.Adquirir(ctx, "eleitor-1")
	require.NoError(t, err)
	defer liberarNova()

	// Act
	liberarAntiga()

	// Assert
	assert.True(t, mr.Exists("trava:voto:eleitor-1"))
	_, err = trava.Adquirir(ctx, "eleitor-1")
	assert.ErrorIs(t, err, domain.ErrEnvioEmAndamento)
}
