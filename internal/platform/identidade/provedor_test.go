package identidade

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/marcelojr/portal-eleicao/internal/domain"
)

type relogioFixo struct{ t time.Time }

func (r relogioFixo) Agora() time.Time { return r.t }

type repoMemoria struct {
	mu      sync.Mutex
	porID   map[domain.IdentidadeID]domain.Identidade
	falhaEm error
}

func novoRepo() *repoMemoria {
	return &repoMemoria{porID: map[domain.IdentidadeID]domain.Identidade{}}
}

func (r *repoMemoria) Criar(_ context.Context, i domain.Identidade) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existente := range r.porID {
		if existente.Email == i.Email {
			return domain.ErrDuplicado
		}
	}
	r.porID[i.ID] = i
	return nil
}

func (r *repoMemoria) Atualizar(_ context.Context, i domain.Identidade) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.porID[i.ID]; !ok {
		return domain.ErrNotFound
	}
	r.porID[i.ID] = i
	return nil
}

func (r *repoMemoria) Excluir(_ context.Context, id domain.IdentidadeID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.porID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.porID, id)
	return nil
}

func (r *repoMemoria) BuscarPorID(_ context.Context, id domain.IdentidadeID) (domain.Identidade, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.porID[id]
	if !ok {
		return domain.Identidade{}, domain.ErrNotFound
	}
	return i, nil
}

func (r *repoMemoria) BuscarPorEmail(_ context.Context, email string) (domain.Identidade, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.falhaEm != nil {
		return domain.Identidade{}, r.falhaEm
	}
	for _, i := range r.porID {
		if i.Email == email {
			return i, nil
		}
	}
	return domain.Identidade{}, domain.ErrNotFound
}

func novoProvedor() (*Provedor, *repoMemoria) {
	repo := novoRepo()
	return NewProvedor(repo, relogioFixo{t: time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)}, bcrypt.MinCost), repo
}

func TestProvedor_Criar_DeveNormalizarEmailEGuardarApenasHash(t *testing.T) {
	p, repo := novoProvedor()

	ident, err := p.Criar(context.Background(), "  Maria@PAMET.org ", "segredo123")
	require.NoError(t, err)

	salvo := repo.porID[ident.ID]
	assert.Equal(t, "maria@pamet.org", salvo.Email)
	assert.NotEqual(t, "segredo123", salvo.SenhaHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(salvo.SenhaHash), []byte("segredo123")))
	assert.Equal(t, time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC), salvo.CriadoEm)
}

func TestProvedor_Criar_QuandoDadosInvalidos_DeveRecusar(t *testing.T) {
	p, repo := novoProvedor()
	ctx := context.Background()

	_, err := p.Criar(ctx, "sem-arroba", "segredo123")
	assert.ErrorIs(t, err, domain.ErrDadosInvalidos)

	_, err = p.Criar(ctx, "maria@pamet.org", "123")
	assert.ErrorIs(t, err, domain.ErrDadosInvalidos)

	assert.Empty(t, repo.porID)
}

func TestProvedor_Criar_QuandoEmailJaCadastrado_DevePropagarDuplicado(t *testing.T) {
	p, _ := novoProvedor()
	ctx := context.Background()

	_, err := p.Criar(ctx, "maria@pamet.org", "segredo123")
	require.NoError(t, err)

	_, err = p.Criar(ctx, "MARIA@pamet.org", "outrasenha")
	assert.ErrorIs(t, err, domain.ErrDuplicado)
}

func TestProvedor_Autenticar(t *testing.T) {
	p, repo := novoProvedor()
	ctx := context.Background()

	criada, err := p.Criar(ctx, "maria@pamet.org", "segredo123")
	require.NoError(t, err)

	t.Run("credenciais corretas", func(t *testing.T) {
		ident, err := p.Autenticar(ctx, "MARIA@pamet.org", "segredo123")
		require.NoError(t, err)
		assert.Equal(t, criada.ID, ident.ID)
	})

	t.Run("senha errada", func(t *testing.T) {
		_, err := p.Autenticar(ctx, "maria@pamet.org", "errada")
		assert.ErrorIs(t, err, domain.ErrNaoAutenticado)
	})

	t.Run("email desconhecido", func(t *testing.T) {
		_, err := p.Autenticar(ctx, "ninguem@pamet.org", "segredo123")
		assert.ErrorIs(t, err, domain.ErrNaoAutenticado)
	})

	t.Run("falha do repositorio nao vira credencial invalida", func(t *testing.T) {
		repo.falhaEm = errors.New("conexao recusada")
		defer func() { repo.falhaEm = nil }()

		_, err := p.Autenticar(ctx, "maria@pamet.org", "segredo123")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrNaoAutenticado)
	})
}

func TestProvedor_Atualizar_QuandoSenhaEmBranco_DeveManterSenhaAtual(t *testing.T) {
	p, _ := novoProvedor()
	ctx := context.Background()

	criada, err := p.Criar(ctx, "maria@pamet.org", "segredo123")
	require.NoError(t, err)

	// Act
	require.NoError(t, p.Atualizar(ctx, criada.ID, "maria.b@pamet.org", "   "))

	// Assert
	_, err = p.Autenticar(ctx, "maria.b@pamet.org", "segredo123")
	assert.NoError(t, err)
	_, err = p.Autenticar(ctx, "maria@pamet.org", "segredo123")
	assert.ErrorIs(t, err, domain.ErrNaoAutenticado)
}

func TestProvedor_Atualizar_QuandoSenhaInformada_DeveTrocarSenha(t *testing.T) {
	p, _ := novoProvedor()
	ctx := context.Background()

	criada, err := p.Criar(ctx, "maria@pamet.org", "segredo123")
	require.NoError(t, err)

	require.NoError(t, p.Atualizar(ctx, criada.ID, "", "novasenha"))

	_, err = p.Autenticar(ctx, "maria@pamet.org", "novasenha")
	assert.NoError(t, err)
	_, err = p.Autenticar(ctx, "maria@pamet.org", "segredo123")
	assert.ErrorIs(t, err, domain.ErrNaoAutenticado)
}

func TestProvedor_AtualizarEExcluir_QuandoInexistente_DeveRetornarErrNotFound(t *testing.T) {
	p, _ := novoProvedor()
	ctx := context.Background()

	assert.ErrorIs(t, p.Atualizar(ctx, "nao-existe", "x@pamet.org", ""), domain.ErrNotFound)
	assert.ErrorIs(t, p.Excluir(ctx, "nao-existe"), domain.ErrNotFound)
}

func TestProvedor_BuscarPorEmail_DeveNormalizar(t *testing.T) {
	p, _ := novoProvedor()
	ctx := context.Background()
	criada, err := p.Criar(ctx, "maria@pamet.org", "segredo123")
	require.NoError(t, err)

	ident, err := p.BuscarPorEmail(ctx, " MARIA@pamet.org ")
	require.NoError(t, err)
	assert.Equal(t, criada.ID, ident.ID)

	_, err = p.BuscarPorEmail(ctx, "ninguem@pamet.org")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
