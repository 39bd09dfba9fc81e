// Pacote identidade guarda as credenciais de login com hash bcrypt.
package identidade

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/marcelojr/portal-eleicao/internal/domain"
	"github.com/marcelojr/portal-eleicao/internal/platform/ids"
)

const SenhaMinima = 6

// hashFalso é comparado quando o e-mail não existe, para o tempo de resposta não revelar cadastros.
var hashFalso, _ = bcrypt.GenerateFromPassword([]byte("portal-eleicao"), bcrypt.MinCost)

// Provedor implementa domain.ProvedorIdentidade sobre o repositório de identidades.
type Provedor struct {
	repo  domain.IdentidadeRepository
	clock domain.Clock
	gen   *ids.Generator
	custo int
}

func NewProvedor(repo domain.IdentidadeRepository, clock domain.Clock, custo int) *Provedor {
	if custo < bcrypt.MinCost || custo > bcrypt.MaxCost {
		custo = bcrypt.DefaultCost
	}
	return &Provedor{
		repo:  repo,
		clock: clock,
		gen:   ids.DefaultGenerator(),
		custo: custo,
	}
}

// NormalizarEmail é aplicada em toda entrada de e-mail, no cadastro e no login.
func NormalizarEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (p *Provedor) hash(senha string) (string, error) {
	if len(senha) < SenhaMinima {
		return "", fmt.Errorf("%w: senha deve ter ao menos %d caracteres", domain.ErrDadosInvalidos, SenhaMinima)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(senha), p.custo)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", fmt.Errorf("%w: senha muito longa", domain.ErrDadosInvalidos)
		}
		return "", fmt.Errorf("identidade: falha ao gerar hash: %w", err)
	}
	return string(hashed), nil
}

func (p *Provedor) Criar(ctx context.Context, email, senha string) (domain.Identidade, error) {
	email = NormalizarEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return domain.Identidade{}, fmt.Errorf("%w: e-mail invalido", domain.ErrDadosInvalidos)
	}

	hashed, err := p.hash(senha)
	if err != nil {
		return domain.Identidade{}, err
	}

	agora := p.clock.Agora()
	ident := domain.Identidade{
		ID:           p.gen.Identidade(),
		Email:        email,
		SenhaHash:    hashed,
		CriadoEm:     agora,
		AtualizadoEm: agora,
	}
	if err := p.repo.Criar(ctx, ident); err != nil {
		return domain.Identidade{}, fmt.Errorf("identidade: criar: %w", err)
	}
	return ident, nil
}

// Atualizar troca o e-mail quando informado e a senha só quando não vier em branco.
func (p *Provedor) Atualizar(ctx context.Context, id domain.IdentidadeID, email, senha string) error {
	atual, err := p.repo.BuscarPorID(ctx, id)
	if err != nil {
		return fmt.Errorf("identidade: atualizar: %w", err)
	}

	if email = NormalizarEmail(email); email != "" {
		atual.Email = email
	}
	if strings.TrimSpace(senha) != "" {
		hashed, err := p.hash(senha)
		if err != nil {
			return err
		}
		atual.SenhaHash = hashed
	}
	atual.AtualizadoEm = p.clock.Agora()

	if err := p.repo.Atualizar(ctx, atual); err != nil {
		return fmt.Errorf("identidade: atualizar: %w", err)
	}
	return nil
}

func (p *Provedor) Excluir(ctx context.Context, id domain.IdentidadeID) error {
	if err := p.repo.Excluir(ctx, id); err != nil {
		return fmt.Errorf("identidade: excluir: %w", err)
	}
	return nil
}

func (p *Provedor) BuscarPorEmail(ctx context.Context, email string) (domain.Identidade, error) {
	ident, err := p.repo.BuscarPorEmail(ctx, NormalizarEmail(email))
	if err != nil {
		return domain.Identidade{}, fmt.Errorf("identidade: buscar: %w", err)
	}
	return ident, nil
}

func (p *Provedor) Autenticar(ctx context.Context, email, senha string) (domain.Identidade, error) {
	ident, err := p.repo.BuscarPorEmail(ctx, NormalizarEmail(email))
	if errors.Is(err, domain.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(hashFalso, []byte(senha))
		return domain.Identidade{}, domain.ErrNaoAutenticado
	}
	if err != nil {
		return domain.Identidade{}, fmt.Errorf("identidade: autenticar: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(ident.SenhaHash), []byte(senha)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return domain.Identidade{}, domain.ErrNaoAutenticado
		}
		return domain.Identidade{}, fmt.Errorf("identidade: verificar senha: %w", err)
	}
	return ident, nil
}

var _ domain.ProvedorIdentidade = (*Provedor)(nil)
