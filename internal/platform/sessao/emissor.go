// Pacote sessao emite e valida os tokens de sessão (JWT HS256) do portal.
package sessao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/marcelojr/portal-eleicao/internal/domain"
)

// Claims carrega só a identidade; se o eleitor é admin é relido do banco a cada requisição.
type Claims struct {
	jwt.RegisteredClaims
}

func (c Claims) IdentidadeID() domain.IdentidadeID {
	return domain.IdentidadeID(c.Subject)
}

type Token struct {
	Valor    string    `json:"token"`
	ExpiraEm time.Time `json:"expira_em"`
}

// Revogacao guarda os jti de sessões encerradas antes do vencimento.
type Revogacao interface {
	Revogar(ctx context.Context, jti string, expiraEm time.Time) error
	Revogado(ctx context.Context, jti string) (bool, error)
}

type Emissor struct {
	chave     []byte
	emissor   string
	ttl       time.Duration
	revogacao Revogacao
	clock     domain.Clock
}

func NewEmissor(chave, emissor string, ttl time.Duration, revogacao Revogacao, clock domain.Clock) *Emissor {
	return &Emissor{
		chave:     []byte(chave),
		emissor:   emissor,
		ttl:       ttl,
		revogacao: revogacao,
		clock:     clock,
	}
}

func (e *Emissor) Emitir(id domain.IdentidadeID) (Token, error) {
	agora := e.clock.Agora()
	expira := agora.Add(e.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(id),
			Issuer:    e.emissor,
			IssuedAt:  jwt.NewNumericDate(agora),
			ExpiresAt: jwt.NewNumericDate(expira),
			ID:        uuid.NewString(),
		},
	})

	assinado, err := token.SignedString(e.chave)
	if err != nil {
		return Token{}, fmt.Errorf("sessao: falha ao assinar token: %w", err)
	}
	return Token{Valor: assinado, ExpiraEm: expira.Truncate(time.Second)}, nil
}

func (e *Emissor) parse(valor string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(valor, &Claims{}, func(*jwt.Token) (any, error) {
		return e.chave, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(e.emissor),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(e.clock.Agora),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: sessao expirada", domain.ErrNaoAutenticado)
		}
		return nil, fmt.Errorf("%w: token invalido", domain.ErrNaoAutenticado)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject == "" || claims.ID == "" {
		return nil, fmt.Errorf("%w: token invalido", domain.ErrNaoAutenticado)
	}
	return claims, nil
}

// Validar confere assinatura, emissor, validade e revogação. Sem Redis a sessão não é aceita.
func (e *Emissor) Validar(ctx context.Context, valor string) (*Claims, error) {
	claims, err := e.parse(valor)
	if err != nil {
		return nil, err
	}

	if e.revogacao != nil {
		revogado, err := e.revogacao.Revogado(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: sessao: %v", domain.ErrIndisponivel, err)
		}
		if revogado {
			return nil, fmt.Errorf("%w: sessao encerrada", domain.ErrNaoAutenticado)
		}
	}
	return claims, nil
}

// Revogar encerra a sessão até o vencimento natural do token.
func (e *Emissor) Revogar(ctx context.Context, valor string) error {
	claims, err := e.parse(valor)
	if err != nil {
		return err
	}
	if e.revogacao == nil {
		return nil
	}
	if err := e.revogacao.Revogar(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("sessao: revogar: %w", err)
	}
	return nil
}
