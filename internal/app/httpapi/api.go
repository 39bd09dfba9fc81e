// Pacote httpapi expõe a API JSON do portal e traduz requisições HTTP para os serviços de eleição e gestão.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/marcelojr/portal-eleicao/internal/app/apuracao"
	"github.com/marcelojr/portal-eleicao/internal/app/eleicao"
	"github.com/marcelojr/portal-eleicao/internal/domain"
)

type Eleicao interface {
	Autenticador
	Entrar(ctx context.Context, email, senha string) (eleicao.Sessao, error)
	Sair(ctx context.Context, token string) error
	Cedula(ctx context.Context, eleitor domain.Eleitor) domain.Cedula
	Votar(ctx context.Context, eleitor domain.Eleitor, cargoID domain.CargoID, candidatoID *domain.CandidatoID) (domain.Voto, error)
	Resultados(ctx context.Context, eleitor domain.Eleitor) (apuracao.ResultadoEleicao, error)
}

// API empacota os handlers ligados aos serviços e ao logger.
type API struct {
	eleicao Eleicao
	gestao  Gestao
	logger  *slog.Logger
}

func New(eleicao Eleicao, gestao Gestao, logger *slog.Logger) *API {
	return &API{eleicao: eleicao, gestao: gestao, logger: logger}
}

func (a *API) Register(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", a.entrar)

		r.Group(func(r chi.Router) {
			r.Use(ExigirSessao(a.eleicao, a.logger))

			r.Post("/auth/logout", a.sair)
			r.Get("/me", a.perfil)
			r.Get("/cedula", a.cedula)
			r.Post("/votos", a.votar)
			r.Get("/resultados", a.resultados)

			r.Route("/admin", func(r chi.Router) {
				r.Use(ExigirAdmin)
				a.registrarAdmin(r)
			})
		})
	})
}

func decodificar(r *http.Request, destino any) error {
	if err := json.NewDecoder(r.Body).Decode(destino); err != nil {
		return fmt.Errorf("%w: payload invalido", domain.ErrDadosInvalidos)
	}
	return nil
}

type loginRequest struct {
	Email string `json:"email"`
	Senha string `json:"senha"`
}

func (a *API) entrar(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodificar(r, &req); err != nil {
		responderErro(w, err)
		return
	}

	s, err := a.eleicao.Entrar(r.Context(), req.Email, req.Senha)
	if err != nil {
		a.logger.Warn("login recusado", "email", req.Email, "codigo", domain.Codigo(err))
		responderErro(w, err)
		return
	}
	responderOK(w, http.StatusOK, s)
}

func (a *API) sair(w http.ResponseWriter, r *http.Request) {
	if err := a.eleicao.Sair(r.Context(), TokenDaRequisicao(r)); err != nil {
		responderErro(w, err)
		return
	}
	responderOK(w, http.StatusOK, nil)
}

func (a *API) perfil(w http.ResponseWriter, r *http.Request) {
	eleitor, _ := EleitorDe(r.Context())
	responderOK(w, http.StatusOK, eleitor)
}

func (a *API) cedula(w http.ResponseWriter, r *http.Request) {
	eleitor, _ := EleitorDe(r.Context())
	responderOK(w, http.StatusOK, a.eleicao.Cedula(r.Context(), eleitor))
}

type votoRequest struct {
	CargoID     string  `json:"cargo_id"`
	CandidatoID *string `json:"candidato_id"`
}

func (a *API) votar(w http.ResponseWriter, r *http.Request) {
	var req votoRequest
	if err := decodificar(r, &req); err != nil {
		responderErro(w, err)
		return
	}

	var candidato *domain.CandidatoID
	if req.CandidatoID != nil {
		id := domain.CandidatoID(*req.CandidatoID)
		candidato = &id
	}

	eleitor, _ := EleitorDe(r.Context())
	voto, err := a.eleicao.Votar(r.Context(), eleitor, domain.CargoID(req.CargoID), candidato)
	if err != nil {
		a.logger.Warn("voto recusado", "eleitor_id", eleitor.ID, "cargo_id", req.CargoID, "codigo", domain.Codigo(err), "error", err)
		responderErro(w, err)
		return
	}
	responderOK(w, http.StatusCreated, voto)
}

func (a *API) resultados(w http.ResponseWriter, r *http.Request) {
	eleitor, _ := EleitorDe(r.Context())
	res, err := a.eleicao.Resultados(r.Context(), eleitor)
	if err != nil {
		responderErro(w, err)
		return
	}
	responderOK(w, http.StatusOK, res)
}
