package httpapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/marcelojr/portal-eleicao/internal/app/apuracao"
	"github.com/marcelojr/portal-eleicao/internal/app/gestao"
	"github.com/marcelojr/portal-eleicao/internal/domain"
)

type Gestao interface {
	CriarEleitor(ctx context.Context, ator domain.Eleitor, novo gestao.NovoEleitor) (domain.Eleitor, error)
	AtualizarEleitor(ctx context.Context, ator domain.Eleitor, id domain.EleitorID, upd gestao.AtualizacaoEleitor) (domain.Eleitor, error)
	ExcluirEleitor(ctx context.Context, ator domain.Eleitor, email string) error
	CriarCargo(ctx context.Context, ator domain.Eleitor, novo gestao.NovoCargo) (domain.Cargo, error)
	CriarCandidato(ctx context.Context, ator domain.Eleitor, novo gestao.NovoCandidato) (domain.Candidato, error)
	AtualizarCandidato(ctx context.Context, ator domain.Eleitor, id domain.CandidatoID, upd gestao.AtualizacaoCandidato) (domain.Candidato, error)
	ExcluirCandidato(ctx context.Context, ator domain.Eleitor, id domain.CandidatoID) error
	AtualizarConfiguracao(ctx context.Context, ator domain.Eleitor, ajuste gestao.AjusteConfiguracao) (domain.Configuracao, error)
	AlternarVotacao(ctx context.Context, ator domain.Eleitor) (domain.Configuracao, error)
	LimparVotos(ctx context.Context, ator domain.Eleitor) (domain.VerificacaoLimpeza, error)
	Painel(ctx context.Context) domain.Painel
	Resultados(ctx context.Context) apuracao.ResultadoEleicao
	Auditoria(ctx context.Context, limite int) ([]domain.EventoAuditoria, error)
}

func (a *API) registrarAdmin(r chi.Router) {
	r.Get("/painel", a.painel)
	r.Get("/resultados", a.resultadosAdmin)
	r.Get("/auditoria", a.auditoria)
	r.Post("/votos/limpar", a.limparVotos)

	r.Post("/eleitores", a.criarEleitor)
	r.Put("/eleitores/{id}", a.atualizarEleitor)
	r.Delete("/eleitores/{email}", a.excluirEleitor)

	r.Post("/cargos", a.criarCargo)
	r.Post("/candidatos", a.criarCandidato)
	r.Put("/candidatos/{id}", a.atualizarCandidato)
	r.Delete("/candidatos/{id}", a.excluirCandidato)

	r.Put("/configuracao", a.atualizarConfiguracao)
	r.Post("/configuracao/alternar", a.alternarVotacao)
}

func ator(r *http.Request) domain.Eleitor {
	e, _ := EleitorDe(r.Context())
	return e
}

// responder fecha os handlers administrativos: erro no envelope ou dados com o status pedido.
func (a *API) responder(w http.ResponseWriter, r *http.Request, status int, dados any, err error) {
	if err != nil {
		a.logger.Warn("operacao administrativa recusada", "rota", r.URL.Path, "ator", ator(r).Email, "codigo", domain.Codigo(err))
		responderErro(w, err)
		return
	}
	responderOK(w, status, dados)
}

func (a *API) painel(w http.ResponseWriter, r *http.Request) {
	responderOK(w, http.StatusOK, a.gestao.Painel(r.Context()))
}

func (a *API) resultadosAdmin(w http.ResponseWriter, r *http.Request) {
	responderOK(w, http.StatusOK, a.gestao.Resultados(r.Context()))
}

func (a *API) auditoria(w http.ResponseWriter, r *http.Request) {
	limite, _ := strconv.Atoi(r.URL.Query().Get("limite"))
	eventos, err := a.gestao.Auditoria(r.Context(), limite)
	a.responder(w, r, http.StatusOK, eventos, err)
}

func (a *API) limparVotos(w http.ResponseWriter, r *http.Request) {
	v, err := a.gestao.LimparVotos(r.Context(), ator(r))
	a.responder(w, r, http.StatusOK, v, err)
}

func (a *API) criarEleitor(w http.ResponseWriter, r *http.Request) {
	var req gestao.NovoEleitor
	if err := decodificar(r, &req); err != nil {
		responderErro(w, err)
		return
	}
	e, err := a.gestao.CriarEleitor(r.Context(), ator(r), req)
	a.responder(w, r, http.StatusCreated, e, err)
}

func (a *API) atualizarEleitor(w http.ResponseWriter, r *http.Request) {
	var req gestao.AtualizacaoEleitor
	if err := decodificar(r, &req); err != nil {
		responderErro(w, err)
		return
	}
	id := domain.EleitorID(chi.URLParam(r, "id"))
	e, err := a.gestao.AtualizarEleitor(r.Context(), ator(r), id, req)
	a.responder(w, r, http.StatusOK, e, err)
}

func (a *API) excluirEleitor(w http.ResponseWriter, r *http.Request) {
	err := a.gestao.ExcluirEleitor(r.Context(), ator(r), chi.URLParam(r, "email"))
	a.responder(w, r, http.StatusOK, nil, err)
}

func (a *API) criarCargo(w http.ResponseWriter, r *http.Request) {
	var req gestao.NovoCargo
	if err := decodificar(r, &req); err != nil {
		responderErro(w, err)
		return
	}
	c, err := a.gestao.CriarCargo(r.Context(), ator(r), req)
	a.responder(w, r, http.StatusCreated, c, err)
}

func (a *API) criarCandidato(w http.ResponseWriter, r *http.Request) {
	var req gestao.NovoCandidato
	if err := decodificar(r, &req); err != nil {
		responderErro(w, err)
		return
	}
	c, err := a.gestao.CriarCandidato(r.Context(), ator(r), req)
	a.responder(w, r, http.StatusCreated, c, err)
}

func (a *API) atualizarCandidato(w http.ResponseWriter, r *http.Request) {
	var req gestao.AtualizacaoCandidato
	if err := decodificar(r, &req); err != nil {
		responderErro(w, err)
		return
	}
	id := domain.CandidatoID(chi.URLParam(r, "id"))
	c, err := a.gestao.AtualizarCandidato(r.Context(), ator(r), id, req)
	a.responder(w, r, http.StatusOK, c, err)
}

func (a *API) excluirCandidato(w http.ResponseWriter, r *http.Request) {
	err := a.gestao.ExcluirCandidato(r.Context(), ator(r), domain.CandidatoID(chi.URLParam(r, "id")))
	a.responder(w, r, http.StatusOK, nil, err)
}

func (a *API) atualizarConfiguracao(w http.ResponseWriter, r *http.Request) {
	var req gestao.AjusteConfiguracao
	if err := decodificar(r, &req); err != nil {
		responderErro(w, err)
		return
	}
	cfg, err := a.gestao.AtualizarConfiguracao(r.Context(), ator(r), req)
	a.responder(w, r, http.StatusOK, cfg, err)
}

func (a *API) alternarVotacao(w http.ResponseWriter, r *http.Request) {
	cfg, err := a.gestao.AlternarVotacao(r.Context(), ator(r))
	a.responder(w, r, http.StatusOK, cfg, err)
}
