package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/marcelojr/portal-eleicao/internal/domain"
)

// resposta é o envelope de todas as respostas da API.
type resposta struct {
	Sucesso bool   `json:"sucesso"`
	Codigo  string `json:"codigo"`
	Erro    string `json:"erro,omitempty"`
	Dados   any    `json:"dados,omitempty"`
}

func responderJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func responderOK(w http.ResponseWriter, status int, dados any) {
	responderJSON(w, status, resposta{Sucesso: true, Codigo: domain.CodigoOK, Dados: dados})
}

func responderErro(w http.ResponseWriter, err error) {
	codigo := domain.Codigo(err)
	msg := err.Error()
	switch codigo {
	case domain.CodigoErroInterno:
		msg = "erro interno"
	case domain.CodigoIndisponivel:
		// A causa traz texto do driver; fica só no log.
		msg = "servico temporariamente indisponivel"
	}
	responderJSON(w, StatusHTTP(err), resposta{Codigo: codigo, Erro: msg})
}

// StatusHTTP traduz os erros do domínio para o status da resposta.
func StatusHTTP(err error) int {
	switch domain.Codigo(err) {
	case domain.CodigoOK:
		return http.StatusOK
	case domain.CodigoDadosInvalidos:
		return http.StatusBadRequest
	case domain.CodigoNaoAutenticado:
		return http.StatusUnauthorized
	case domain.CodigoAcessoNegado:
		return http.StatusForbidden
	case domain.CodigoNaoEncontrado:
		return http.StatusNotFound
	case domain.CodigoVotacaoEncerrada, domain.CodigoVotoDuplicado, domain.CodigoEnvioEmAndamento:
		return http.StatusConflict
	case domain.CodigoLimiteExcedido:
		return http.StatusTooManyRequests
	case domain.CodigoIndisponivel:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
