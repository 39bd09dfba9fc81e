package httpapi

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/marcelojr/portal-eleicao/internal/app/auditoria"
	"github.com/marcelojr/portal-eleicao/internal/domain"
)

// CookieSessao guarda o token das páginas HTML.
const CookieSessao = "sessao"

type Autenticador interface {
	Autenticar(ctx context.Context, token string) (domain.Eleitor, error)
}

type chaveEleitor struct{}

func ComEleitor(ctx context.Context, e domain.Eleitor) context.Context {
	return context.WithValue(ctx, chaveEleitor{}, e)
}

// EleitorDe devolve o eleitor autenticado pelo middleware de sessão.
func EleitorDe(ctx context.Context) (domain.Eleitor, bool) {
	e, ok := ctx.Value(chaveEleitor{}).(domain.Eleitor)
	return e, ok
}

// TokenDaRequisicao aceita o header Authorization: Bearer e, sem ele, o cookie de sessão.
func TokenDaRequisicao(r *http.Request) string {
	if valor, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(valor)
	}
	if c, err := r.Cookie(CookieSessao); err == nil {
		return c.Value
	}
	return ""
}

func ipCliente(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Origem anexa IP e user agent ao contexto para a auditoria. Deve rodar depois de middleware.RealIP.
func Origem(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := auditoria.ComOrigem(r.Context(), auditoria.Origem{
			IP:        ipCliente(r),
			UserAgent: r.UserAgent(),
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestLogger registra método, rota, status e duração de cada requisição.
func RequestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			inicio := time.Now()
			next.ServeHTTP(ww, r)

			nivel := slog.LevelInfo
			if ww.Status() >= http.StatusInternalServerError {
				nivel = slog.LevelError
			}
			log.Log(r.Context(), nivel, "requisicao",
				"metodo", r.Method,
				"rota", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duracao_ms", time.Since(inicio).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

// ExigirSessao resolve o token para o perfil do eleitor e recusa a requisição sem sessão válida.
func ExigirSessao(auth Autenticador, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			eleitor, err := auth.Autenticar(r.Context(), TokenDaRequisicao(r))
			if err != nil {
				log.Warn("acesso sem sessao valida", "rota", r.URL.Path, "error", err, "request_id", middleware.GetReqID(r.Context()))
				responderErro(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(ComEleitor(r.Context(), eleitor)))
		})
	}
}

// ExigirAdmin depende de ExigirSessao na mesma cadeia.
func ExigirAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		eleitor, ok := EleitorDe(r.Context())
		if !ok {
			responderErro(w, fmt.Errorf("%w: sessao ausente", domain.ErrNaoAutenticado))
			return
		}
		if !eleitor.Admin {
			responderErro(w, domain.ErrAcessoNegado)
			return
		}
		next.ServeHTTP(w, r)
	})
}
