package web

// Pacote web centraliza as páginas HTML (SSR) usadas pelos eleitores: login, cédula e resultados.

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"

	"github.com/marcelojr/portal-eleicao/internal/app/apuracao"
	"github.com/marcelojr/portal-eleicao/internal/app/httpapi"
	"github.com/marcelojr/portal-eleicao/internal/domain"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

// valorAbstencao é o candidato_id enviado pelo formulário quando o eleitor se abstém.
const valorAbstencao = "abstencao"

// Frontend renderiza os templates Go das telas de login, cédula e resultados.
type Frontend struct {
	templates    *template.Template
	eleicao      httpapi.Eleicao
	cookieSeguro bool
	log          *slog.Logger
}

// New carrega os templates embutidos e registra as dependências necessárias.
func New(eleicao httpapi.Eleicao, cookieSeguro bool, log *slog.Logger) (*Frontend, error) {
	if eleicao == nil {
		return nil, fmt.Errorf("frontend: serviço de eleição inexistente")
	}
	tmpl, err := template.ParseFS(templateFS,
		"templates/layout.gohtml",
		"templates/login.gohtml",
		"templates/cedula.gohtml",
		"templates/resultados.gohtml",
	)
	if err != nil {
		return nil, err
	}

	for _, name := range []string{"login_body", "cedula_body", "resultados_body", "layout"} {
		if tmpl.Lookup(name) == nil {
			return nil, fmt.Errorf("frontend: template %s não encontrado", name)
		}
	}

	return &Frontend{templates: tmpl, eleicao: eleicao, cookieSeguro: cookieSeguro, log: log}, nil
}

// Register expõe as rotas HTML no mesmo router da API.
func (f *Frontend) Register(r chi.Router) {
	r.Get("/", f.handleRoot)
	r.Get("/login", f.handleLogin)
	r.Post("/login", f.handleLogin)
	r.Post("/sair", f.handleSair)
	r.Get("/cedula", f.handleCedula)
	r.Post("/cedula", f.handleCedula)
	r.Get("/resultados", f.handleResultados)
}

func (f *Frontend) handleRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/cedula", http.StatusFound)
}

func (f *Frontend) handleLogin(w http.ResponseWriter, r *http.Request) {
	data := loginPageData{}

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			data.Error = "Não consegui ler os dados enviados. Tente novamente."
			f.render(w, "login_body", page{}, data)
			return
		}
		data.Email = strings.TrimSpace(r.PostFormValue("email"))

		s, err := f.eleicao.Entrar(r.Context(), data.Email, r.PostFormValue("senha"))
		if err == nil {
			http.SetCookie(w, &http.Cookie{
				Name:     httpapi.CookieSessao,
				Value:    s.Token.Valor,
				Path:     "/",
				Expires:  s.Token.ExpiraEm,
				HttpOnly: true,
				Secure:   f.cookieSeguro,
				SameSite: http.SameSiteLaxMode,
			})
			http.Redirect(w, r, "/cedula", http.StatusSeeOther)
			return
		}
		f.log.Warn("login pela pagina recusado", "email", data.Email, "codigo", domain.Codigo(err))
		data.Error = translateLoginError(err)
	}

	f.render(w, "login_body", page{}, data)
}

func (f *Frontend) handleSair(w http.ResponseWriter, r *http.Request) {
	if token := httpapi.TokenDaRequisicao(r); token != "" {
		if err := f.eleicao.Sair(r.Context(), token); err != nil {
			f.log.Warn("falha ao revogar sessao", "error", err)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     httpapi.CookieSessao,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   f.cookieSeguro,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// eleitorDaSessao redireciona para o login quando não há sessão válida.
func (f *Frontend) eleitorDaSessao(w http.ResponseWriter, r *http.Request) (domain.Eleitor, bool) {
	eleitor, err := f.eleicao.Autenticar(r.Context(), httpapi.TokenDaRequisicao(r))
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return domain.Eleitor{}, false
	}
	return eleitor, true
}

func (f *Frontend) handleCedula(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	eleitor, ok := f.eleitorDaSessao(w, r)
	if !ok {
		return
	}

	var erroVoto string
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			erroVoto = "Não consegui ler os dados enviados. Tente novamente."
		} else {
			cargoID := domain.CargoID(strings.TrimSpace(r.PostFormValue("cargo_id")))
			escolha := strings.TrimSpace(r.PostFormValue("candidato_id"))

			var candidato *domain.CandidatoID
			if escolha != valorAbstencao {
				id := domain.CandidatoID(escolha)
				candidato = &id
			}

			if cargoID == "" || escolha == "" {
				erroVoto = "Selecione um candidato ou a abstenção antes de votar."
			} else if _, err := f.eleicao.Votar(ctx, eleitor, cargoID, candidato); err != nil {
				erroVoto = translateVoteError(err)
			} else {
				http.Redirect(w, r, "/cedula?status=ok", http.StatusSeeOther)
				return
			}
		}
	}

	cedula := f.eleicao.Cedula(ctx, eleitor)
	data := makeCedulaPage(cedula)
	data.Error = erroVoto
	if r.URL.Query().Get("status") == "ok" && erroVoto == "" {
		data.Message = "Voto registrado com sucesso!"
	}

	f.render(w, "cedula_body", page{Eleitor: eleitor.NomeCompleto(), Degradado: cedula.Modo == domain.ModoDegradado}, data)
}

func (f *Frontend) handleResultados(w http.ResponseWriter, r *http.Request) {
	eleitor, ok := f.eleitorDaSessao(w, r)
	if !ok {
		return
	}

	p := page{Eleitor: eleitor.NomeCompleto()}
	res, err := f.eleicao.Resultados(r.Context(), eleitor)
	if err != nil {
		data := resultadosPageData{Error: translateResultadosError(err)}
		f.render(w, "resultados_body", p, data)
		return
	}

	p.Degradado = res.Modo == domain.ModoDegradado
	f.render(w, "resultados_body", p, makeResultadosPage(res))
}

// page é o que o layout precisa além do corpo já renderizado.
type page struct {
	Title     string
	Content   template.HTML
	Eleitor   string
	Degradado bool
}

func (f *Frontend) render(w http.ResponseWriter, tmpl string, p page, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	var content strings.Builder
	if err := f.templates.ExecuteTemplate(&content, tmpl, data); err != nil {
		f.log.Error("falha ao montar pagina", "template", tmpl, "error", err)
		http.Error(w, "erro ao montar a página", http.StatusInternalServerError)
		return
	}

	p.Title = pageTitle(tmpl)
	p.Content = template.HTML(content.String())

	if err := f.templates.ExecuteTemplate(w, "layout", p); err != nil {
		f.log.Error("falha ao renderizar layout", "template", tmpl, "error", err)
	}
}

func pageTitle(body string) string {
	switch body {
	case "login_body":
		return "Entrar"
	case "cedula_body":
		return "Cédula"
	case "resultados_body":
		return "Resultados"
	default:
		return "Portal de Eleição"
	}
}

type loginPageData struct {
	Email string
	Error string
}

type cedulaPageData struct {
	Titulo     string
	Aberta     bool
	Periodo    string
	Atualizada string
	Progresso  string
	Concluida  bool
	Aptos      string
	Cargos     []cargoView
	Message    string
	Error      string
}

type cargoView struct {
	ID                string
	Titulo            string
	Descricao         string
	Votado            bool
	Escolha           string
	TotalDisplay      string
	AbstencoesDisplay string
	Candidatos        []candidatoView
}

type candidatoView struct {
	ID           string
	Nome         string
	Plataforma   string
	FotoURL      string
	VotosDisplay string
}

type resultadosPageData struct {
	Titulo string
	Aptos  string
	Cargos []resultadoCargoView
	Error  string
}

type resultadoCargoView struct {
	Titulo            string
	TotalDisplay      string
	AbstencoesDisplay string
	Participacao      string
	Vencedor          string
	Empate            bool
	Candidatos        []resultadoCandidatoView
}

type resultadoCandidatoView struct {
	Posicao      int
	Nome         string
	VotosDisplay string
	Percent      string
}

func makeCedulaPage(c domain.Cedula) cedulaPageData {
	data := cedulaPageData{
		Titulo:    c.Configuracao.Titulo,
		Aberta:    c.Configuracao.VotacaoAberta,
		Periodo:   formatPeriodo(c.Configuracao.InicioVotacao, c.Configuracao.FimVotacao),
		Progresso: fmt.Sprintf("%d de %d", c.VotosDoEleitor, len(c.Cargos)),
		Concluida: c.Concluida,
		Aptos:     displayInt(c.EleitoresAptos),
	}
	if !c.Configuracao.AtualizadoEm.IsZero() {
		data.Atualizada = humanize.Time(c.Configuracao.AtualizadoEm)
	}

	for _, cc := range c.Cargos {
		view := cargoView{
			ID:                string(cc.Cargo.ID),
			Titulo:            cc.Cargo.Titulo,
			Descricao:         cc.Cargo.Descricao,
			Votado:            cc.MeuVoto != nil,
			TotalDisplay:      displayInt(cc.TotalVotos),
			AbstencoesDisplay: displayInt(cc.Abstencoes),
		}
		for _, cand := range cc.Candidatos {
			view.Candidatos = append(view.Candidatos, candidatoView{
				ID:           string(cand.ID),
				Nome:         cand.NomeCompleto(),
				Plataforma:   cand.Plataforma,
				FotoURL:      cand.FotoURL,
				VotosDisplay: displayInt(cand.TotalVotos),
			})
		}
		if cc.MeuVoto != nil {
			view.Escolha = nomeEscolhido(cc)
		}
		data.Cargos = append(data.Cargos, view)
	}
	return data
}

func nomeEscolhido(cc domain.CargoCedula) string {
	if cc.MeuVoto.Abstencao() {
		return "Abstenção"
	}
	for _, cand := range cc.Candidatos {
		if cand.ID == *cc.MeuVoto.CandidatoID {
			return cand.NomeCompleto()
		}
	}
	return string(*cc.MeuVoto.CandidatoID)
}

func makeResultadosPage(res apuracao.ResultadoEleicao) resultadosPageData {
	data := resultadosPageData{
		Titulo: res.Configuracao.Titulo,
		Aptos:  displayInt(res.EleitoresAptos),
	}
	for _, rc := range res.Cargos {
		view := resultadoCargoView{
			Titulo:            rc.Cargo.Titulo,
			TotalDisplay:      displayInt(rc.TotalVotos),
			AbstencoesDisplay: displayInt(rc.Abstencoes),
			Participacao:      formatPercent(rc.Participacao),
			Empate:            rc.Empate,
		}
		if rc.Vencedor != nil {
			view.Vencedor = rc.Vencedor.NomeCompleto()
		}
		for _, c := range rc.Candidatos {
			view.Candidatos = append(view.Candidatos, resultadoCandidatoView{
				Posicao:      c.Posicao,
				Nome:         c.Candidato.NomeCompleto(),
				VotosDisplay: displayInt(c.Votos),
				Percent:      formatPercent(c.Percentual),
			})
		}
		data.Cargos = append(data.Cargos, view)
	}
	return data
}

func translateLoginError(err error) string {
	switch {
	case errors.Is(err, domain.ErrLimiteExcedido):
		return "Muitas tentativas de login. Aguarde um instante e tente novamente."
	case errors.Is(err, domain.ErrDadosInvalidos):
		return "Informe e-mail e senha."
	case errors.Is(err, domain.ErrNaoAutenticado):
		return "E-mail ou senha inválidos."
	case errors.Is(err, domain.ErrNotFound):
		return "Sua conta não possui perfil de eleitor. Procure a comissão eleitoral."
	case errors.Is(err, domain.ErrIndisponivel):
		return "O serviço está indisponível no momento. Tente novamente em instantes."
	default:
		return "Não foi possível entrar. Tente novamente."
	}
}

func translateVoteError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrVotacaoEncerrada):
		return "A votação está encerrada."
	case errors.Is(err, domain.ErrVotoDuplicado):
		return "Você já votou para este cargo."
	case errors.Is(err, domain.ErrEnvioEmAndamento):
		return "Seu voto para este cargo ainda está sendo processado."
	case errors.Is(err, domain.ErrDadosInvalidos):
		return "Candidato inválido para este cargo."
	case errors.Is(err, domain.ErrIndisponivel):
		return "O serviço está indisponível no momento. Seu voto não foi registrado."
	default:
		return "Não foi possível registrar o voto. Tente novamente."
	}
}

func translateResultadosError(err error) string {
	if errors.Is(err, domain.ErrAcessoNegado) {
		return "Os resultados ficam disponíveis quando a votação for encerrada."
	}
	return "Não foi possível carregar os resultados."
}

func formatPercent(value float64) string {
	return humanize.FormatFloat("#,###.#", value) + "%"
}

func displayInt(v int64) string {
	return humanize.Comma(v)
}

func formatPeriodo(inicio, fim *time.Time) string {
	switch {
	case inicio != nil && fim != nil:
		return formatDateTime(*inicio) + " a " + formatDateTime(*fim)
	case inicio != nil:
		return "a partir de " + formatDateTime(*inicio)
	case fim != nil:
		return "até " + formatDateTime(*fim)
	default:
		return ""
	}
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006 15:04")
}
