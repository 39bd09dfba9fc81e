// Pacote gestao implementa as operações do administrador: cadastro de eleitores, cargos e candidatos,
// configuração da votação, limpeza de votos e o painel.
package gestao

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/marcelojr/portal-eleicao/internal/app/apuracao"
	"github.com/marcelojr/portal-eleicao/internal/app/auditoria"
	"github.com/marcelojr/portal-eleicao/internal/app/catalogo"
	"github.com/marcelojr/portal-eleicao/internal/domain"
	"github.com/marcelojr/portal-eleicao/internal/platform/fallback"
	"github.com/marcelojr/portal-eleicao/internal/platform/identidade"
	"github.com/marcelojr/portal-eleicao/internal/platform/ids"
	"github.com/marcelojr/portal-eleicao/internal/platform/metrics"
	"github.com/marcelojr/portal-eleicao/internal/platform/telemetry"
)

const (
	chavePainel = "painel"

	limiteAuditoriaPadrao = 50
	limiteAuditoriaMaximo = 200
)

type Dependencias struct {
	Eleitores    domain.EleitorRepository
	Cargos       domain.CargoRepository
	Candidatos   domain.CandidatoRepository
	Votos        domain.VotoRepository
	Configuracao domain.ConfiguracaoRepository
	Agregado     domain.PainelRepository
	Historico    domain.AuditoriaRepository
	Identidades  domain.ProvedorIdentidade
	Catalogo     *catalogo.Leitor
	Cache        domain.Cache
	Registrador  *auditoria.Registrador
	Clock        domain.Clock
	IDs          *ids.Generator
	// EleitoresPadrao alimenta a apuração estática quando o banco cai.
	EleitoresPadrao int64
	Log             *slog.Logger
}

type Service struct {
	Dependencias
}

func NewService(deps Dependencias) *Service {
	if deps.IDs == nil {
		deps.IDs = ids.DefaultGenerator()
	}
	return &Service{Dependencias: deps}
}

type NovoEleitor struct {
	Email     string  `json:"email"`
	Senha     string  `json:"senha"`
	Nome      string  `json:"nome"`
	Sobrenome string  `json:"sobrenome"`
	Matricula *string `json:"matricula"`
}

// AtualizacaoEleitor substitui os dados do perfil; Senha em branco mantém a atual.
type AtualizacaoEleitor struct {
	Email     string  `json:"email"`
	Senha     string  `json:"senha"`
	Nome      string  `json:"nome"`
	Sobrenome string  `json:"sobrenome"`
	Matricula *string `json:"matricula"`
}

type NovoCargo struct {
	Titulo    string `json:"titulo"`
	Descricao string `json:"descricao"`
	Ordem     int    `json:"ordem"`
}

type NovoCandidato struct {
	CargoID    domain.CargoID `json:"cargo_id"`
	Nome       string         `json:"nome"`
	Sobrenome  string         `json:"sobrenome"`
	Plataforma string         `json:"plataforma"`
	FotoURL    string         `json:"foto_url"`
}

// AtualizacaoCandidato só altera os campos informados.
type AtualizacaoCandidato struct {
	CargoID    *domain.CargoID `json:"cargo_id"`
	Nome       *string         `json:"nome"`
	Sobrenome  *string         `json:"sobrenome"`
	Plataforma *string         `json:"plataforma"`
	FotoURL    *string         `json:"foto_url"`
	Ativo      *bool           `json:"ativo"`
}

type AjusteConfiguracao struct {
	Titulo        *string    `json:"titulo"`
	VotacaoAberta *bool      `json:"votacao_aberta"`
	InicioVotacao *time.Time `json:"inicio_votacao"`
	FimVotacao    *time.Time `json:"fim_votacao"`
}

// concluir registra a métrica da operação e, em caso de sucesso, descarta o cache e publica a auditoria.
func (s *Service) concluir(ctx context.Context, operacao string, err error, ator domain.Eleitor, tipo, alvo, detalhe string) {
	metrics.ObserveAdminOperation(operacao, domain.Codigo(err))
	if err != nil {
		s.Log.Warn("operacao administrativa falhou", "operacao", operacao, "ator", ator.Email, "error", err)
		return
	}
	s.Catalogo.Invalidar(ctx)
	s.Registrador.Registrar(ctx, tipo, ator.Email, alvo, detalhe)
}

func (s *Service) CriarEleitor(ctx context.Context, ator domain.Eleitor, novo NovoEleitor) (eleitor domain.Eleitor, err error) {
	defer func() {
		s.concluir(ctx, "criar_eleitor", err, ator, domain.EventoEleitorCriado, string(eleitor.ID), eleitor.Email)
	}()

	novo.Nome = strings.TrimSpace(novo.Nome)
	novo.Sobrenome = strings.TrimSpace(novo.Sobrenome)
	if novo.Nome == "" || novo.Sobrenome == "" {
		return domain.Eleitor{}, fmt.Errorf("%w: nome e sobrenome obrigatorios", domain.ErrDadosInvalidos)
	}

	ident, err := s.Identidades.Criar(ctx, novo.Email, novo.Senha)
	if err != nil {
		return domain.Eleitor{}, domain.Indisponivel(err)
	}

	agora := s.Clock.Agora()
	eleitor = domain.Eleitor{
		ID:           s.IDs.Eleitor(),
		IdentidadeID: ident.ID,
		Email:        ident.Email,
		Nome:         novo.Nome,
		Sobrenome:    novo.Sobrenome,
		Matricula:    matricula(novo.Matricula),
		CriadoEm:     agora,
		AtualizadoEm: agora,
	}
	if err := s.Eleitores.Criar(ctx, eleitor); err != nil {
		// Sem perfil a credencial não serve para nada; desfaz para o e-mail poder ser reutilizado.
		if errComp := s.Identidades.Excluir(context.WithoutCancel(ctx), ident.ID); errComp != nil {
			s.Log.Error("falha ao desfazer identidade sem perfil", "identidade_id", ident.ID, "error", errComp)
		}
		return domain.Eleitor{}, domain.Indisponivel(err)
	}
	return eleitor, nil
}

func (s *Service) AtualizarEleitor(ctx context.Context, ator domain.Eleitor, id domain.EleitorID, upd AtualizacaoEleitor) (eleitor domain.Eleitor, err error) {
	defer func() {
		s.concluir(ctx, "atualizar_eleitor", err, ator, domain.EventoEleitorAtualizado, string(id), eleitor.Email)
	}()

	atual, err := s.Eleitores.BuscarPorID(ctx, id)
	if err != nil {
		return domain.Eleitor{}, domain.Indisponivel(err)
	}

	email := identidade.NormalizarEmail(upd.Email)
	if email == "" || !strings.Contains(email, "@") {
		return domain.Eleitor{}, fmt.Errorf("%w: e-mail invalido", domain.ErrDadosInvalidos)
	}
	if strings.TrimSpace(upd.Nome) == "" || strings.TrimSpace(upd.Sobrenome) == "" {
		return domain.Eleitor{}, fmt.Errorf("%w: nome e sobrenome obrigatorios", domain.ErrDadosInvalidos)
	}
	if upd.Senha != "" && len(upd.Senha) < identidade.SenhaMinima {
		return domain.Eleitor{}, fmt.Errorf("%w: senha curta demais", domain.ErrDadosInvalidos)
	}

	eleitor = atual
	eleitor.Email = email
	eleitor.Nome = strings.TrimSpace(upd.Nome)
	eleitor.Sobrenome = strings.TrimSpace(upd.Sobrenome)
	eleitor.Matricula = matricula(upd.Matricula)
	eleitor.AtualizadoEm = s.Clock.Agora()

	if err := s.Eleitores.Atualizar(ctx, eleitor); err != nil {
		return domain.Eleitor{}, domain.Indisponivel(err)
	}

	emailNovo := ""
	if email != atual.Email {
		emailNovo = email
	}
	if atual.IdentidadeID != "" && (emailNovo != "" || strings.TrimSpace(upd.Senha) != "") {
		if err := s.Identidades.Atualizar(ctx, atual.IdentidadeID, emailNovo, upd.Senha); err != nil {
			// Perfil e credencial não podem divergir no e-mail; volta o perfil ao estado anterior.
			if errComp := s.Eleitores.Atualizar(context.WithoutCancel(ctx), atual); errComp != nil {
				s.Log.Error("falha ao desfazer atualizacao do perfil", "eleitor_id", atual.ID, "error", errComp)
			}
			return domain.Eleitor{}, domain.Indisponivel(err)
		}
	}
	return eleitor, nil
}

// ExcluirEleitor remove perfil, votos (estornando os candidatos) e, por último, a credencial.
func (s *Service) ExcluirEleitor(ctx context.Context, ator domain.Eleitor, email string) (err error) {
	email = identidade.NormalizarEmail(email)
	defer func() {
		s.concluir(ctx, "excluir_eleitor", err, ator, domain.EventoEleitorExcluido, email, "")
	}()

	if email == "" {
		return fmt.Errorf("%w: e-mail obrigatorio", domain.ErrDadosInvalidos)
	}
	if email == identidade.NormalizarEmail(ator.Email) {
		return fmt.Errorf("%w: admin nao pode excluir a propria conta", domain.ErrDadosInvalidos)
	}

	removido, err := s.Eleitores.ExcluirPorEmail(ctx, email)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		// Uma exclusão anterior pode ter apagado o perfil e falhado na credencial.
		return s.excluirCredencialOrfa(ctx, email)
	case err != nil:
		return domain.Indisponivel(err)
	}

	if removido.IdentidadeID == "" {
		return nil
	}
	if err := s.Identidades.Excluir(ctx, removido.IdentidadeID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return domain.Indisponivel(err)
	}
	return nil
}

// excluirCredencialOrfa apaga a credencial do e-mail quando nenhum perfil aponta para ela.
func (s *Service) excluirCredencialOrfa(ctx context.Context, email string) error {
	ident, err := s.Identidades.BuscarPorEmail(ctx, email)
	if err != nil {
		return domain.Indisponivel(err)
	}

	_, err = s.Eleitores.BuscarPorIdentidade(ctx, ident.ID)
	switch {
	case err == nil:
		// Credencial ainda em uso por um perfil com outro e-mail; não é órfã.
		return fmt.Errorf("%w: eleitor %s", domain.ErrNotFound, email)
	case !errors.Is(err, domain.ErrNotFound):
		return domain.Indisponivel(err)
	}

	s.Log.Warn("removendo credencial sem perfil", "identidade_id", ident.ID, "email", email)
	if err := s.Identidades.Excluir(ctx, ident.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return domain.Indisponivel(err)
	}
	return nil
}

func (s *Service) CriarCargo(ctx context.Context, ator domain.Eleitor, novo NovoCargo) (cargo domain.Cargo, err error) {
	defer func() {
		s.concluir(ctx, "criar_cargo", err, ator, domain.EventoCargoCriado, string(cargo.ID), cargo.Titulo)
	}()

	titulo := strings.TrimSpace(novo.Titulo)
	if titulo == "" {
		return domain.Cargo{}, fmt.Errorf("%w: titulo obrigatorio", domain.ErrDadosInvalidos)
	}
	if novo.Ordem <= 0 {
		return domain.Cargo{}, fmt.Errorf("%w: ordem deve ser positiva", domain.ErrDadosInvalidos)
	}

	cargo = domain.Cargo{
		ID:        s.IDs.Cargo(),
		Titulo:    titulo,
		Descricao: strings.TrimSpace(novo.Descricao),
		Ordem:     novo.Ordem,
		Ativo:     true,
		CriadoEm:  s.Clock.Agora(),
	}
	if err := s.Cargos.Criar(ctx, cargo); err != nil {
		return domain.Cargo{}, domain.Indisponivel(err)
	}
	return cargo, nil
}

func (s *Service) cargoExistente(ctx context.Context, id domain.CargoID) error {
	if _, err := s.Cargos.BuscarPorID(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: cargo inexistente", domain.ErrDadosInvalidos)
		}
		return domain.Indisponivel(err)
	}
	return nil
}

func (s *Service) CriarCandidato(ctx context.Context, ator domain.Eleitor, novo NovoCandidato) (cand domain.Candidato, err error) {
	defer func() {
		s.concluir(ctx, "criar_candidato", err, ator, domain.EventoCandidatoCriado, string(cand.ID), cand.NomeCompleto())
	}()

	if strings.TrimSpace(novo.Nome) == "" || novo.CargoID == "" {
		return domain.Candidato{}, fmt.Errorf("%w: nome e cargo obrigatorios", domain.ErrDadosInvalidos)
	}
	if err := s.cargoExistente(ctx, novo.CargoID); err != nil {
		return domain.Candidato{}, err
	}

	agora := s.Clock.Agora()
	cand = domain.Candidato{
		ID:           s.IDs.Candidato(),
		CargoID:      novo.CargoID,
		Nome:         strings.TrimSpace(novo.Nome),
		Sobrenome:    strings.TrimSpace(novo.Sobrenome),
		Plataforma:   strings.TrimSpace(novo.Plataforma),
		FotoURL:      strings.TrimSpace(novo.FotoURL),
		Ativo:        true,
		CriadoEm:     agora,
		AtualizadoEm: agora,
	}
	if err := s.Candidatos.Criar(ctx, cand); err != nil {
		return domain.Candidato{}, domain.Indisponivel(err)
	}
	return cand, nil
}

func (s *Service) AtualizarCandidato(ctx context.Context, ator domain.Eleitor, id domain.CandidatoID, upd AtualizacaoCandidato) (cand domain.Candidato, err error) {
	defer func() {
		s.concluir(ctx, "atualizar_candidato", err, ator, domain.EventoCandidatoAtualizado, string(id), cand.NomeCompleto())
	}()

	cand, err = s.Candidatos.BuscarPorID(ctx, id)
	if err != nil {
		return domain.Candidato{}, domain.Indisponivel(err)
	}

	if upd.CargoID != nil && *upd.CargoID != cand.CargoID {
		// Votos já contados pertencem ao cargo antigo. O repositório repete a checagem com a linha travada.
		if cand.TotalVotos > 0 {
			return domain.Candidato{}, fmt.Errorf("%w: candidato com votos nao muda de cargo", domain.ErrDadosInvalidos)
		}
		if err := s.cargoExistente(ctx, *upd.CargoID); err != nil {
			return domain.Candidato{}, err
		}
		cand.CargoID = *upd.CargoID
	}
	if upd.Nome != nil {
		if strings.TrimSpace(*upd.Nome) == "" {
			return domain.Candidato{}, fmt.Errorf("%w: nome obrigatorio", domain.ErrDadosInvalidos)
		}
		cand.Nome = strings.TrimSpace(*upd.Nome)
	}
	if upd.Sobrenome != nil {
		cand.Sobrenome = strings.TrimSpace(*upd.Sobrenome)
	}
	if upd.Plataforma != nil {
		cand.Plataforma = strings.TrimSpace(*upd.Plataforma)
	}
	if upd.FotoURL != nil {
		cand.FotoURL = strings.TrimSpace(*upd.FotoURL)
	}
	if upd.Ativo != nil {
		cand.Ativo = *upd.Ativo
	}
	cand.AtualizadoEm = s.Clock.Agora()

	if err := s.Candidatos.Atualizar(ctx, cand); err != nil {
		return domain.Candidato{}, domain.Indisponivel(err)
	}
	return cand, nil
}

func (s *Service) ExcluirCandidato(ctx context.Context, ator domain.Eleitor, id domain.CandidatoID) (err error) {
	defer func() {
		s.concluir(ctx, "excluir_candidato", err, ator, domain.EventoCandidatoExcluido, string(id), "")
	}()

	if err := s.Candidatos.Excluir(ctx, id); err != nil {
		return domain.Indisponivel(err)
	}
	return nil
}

func (s *Service) configuracaoAtual(ctx context.Context) (domain.Configuracao, error) {
	cfg, err := s.Configuracao.Obter(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		return fallback.Configuracao(), nil
	}
	if err != nil {
		return domain.Configuracao{}, domain.Indisponivel(err)
	}
	return cfg, nil
}

// AtualizarConfiguracao aplica o ajuste sobre a linha atual; a última gravação vence.
func (s *Service) AtualizarConfiguracao(ctx context.Context, ator domain.Eleitor, ajuste AjusteConfiguracao) (cfg domain.Configuracao, err error) {
	defer func() {
		s.concluir(ctx, "atualizar_configuracao", err, ator, domain.EventoConfiguracaoAlterada, domain.ConfiguracaoID,
			fmt.Sprintf("votacao_aberta=%t versao=%d", cfg.VotacaoAberta, cfg.Versao))
	}()

	cfg, err = s.configuracaoAtual(ctx)
	if err != nil {
		return domain.Configuracao{}, err
	}

	if ajuste.Titulo != nil {
		titulo := strings.TrimSpace(*ajuste.Titulo)
		if titulo == "" {
			return domain.Configuracao{}, fmt.Errorf("%w: titulo obrigatorio", domain.ErrDadosInvalidos)
		}
		cfg.Titulo = titulo
	}
	if ajuste.VotacaoAberta != nil {
		cfg.VotacaoAberta = *ajuste.VotacaoAberta
	}
	if ajuste.InicioVotacao != nil {
		cfg.InicioVotacao = ajuste.InicioVotacao
	}
	if ajuste.FimVotacao != nil {
		cfg.FimVotacao = ajuste.FimVotacao
	}
	if cfg.InicioVotacao != nil && cfg.FimVotacao != nil && cfg.FimVotacao.Before(*cfg.InicioVotacao) {
		return domain.Configuracao{}, fmt.Errorf("%w: fim antes do inicio", domain.ErrDadosInvalidos)
	}

	cfg.AtualizadoEm = s.Clock.Agora()
	cfg.AtualizadoPor = ator.Email

	cfg, err = s.Configuracao.Salvar(ctx, cfg)
	if err != nil {
		return domain.Configuracao{}, domain.Indisponivel(err)
	}
	s.Log.Info("configuracao alterada", "votacao_aberta", cfg.VotacaoAberta, "versao", cfg.Versao, "por", ator.Email)
	return cfg, nil
}

func (s *Service) AlternarVotacao(ctx context.Context, ator domain.Eleitor) (domain.Configuracao, error) {
	atual, err := s.configuracaoAtual(ctx)
	if err != nil {
		metrics.ObserveAdminOperation("atualizar_configuracao", domain.Codigo(err))
		return domain.Configuracao{}, err
	}
	aberta := !atual.VotacaoAberta
	return s.AtualizarConfiguracao(ctx, ator, AjusteConfiguracao{VotacaoAberta: &aberta})
}

// LimparVotos zera a eleição inteira e devolve a releitura para conferência.
func (s *Service) LimparVotos(ctx context.Context, ator domain.Eleitor) (v domain.VerificacaoLimpeza, err error) {
	ctx, span := telemetry.Tracer().Start(ctx, "gestao.LimparVotos")
	defer span.End()
	defer func() {
		s.concluir(ctx, "limpar_votos", err, ator, domain.EventoVotosLimpos, domain.ConfiguracaoID,
			fmt.Sprintf("restantes=%d", v.VotosRestantes))
	}()

	v, err = s.Votos.Limpar(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "limpeza falhou")
		return domain.VerificacaoLimpeza{}, domain.Indisponivel(err)
	}

	span.SetAttributes(
		attribute.Int64("eleicao.votos_restantes", v.VotosRestantes),
		attribute.Bool("eleicao.zerada", v.Zerada()),
	)
	if !v.Zerada() {
		s.Log.Error("limpeza concluida com residuos", "votos", v.VotosRestantes, "eleitores", v.EleitoresQueVotaram, "soma_candidatos", v.SomaVotosCandidatos)
	}
	return v, nil
}

// Painel tenta a leitura agregada, depois quatro consultas em paralelo e por fim o retrato estático.
func (s *Service) Painel(ctx context.Context) domain.Painel {
	ctx, span := telemetry.Tracer().Start(ctx, "gestao.Painel")
	defer span.End()

	var (
		geracao    int64
		podeGravar bool
	)
	if s.Cache != nil {
		var p domain.Painel
		gen, achou, err := s.Cache.Obter(ctx, chavePainel, &p)
		if err != nil {
			s.Log.Warn("cache do painel indisponivel", "error", err)
		} else {
			geracao, podeGravar = gen, true
		}
		metrics.ObserveCacheLookup(achou)
		if achou {
			span.SetAttributes(attribute.String("eleicao.painel_origem", "cache"))
			return p
		}
	}

	painel, err := s.Agregado.CarregarPainel(ctx)
	if err != nil {
		s.Log.Warn("leitura agregada do painel falhou; usando consultas individuais", "error", err)
		painel, err = s.painelPorConsultas(ctx)
	}
	if err != nil {
		s.Log.Warn("painel em modo degradado", "error", err)
		metrics.IncDegradedRead("painel")
		span.SetAttributes(attribute.String("eleicao.painel_origem", domain.OrigemEstatico))
		return painelEstatico()
	}

	span.SetAttributes(attribute.String("eleicao.painel_origem", painel.Estatisticas.Origem))
	if podeGravar {
		if err := s.Cache.Gravar(ctx, geracao, chavePainel, painel); err != nil {
			s.Log.Warn("falha ao gravar painel no cache", "error", err)
		}
	}
	return painel
}

func (s *Service) painelPorConsultas(ctx context.Context) (domain.Painel, error) {
	var (
		painel = domain.Painel{Modo: domain.ModoAoVivo}
		cfg    domain.Configuracao
		semCfg bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		painel.Cargos, err = s.Cargos.Listar(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		painel.Candidatos, err = s.Candidatos.Listar(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		painel.Eleitores, err = s.Eleitores.Listar(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		cfg, err = s.Configuracao.Obter(gctx)
		if errors.Is(err, domain.ErrNotFound) {
			semCfg = true
			return nil
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.Painel{}, fmt.Errorf("gestao: painel por consultas: %w", err)
	}

	if !semCfg {
		painel.Configuracao = &cfg
	}
	painel.Estatisticas = domain.CalcularEstatisticas(painel.Eleitores, domain.OrigemConsultas)
	return painel, nil
}

func painelEstatico() domain.Painel {
	cfg := fallback.Configuracao()
	return domain.Painel{
		Modo:         domain.ModoDegradado,
		Motivo:       fallback.Motivo,
		Cargos:       fallback.Cargos(),
		Candidatos:   fallback.Candidatos(),
		Eleitores:    []domain.Eleitor{},
		Configuracao: &cfg,
		Estatisticas: domain.CalcularEstatisticas(nil, domain.OrigemEstatico),
	}
}

// Resultados para o admin não depende do estado da votação.
func (s *Service) Resultados(ctx context.Context) apuracao.ResultadoEleicao {
	cat, err := s.Catalogo.Carregar(ctx)
	if err != nil {
		s.Log.Warn("resultados do admin em modo degradado", "error", err)
		metrics.IncDegradedRead("resultados")
		return apuracao.ApurarEleicao(fallback.Catalogo(s.EleitoresPadrao), domain.ModoDegradado, fallback.Motivo)
	}
	return apuracao.ApurarEleicao(cat, domain.ModoAoVivo, "")
}

func (s *Service) Auditoria(ctx context.Context, limite int) ([]domain.EventoAuditoria, error) {
	if limite <= 0 {
		limite = limiteAuditoriaPadrao
	}
	if limite > limiteAuditoriaMaximo {
		limite = limiteAuditoriaMaximo
	}
	eventos, err := s.Historico.ListarRecentes(ctx, limite)
	if err != nil {
		return nil, domain.Indisponivel(err)
	}
	return eventos, nil
}

func matricula(m *string) *string {
	if m == nil {
		return nil
	}
	v := strings.TrimSpace(*m)
	if v == "" {
		return nil
	}
	return &v
}
