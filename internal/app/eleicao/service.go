// Pacote eleicao reúne o que o eleitor faz no portal: entrar, ver a cédula, votar e ler os resultados.
package eleicao

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/marcelojr/portal-eleicao/internal/app/apuracao"
	"github.com/marcelojr/portal-eleicao/internal/app/auditoria"
	"github.com/marcelojr/portal-eleicao/internal/app/catalogo"
	"github.com/marcelojr/portal-eleicao/internal/domain"
	"github.com/marcelojr/portal-eleicao/internal/platform/fallback"
	"github.com/marcelojr/portal-eleicao/internal/platform/identidade"
	"github.com/marcelojr/portal-eleicao/internal/platform/ids"
	"github.com/marcelojr/portal-eleicao/internal/platform/metrics"
	"github.com/marcelojr/portal-eleicao/internal/platform/sessao"
	"github.com/marcelojr/portal-eleicao/internal/platform/telemetry"
)

type Sessoes interface {
	Emitir(id domain.IdentidadeID) (sessao.Token, error)
	Validar(ctx context.Context, valor string) (*sessao.Claims, error)
	Revogar(ctx context.Context, valor string) error
}

type Dependencias struct {
	Eleitores       domain.EleitorRepository
	Votos           domain.VotoRepository
	Identidades     domain.ProvedorIdentidade
	Sessoes         Sessoes
	Catalogo        *catalogo.Leitor
	Trava           domain.TravaEnvio
	Antifraude      domain.Antifraude
	Auditoria       *auditoria.Registrador
	Clock           domain.Clock
	IDs             *ids.Generator
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

// Sessao é o resultado de um login: o token e o perfil já resolvido.
type Sessao struct {
	Token   sessao.Token   `json:"sessao"`
	Eleitor domain.Eleitor `json:"eleitor"`
}

func (s *Service) Entrar(ctx context.Context, email, senha string) (Sessao, error) {
	email = identidade.NormalizarEmail(email)
	if email == "" || senha == "" {
		return Sessao{}, fmt.Errorf("%w: e-mail e senha obrigatorios", domain.ErrDadosInvalidos)
	}

	if s.Antifraude != nil {
		chave := email + "|" + auditoria.OrigemDe(ctx).IP
		if err := s.Antifraude.Validar(ctx, chave); err != nil {
			if errors.Is(err, domain.ErrLimiteExcedido) {
				return Sessao{}, err
			}
			// Sem Redis o login segue; o limite é só uma barreira contra força bruta.
			s.Log.Warn("antifraude indisponivel", "error", err)
		}
	}

	ident, err := s.Identidades.Autenticar(ctx, email, senha)
	if err != nil {
		return Sessao{}, domain.Indisponivel(err)
	}

	eleitor, err := s.Eleitores.BuscarPorIdentidade(ctx, ident.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return Sessao{}, fmt.Errorf("%w: conta sem perfil de eleitor", domain.ErrNotFound)
		}
		return Sessao{}, domain.Indisponivel(err)
	}

	token, err := s.Sessoes.Emitir(ident.ID)
	if err != nil {
		return Sessao{}, err
	}

	s.Auditoria.Registrar(ctx, domain.EventoLogin, eleitor.Email, string(eleitor.ID), "")
	return Sessao{Token: token, Eleitor: eleitor}, nil
}

func (s *Service) Sair(ctx context.Context, token string) error {
	return s.Sessoes.Revogar(ctx, token)
}

// Autenticar resolve o token para o perfil atual; a flag de admin vem sempre do banco.
func (s *Service) Autenticar(ctx context.Context, token string) (domain.Eleitor, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Eleitor{}, fmt.Errorf("%w: sessao ausente", domain.ErrNaoAutenticado)
	}

	claims, err := s.Sessoes.Validar(ctx, token)
	if err != nil {
		return domain.Eleitor{}, err
	}

	eleitor, err := s.Eleitores.BuscarPorIdentidade(ctx, claims.IdentidadeID())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Eleitor{}, fmt.Errorf("%w: perfil removido", domain.ErrNaoAutenticado)
		}
		return domain.Eleitor{}, domain.Indisponivel(err)
	}
	return eleitor, nil
}

// Cedula monta a visão do eleitor. Qualquer falha de leitura troca tudo pelo retrato estático,
// sem misturar com dados ao vivo.
func (s *Service) Cedula(ctx context.Context, eleitor domain.Eleitor) domain.Cedula {
	cat, err := s.Catalogo.Carregar(ctx)
	if err != nil {
		return s.cedulaDegradada(eleitor, err)
	}

	votos, err := s.Votos.ListarPorEleitor(ctx, eleitor.ID)
	if err != nil {
		return s.cedulaDegradada(eleitor, err)
	}

	return montarCedula(cat, eleitor, votos, domain.ModoAoVivo, "")
}

func (s *Service) cedulaDegradada(eleitor domain.Eleitor, causa error) domain.Cedula {
	s.Log.Warn("cedula em modo degradado", "eleitor_id", eleitor.ID, "error", causa)
	metrics.IncDegradedRead("cedula")
	return montarCedula(fallback.Catalogo(s.EleitoresPadrao), eleitor, nil, domain.ModoDegradado, fallback.Motivo)
}

func montarCedula(cat domain.Catalogo, eleitor domain.Eleitor, votos []domain.Voto, modo domain.ModoLeitura, motivo string) domain.Cedula {
	meus := make(map[domain.CargoID]domain.Voto, len(votos))
	for _, v := range votos {
		meus[v.CargoID] = v
	}

	eleitor.JaVotou = len(votos) > 0
	ced := domain.Cedula{
		Modo:           modo,
		Motivo:         motivo,
		Configuracao:   cat.Configuracao,
		Eleitor:        eleitor,
		EleitoresAptos: cat.EleitoresAptos,
		VotosDoEleitor: len(votos),
	}

	cargos := append([]domain.Cargo(nil), cat.Cargos...)
	sort.SliceStable(cargos, func(i, j int) bool { return cargos[i].Ordem < cargos[j].Ordem })

	pendentes := 0
	for _, cargo := range cargos {
		if !cargo.Ativo {
			continue
		}
		item := domain.CargoCedula{
			Cargo:      cargo,
			Abstencoes: cat.Abstencoes[cargo.ID],
			TotalVotos: cat.VotosPorCargo[cargo.ID],
		}
		for _, cand := range cat.CandidatosDoCargo(cargo.ID) {
			if cand.Ativo {
				item.Candidatos = append(item.Candidatos, cand)
			}
		}
		if v, ok := meus[cargo.ID]; ok {
			item.MeuVoto = &v
		} else {
			pendentes++
		}
		ced.Cargos = append(ced.Cargos, item)
	}
	ced.Concluida = len(ced.Cargos) > 0 && pendentes == 0
	return ced
}

// Votar registra um voto (candidatoID nil = abstenção). A unicidade por cargo é garantida pelo
// banco; a trava no Redis só evita cliques duplos.
func (s *Service) Votar(ctx context.Context, eleitor domain.Eleitor, cargoID domain.CargoID, candidatoID *domain.CandidatoID) (domain.Voto, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "eleicao.Votar")
	defer span.End()
	span.SetAttributes(
		attribute.String("eleicao.cargo_id", string(cargoID)),
		attribute.Bool("eleicao.abstencao", candidatoID == nil),
	)

	voto, err := s.votar(ctx, eleitor, cargoID, candidatoID)
	metrics.ObserveVoteRequest(domain.Codigo(err))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, domain.Codigo(err))
		return domain.Voto{}, err
	}
	metrics.IncVoteRegistered(voto.Abstencao())
	return voto, nil
}

func (s *Service) votar(ctx context.Context, eleitor domain.Eleitor, cargoID domain.CargoID, candidatoID *domain.CandidatoID) (domain.Voto, error) {
	if eleitor.ID == "" {
		return domain.Voto{}, fmt.Errorf("%w: perfil de eleitor ausente", domain.ErrNaoAutenticado)
	}
	if cargoID == "" {
		return domain.Voto{}, fmt.Errorf("%w: cargo obrigatorio", domain.ErrDadosInvalidos)
	}
	if candidatoID != nil && *candidatoID == "" {
		return domain.Voto{}, fmt.Errorf("%w: candidato vazio", domain.ErrDadosInvalidos)
	}

	if s.Trava != nil {
		liberar, err := s.Trava.Adquirir(ctx, string(eleitor.ID)+":"+string(cargoID))
		switch {
		case errors.Is(err, domain.ErrEnvioEmAndamento):
			return domain.Voto{}, err
		case err != nil:
			s.Log.Warn("trava de envio indisponivel; seguindo sem trava", "error", err)
		default:
			defer liberar()
		}
	}

	voto, err := s.Votos.Registrar(ctx, domain.Voto{
		ID:          s.IDs.Voto(),
		EleitorID:   eleitor.ID,
		CargoID:     cargoID,
		CandidatoID: candidatoID,
		CriadoEm:    s.Clock.Agora(),
	})
	if err != nil {
		return domain.Voto{}, domain.Indisponivel(err)
	}

	s.Catalogo.Invalidar(ctx)

	detalhe := "abstencao"
	if candidatoID != nil {
		detalhe = "candidato=" + string(*candidatoID)
	}
	s.Auditoria.Registrar(ctx, domain.EventoVotoRegistrado, eleitor.Email, string(cargoID), detalhe)
	s.Log.Info("voto registrado", "eleitor_id", eleitor.ID, "cargo_id", cargoID, "abstencao", voto.Abstencao())
	return voto, nil
}

// Resultados só é liberado ao eleitor comum depois do encerramento; admins veem sempre.
func (s *Service) Resultados(ctx context.Context, eleitor domain.Eleitor) (apuracao.ResultadoEleicao, error) {
	cat, err := s.Catalogo.Carregar(ctx)
	if err != nil {
		s.Log.Warn("resultados em modo degradado", "error", err)
		metrics.IncDegradedRead("resultados")
		return apuracao.ApurarEleicao(fallback.Catalogo(s.EleitoresPadrao), domain.ModoDegradado, fallback.Motivo), nil
	}

	if cat.Configuracao.VotacaoAberta && !eleitor.Admin {
		return apuracao.ResultadoEleicao{}, fmt.Errorf("%w: resultados liberados apos o encerramento", domain.ErrAcessoNegado)
	}
	return apuracao.ApurarEleicao(cat, domain.ModoAoVivo, ""), nil
}
