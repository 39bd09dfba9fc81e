// Pacote catalogo lê o retrato da eleição (configuração, cargos, candidatos, totais) com cache curto.
package catalogo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/marcelojr/portal-eleicao/internal/domain"
	"github.com/marcelojr/portal-eleicao/internal/platform/metrics"
)

const chaveCatalogo = "catalogo"

type Repositorios struct {
	Configuracao domain.ConfiguracaoRepository
	Cargos       domain.CargoRepository
	Candidatos   domain.CandidatoRepository
	Votos        domain.VotoRepository
	Eleitores    domain.EleitorRepository
}

// Leitor junta as leituras do catálogo. Falhas voltam como erro; decidir pelo modo degradado é do chamador.
type Leitor struct {
	repos           Repositorios
	cache           domain.Cache
	eleitoresPadrao int64
	tituloPadrao    string
	log             *slog.Logger
	grupo           singleflight.Group
}

func NewLeitor(repos Repositorios, cache domain.Cache, eleitoresPadrao int64, tituloPadrao string, log *slog.Logger) *Leitor {
	return &Leitor{
		repos:           repos,
		cache:           cache,
		eleitoresPadrao: eleitoresPadrao,
		tituloPadrao:    tituloPadrao,
		log:             log,
	}
}

func (l *Leitor) Carregar(ctx context.Context) (domain.Catalogo, error) {
	var (
		geracao    int64
		podeGravar bool
	)
	if l.cache != nil {
		var cat domain.Catalogo
		gen, achou, err := l.cache.Obter(ctx, chaveCatalogo, &cat)
		if err != nil {
			l.log.Warn("cache do catalogo indisponivel", "error", err)
		} else {
			geracao, podeGravar = gen, true
		}
		metrics.ObserveCacheLookup(achou)
		if achou {
			return cat, nil
		}
	}

	// Leituras simultâneas da mesma geração compartilham uma única ida ao banco.
	v, err, _ := l.grupo.Do(fmt.Sprintf("%s:g%d", chaveCatalogo, geracao), func() (any, error) {
		cat, err := l.lerDoBanco(ctx)
		if err != nil {
			return domain.Catalogo{}, err
		}
		if podeGravar {
			if err := l.cache.Gravar(ctx, geracao, chaveCatalogo, cat); err != nil {
				l.log.Warn("falha ao gravar catalogo no cache", "error", err)
			}
		}
		return cat, nil
	})
	if err != nil {
		return domain.Catalogo{}, err
	}
	return v.(domain.Catalogo), nil
}

func (l *Leitor) lerDoBanco(ctx context.Context) (domain.Catalogo, error) {
	cfg, err := l.repos.Configuracao.Obter(ctx)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		// Sem linha de configuração a votação está fechada; ela nasce no primeiro ajuste do admin.
		cfg = domain.Configuracao{ID: domain.ConfiguracaoID, Titulo: l.tituloPadrao}
	case err != nil:
		return domain.Catalogo{}, fmt.Errorf("catalogo: configuracao: %w", domain.Indisponivel(err))
	}

	cargos, err := l.repos.Cargos.Listar(ctx)
	if err != nil {
		return domain.Catalogo{}, fmt.Errorf("catalogo: cargos: %w", domain.Indisponivel(err))
	}

	candidatos, err := l.repos.Candidatos.Listar(ctx)
	if err != nil {
		return domain.Catalogo{}, fmt.Errorf("catalogo: candidatos: %w", domain.Indisponivel(err))
	}

	totais, abstencoes, err := l.repos.Votos.TotaisPorCargo(ctx)
	if err != nil {
		return domain.Catalogo{}, fmt.Errorf("catalogo: totais: %w", domain.Indisponivel(err))
	}

	aptos, err := l.repos.Eleitores.ContarAptos(ctx)
	if err != nil {
		l.log.Warn("falha ao contar eleitores aptos; usando padrao", "padrao", l.eleitoresPadrao, "error", err)
	}
	if err != nil || aptos == 0 {
		aptos = l.eleitoresPadrao
	}

	return domain.Catalogo{
		Configuracao:   cfg,
		Cargos:         cargos,
		Candidatos:     candidatos,
		Abstencoes:     abstencoes,
		VotosPorCargo:  totais,
		EleitoresAptos: aptos,
	}, nil
}

// Invalidar descarta o catálogo em cache depois de uma mutação bem-sucedida.
func (l *Leitor) Invalidar(ctx context.Context) {
	if l.cache == nil {
		return
	}
	if err := l.cache.Invalidar(context.WithoutCancel(ctx)); err != nil {
		l.log.Warn("falha ao invalidar cache", "error", err)
	}
}
