// Pacote apuracao deriva os números exibidos nos resultados a partir dos totais já agregados no banco.
// Nada aqui altera contagens: é só leitura e apresentação.
package apuracao

import (
	"sort"

	"github.com/marcelojr/portal-eleicao/internal/domain"
)

type ResultadoCandidato struct {
	Candidato  domain.Candidato `json:"candidato"`
	Votos      int64            `json:"votos"`
	Percentual float64          `json:"percentual"`
	Posicao    int              `json:"posicao"`
}

type ResultadoCargo struct {
	Cargo        domain.Cargo         `json:"cargo"`
	Candidatos   []ResultadoCandidato `json:"candidatos"`
	Abstencoes   int64                `json:"abstencoes"`
	TotalVotos   int64                `json:"total_votos"`
	Participacao float64              `json:"participacao"`
	// Vencedor é só um rótulo de exibição; nil quando ninguém votou ou quando há empate no topo.
	Vencedor *domain.Candidato `json:"vencedor,omitempty"`
	Empate   bool              `json:"empate"`
}

type ResultadoEleicao struct {
	Modo           domain.ModoLeitura  `json:"modo"`
	Motivo         string              `json:"motivo,omitempty"`
	Configuracao   domain.Configuracao `json:"configuracao"`
	EleitoresAptos int64               `json:"eleitores_aptos"`
	Cargos         []ResultadoCargo    `json:"cargos"`
}

// ApurarCargo ordena por votos (estável sobre a ordem recebida), calcula percentuais sobre o total
// com abstenções e a participação sobre os eleitores aptos.
func ApurarCargo(cargo domain.Cargo, candidatos []domain.Candidato, abstencoes, eleitoresAptos int64) ResultadoCargo {
	res := ResultadoCargo{
		Cargo:      cargo,
		Abstencoes: abstencoes,
		Candidatos: make([]ResultadoCandidato, len(candidatos)),
	}

	total := abstencoes
	for i, cand := range candidatos {
		res.Candidatos[i] = ResultadoCandidato{Candidato: cand, Votos: cand.TotalVotos}
		total += cand.TotalVotos
	}
	res.TotalVotos = total

	sort.SliceStable(res.Candidatos, func(i, j int) bool {
		return res.Candidatos[i].Votos > res.Candidatos[j].Votos
	})

	for i := range res.Candidatos {
		res.Candidatos[i].Posicao = i + 1
		res.Candidatos[i].Percentual = percentual(res.Candidatos[i].Votos, total)
	}
	res.Participacao = percentual(total, eleitoresAptos)

	if len(res.Candidatos) == 0 || res.Candidatos[0].Votos == 0 {
		return res
	}
	if len(res.Candidatos) > 1 && res.Candidatos[1].Votos == res.Candidatos[0].Votos {
		res.Empate = true
		return res
	}
	vencedor := res.Candidatos[0].Candidato
	res.Vencedor = &vencedor
	return res
}

// ApurarEleicao apura cada cargo ativo na ordem oficial.
func ApurarEleicao(cat domain.Catalogo, modo domain.ModoLeitura, motivo string) ResultadoEleicao {
	res := ResultadoEleicao{
		Modo:           modo,
		Motivo:         motivo,
		Configuracao:   cat.Configuracao,
		EleitoresAptos: cat.EleitoresAptos,
		Cargos:         make([]ResultadoCargo, 0, len(cat.Cargos)),
	}

	cargos := append([]domain.Cargo(nil), cat.Cargos...)
	sort.SliceStable(cargos, func(i, j int) bool { return cargos[i].Ordem < cargos[j].Ordem })

	for _, cargo := range cargos {
		if !cargo.Ativo {
			continue
		}
		res.Cargos = append(res.Cargos, ApurarCargo(cargo, cat.CandidatosDoCargo(cargo.ID), cat.Abstencoes[cargo.ID], cat.EleitoresAptos))
	}
	return res
}

func percentual(parte, todo int64) float64 {
	if todo <= 0 {
		return 0
	}
	return float64(parte) / float64(todo) * 100
}
