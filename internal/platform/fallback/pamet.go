// Pacote fallback guarda o retrato estático da eleição exibido quando o banco não responde.
package fallback

import (
	"fmt"
	"sort"

	"github.com/marcelojr/portal-eleicao/internal/domain"
)

const TituloPadrao = "PAMET Sorsogon Chapter Election 2025"

// Motivo acompanha toda leitura servida a partir deste retrato.
const Motivo = "banco de dados indisponivel; exibindo dados estaticos"

var cargos = []string{
	"President",
	"Vice President",
	"Secretary",
	"Auditor",
	"Treasurer",
	"Public Information Officer - JUCASOM",
	"Public Information Officer - BIMS",
	"Public Information Officer - GUIPRIBAR",
	"Public Information Officer - CSOLAR",
}

type candidatoEstatico struct {
	cargo      int
	nome       string
	sobrenome  string
	plataforma string
	foto       string
}

var candidatos = []candidatoEstatico{
	{1, "Aileen", "Lopez", "Metro Health Specialists Hospital", "/candidates/Aileen.jpg"},
	{2, "Claire", "Carrascal", "Sorsogon Provincial Hospital-FHS", "/candidates/Claire.jpg"},
	{2, "Joseph", "Gillego", "Metro Health Specialists Hospital Inc.", ""},
	{3, "Maria Theresa", "Baylon", "RHU Barcelona", ""},
	{3, "Arnold Kenneth", "Borromeo", "Sorsogon Provincial Hospital", "/candidates/Arnold.jpg"},
	{4, "Evelyn", "Lee", "Irosin District Hospital", "/candidates/Evelyn.jpg"},
	{5, "Mairie Gelyne", "Garalde", "Gubat District Hospital/SPH", ""},
	{6, "Rean", "Gracilla", "RHU Juban", ""},
	{6, "Norlane Jane", "Hao", "Donsol District Hospital/SPH", "/candidates/Norlane.jpg"},
	{7, "Mernadith", "Garcera", "Matnog Medicare Hospital", "/candidates/Meredith.jpg"},
	{7, "Jan Albert", "Apuhin", "Irosin District Hospital", ""},
	{8, "Patrick Lorenz", "Garcera", "Gubat District Hospital", "/candidates/Patrick.jpg"},
	{9, "Ivy Gail", "Bajamundi", "Castilla District Hospital", ""},
}

func cargoID(ordem int) domain.CargoID {
	return domain.CargoID(fmt.Sprintf("estatico-cargo-%02d", ordem))
}

// Cargos devolve os nove cargos da chapa na ordem da cédula.
func Cargos() []domain.Cargo {
	lista := make([]domain.Cargo, len(cargos))
	for i, titulo := range cargos {
		lista[i] = domain.Cargo{
			ID:     cargoID(i + 1),
			Titulo: titulo,
			Ordem:  i + 1,
			Ativo:  true,
		}
	}
	return lista
}

// Candidatos devolve os candidatos ordenados por nome, como na leitura ao vivo, sempre com zero votos.
func Candidatos() []domain.Candidato {
	lista := make([]domain.Candidato, len(candidatos))
	for i, c := range candidatos {
		lista[i] = domain.Candidato{
			ID:         domain.CandidatoID(fmt.Sprintf("estatico-candidato-%02d", i+1)),
			CargoID:    cargoID(c.cargo),
			Nome:       c.nome,
			Sobrenome:  c.sobrenome,
			Plataforma: c.plataforma,
			FotoURL:    c.foto,
			Ativo:      true,
		}
	}
	sort.SliceStable(lista, func(i, j int) bool { return lista[i].Nome < lista[j].Nome })
	return lista
}

// Configuracao mantém a votação fechada: dados estáticos nunca aceitam voto.
func Configuracao() domain.Configuracao {
	return domain.Configuracao{
		ID:            domain.ConfiguracaoID,
		VotacaoAberta: false,
		Titulo:        TituloPadrao,
	}
}

func Catalogo(eleitoresPadrao int64) domain.Catalogo {
	return domain.Catalogo{
		Configuracao:   Configuracao(),
		Cargos:         Cargos(),
		Candidatos:     Candidatos(),
		Abstencoes:     map[domain.CargoID]int64{},
		VotosPorCargo:  map[domain.CargoID]int64{},
		EleitoresAptos: eleitoresPadrao,
	}
}
