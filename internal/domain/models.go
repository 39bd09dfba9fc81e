package domain

import (
	"time"
)

type (
	EleitorID    string
	CargoID      string
	CandidatoID  string
	VotoID       string
	IdentidadeID string
)

// ConfiguracaoID identifica a única linha de configuração da eleição.
const ConfiguracaoID = "eleicao"

// Identidade guarda a credencial de login; o perfil de eleitor aponta para ela.
type Identidade struct {
	ID           IdentidadeID `gorm:"column:id;type:char(26);primaryKey" json:"id"`
	Email        string       `gorm:"column:email;type:text;not null;uniqueIndex" json:"email"`
	SenhaHash    string       `gorm:"column:senha_hash;type:text;not null" json:"-"`
	CriadoEm     time.Time    `gorm:"column:criado_em;autoCreateTime" json:"criado_em"`
	AtualizadoEm time.Time    `gorm:"column:atualizado_em;autoUpdateTime" json:"atualizado_em"`
}

// Eleitor é o perfil de votação. JaVotou é derivado da existência de votos e nunca é gravado.
type Eleitor struct {
	ID           EleitorID    `gorm:"column:id;type:char(26);primaryKey" json:"id"`
	IdentidadeID IdentidadeID `gorm:"column:identidade_id;type:char(26);uniqueIndex" json:"identidade_id"`
	Email        string       `gorm:"column:email;type:text;not null;uniqueIndex" json:"email"`
	Nome         string       `gorm:"column:nome;type:text;not null" json:"nome"`
	Sobrenome    string       `gorm:"column:sobrenome;type:text;not null" json:"sobrenome"`
	Matricula    *string      `gorm:"column:matricula;type:text" json:"matricula,omitempty"`
	Admin        bool         `gorm:"column:admin;not null;default:false" json:"admin"`
	JaVotou      bool         `gorm:"-" json:"ja_votou"`
	CriadoEm     time.Time    `gorm:"column:criado_em;autoCreateTime" json:"criado_em"`
	AtualizadoEm time.Time    `gorm:"column:atualizado_em;autoUpdateTime" json:"atualizado_em"`
}

func (e Eleitor) NomeCompleto() string {
	if e.Sobrenome == "" {
		return e.Nome
	}
	return e.Nome + " " + e.Sobrenome
}

type Cargo struct {
	ID        CargoID   `gorm:"column:id;type:char(26);primaryKey" json:"id"`
	Titulo    string    `gorm:"column:titulo;type:text;not null" json:"titulo"`
	Descricao string    `gorm:"column:descricao;type:text" json:"descricao"`
	Ordem     int       `gorm:"column:ordem;not null;index" json:"ordem"`
	Ativo     bool      `gorm:"column:ativo;not null;default:true" json:"ativo"`
	CriadoEm  time.Time `gorm:"column:criado_em;autoCreateTime" json:"criado_em"`
}

type Candidato struct {
	ID           CandidatoID `gorm:"column:id;type:char(26);primaryKey" json:"id"`
	CargoID      CargoID     `gorm:"column:cargo_id;type:char(26);not null;index" json:"cargo_id"`
	Nome         string      `gorm:"column:nome;type:text;not null" json:"nome"`
	Sobrenome    string      `gorm:"column:sobrenome;type:text;not null" json:"sobrenome"`
	Plataforma   string      `gorm:"column:plataforma;type:text" json:"plataforma"`
	FotoURL      string      `gorm:"column:foto_url;type:text" json:"foto_url"`
	TotalVotos   int64       `gorm:"column:total_votos;not null;default:0" json:"total_votos"`
	Ativo        bool        `gorm:"column:ativo;not null;default:true" json:"ativo"`
	CriadoEm     time.Time   `gorm:"column:criado_em;autoCreateTime" json:"criado_em"`
	AtualizadoEm time.Time   `gorm:"column:atualizado_em;autoUpdateTime" json:"atualizado_em"`
}

func (c Candidato) NomeCompleto() string {
	if c.Sobrenome == "" {
		return c.Nome
	}
	return c.Nome + " " + c.Sobrenome
}

// Voto registra a escolha de um eleitor em um cargo. CandidatoID nulo é abstenção.
type Voto struct {
	ID          VotoID       `gorm:"column:id;type:char(26);primaryKey" json:"id"`
	EleitorID   EleitorID    `gorm:"column:eleitor_id;type:char(26);not null;uniqueIndex:idx_votos_eleitor_cargo,priority:1" json:"eleitor_id"`
	CargoID     CargoID      `gorm:"column:cargo_id;type:char(26);not null;uniqueIndex:idx_votos_eleitor_cargo,priority:2;index:idx_votos_cargo" json:"cargo_id"`
	CandidatoID *CandidatoID `gorm:"column:candidato_id;type:char(26);index:idx_votos_candidato" json:"candidato_id"`
	CriadoEm    time.Time    `gorm:"column:criado_em;autoCreateTime" json:"criado_em"`
}

func (v Voto) Abstencao() bool {
	return v.CandidatoID == nil
}

type Configuracao struct {
	ID            string     `gorm:"column:id;type:text;primaryKey" json:"id"`
	VotacaoAberta bool       `gorm:"column:votacao_aberta;not null;default:false" json:"votacao_aberta"`
	Titulo        string     `gorm:"column:titulo;type:text;not null" json:"titulo"`
	InicioVotacao *time.Time `gorm:"column:inicio_votacao" json:"inicio_votacao,omitempty"`
	FimVotacao    *time.Time `gorm:"column:fim_votacao" json:"fim_votacao,omitempty"`
	Versao        int64      `gorm:"column:versao;not null;default:0" json:"versao"`
	AtualizadoEm  time.Time  `gorm:"column:atualizado_em" json:"atualizado_em"`
	AtualizadoPor string     `gorm:"column:atualizado_por;type:text" json:"atualizado_por"`
}

// EventoAuditoria descreve uma ação relevante publicada na fila e gravada pelo worker.
type EventoAuditoria struct {
	ID        string    `gorm:"column:id;type:char(26);primaryKey" json:"id"`
	Tipo      string    `gorm:"column:tipo;type:text;not null;index" json:"tipo"`
	Ator      string    `gorm:"column:ator;type:text" json:"ator"`
	Alvo      string    `gorm:"column:alvo;type:text" json:"alvo"`
	Detalhe   string    `gorm:"column:detalhe;type:text" json:"detalhe"`
	OrigemIP  string    `gorm:"column:origem_ip;type:text" json:"origem_ip"`
	UserAgent string    `gorm:"column:user_agent;type:text" json:"user_agent"`
	Navegador string    `gorm:"column:navegador;type:text" json:"navegador"`
	Sistema   string    `gorm:"column:sistema;type:text" json:"sistema"`
	CriadoEm  time.Time `gorm:"column:criado_em;index" json:"criado_em"`
}

const (
	EventoVotoRegistrado       = "voto_registrado"
	EventoVotosLimpos          = "votos_limpos"
	EventoEleitorCriado        = "eleitor_criado"
	EventoEleitorAtualizado    = "eleitor_atualizado"
	EventoEleitorExcluido      = "eleitor_excluido"
	EventoCargoCriado          = "cargo_criado"
	EventoCandidatoCriado      = "candidato_criado"
	EventoCandidatoAtualizado  = "candidato_atualizado"
	EventoCandidatoExcluido    = "candidato_excluido"
	EventoConfiguracaoAlterada = "configuracao_alterada"
	EventoLogin                = "login"
)

// VerificacaoLimpeza é relida logo após zerar a eleição; todos os campos devem ser zero.
type VerificacaoLimpeza struct {
	VotosRestantes      int64 `json:"votos_restantes"`
	EleitoresQueVotaram int64 `json:"eleitores_que_votaram"`
	SomaVotosCandidatos int64 `json:"soma_votos_candidatos"`
}

func (v VerificacaoLimpeza) Zerada() bool {
	return v.VotosRestantes == 0 && v.EleitoresQueVotaram == 0 && v.SomaVotosCandidatos == 0
}

type ModoLeitura string

const (
	ModoAoVivo    ModoLeitura = "ao_vivo"
	ModoDegradado ModoLeitura = "degradado"
)

// Catalogo é o retrato da eleição lido de uma só vez e mantido em cache por pouco tempo.
type Catalogo struct {
	Configuracao   Configuracao      `json:"configuracao"`
	Cargos         []Cargo           `json:"cargos"`
	Candidatos     []Candidato       `json:"candidatos"`
	Abstencoes     map[CargoID]int64 `json:"abstencoes"`
	VotosPorCargo  map[CargoID]int64 `json:"votos_por_cargo"`
	EleitoresAptos int64             `json:"eleitores_aptos"`
}

func (c Catalogo) CandidatosDoCargo(id CargoID) []Candidato {
	var lista []Candidato
	for _, cand := range c.Candidatos {
		if cand.CargoID == id {
			lista = append(lista, cand)
		}
	}
	return lista
}

type CargoCedula struct {
	Cargo      Cargo       `json:"cargo"`
	Candidatos []Candidato `json:"candidatos"`
	MeuVoto    *Voto       `json:"meu_voto,omitempty"`
	Abstencoes int64       `json:"abstencoes"`
	TotalVotos int64       `json:"total_votos"`
}

// Cedula é o que o eleitor enxerga: ao vivo ou inteiramente estática quando o banco falha.
type Cedula struct {
	Modo           ModoLeitura   `json:"modo"`
	Motivo         string        `json:"motivo,omitempty"`
	Configuracao   Configuracao  `json:"configuracao"`
	Eleitor        Eleitor       `json:"eleitor"`
	Cargos         []CargoCedula `json:"cargos"`
	EleitoresAptos int64         `json:"eleitores_aptos"`
	VotosDoEleitor int           `json:"votos_do_eleitor"`
	Concluida      bool          `json:"concluida"`
}

type EstatisticasPainel struct {
	TotalEleitores int64  `json:"total_eleitores"`
	TotalVotaram   int64  `json:"total_votaram"`
	TotalAdmins    int64  `json:"total_admins"`
	Origem         string `json:"origem"`
}

const (
	OrigemAgregado  = "agregado"
	OrigemConsultas = "consultas"
	OrigemEstatico  = "estatico"
)

// CalcularEstatisticas conta eleitores aptos, quem já votou e admins.
func CalcularEstatisticas(eleitores []Eleitor, origem string) EstatisticasPainel {
	est := EstatisticasPainel{Origem: origem}
	for _, e := range eleitores {
		if e.Admin {
			est.TotalAdmins++
			continue
		}
		est.TotalEleitores++
		if e.JaVotou {
			est.TotalVotaram++
		}
	}
	return est
}

type Painel struct {
	Modo         ModoLeitura        `json:"modo"`
	Motivo       string             `json:"motivo,omitempty"`
	Cargos       []Cargo            `json:"cargos"`
	Candidatos   []Candidato        `json:"candidatos"`
	Eleitores    []Eleitor          `json:"eleitores"`
	Configuracao *Configuracao      `json:"configuracao"`
	Estatisticas EstatisticasPainel `json:"estatisticas"`
}

func (Identidade) TableName() string { return "identidades" }

func (Eleitor) TableName() string { return "eleitores" }

func (Cargo) TableName() string { return "cargos" }

func (Candidato) TableName() string { return "candidatos" }

func (Voto) TableName() string { return "votos" }

func (Configuracao) TableName() string { return "configuracoes" }

func (EventoAuditoria) TableName() string { return "auditoria" }
