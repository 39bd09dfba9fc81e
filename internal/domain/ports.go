package domain

import (
	"context"
	"time"
)

type IdentidadeRepository interface {
	Criar(ctx context.Context, identidade Identidade) error
	Atualizar(ctx context.Context, identidade Identidade) error
	Excluir(ctx context.Context, id IdentidadeID) error
	BuscarPorID(ctx context.Context, id IdentidadeID) (Identidade, error)
	BuscarPorEmail(ctx context.Context, email string) (Identidade, error)
}

type EleitorRepository interface {
	Criar(ctx context.Context, eleitor Eleitor) error
	Atualizar(ctx context.Context, eleitor Eleitor) error
	BuscarPorID(ctx context.Context, id EleitorID) (Eleitor, error)
	BuscarPorIdentidade(ctx context.Context, id IdentidadeID) (Eleitor, error)
	Listar(ctx context.Context) ([]Eleitor, error)
	ContarAptos(ctx context.Context) (int64, error)
	// ExcluirPorEmail remove o perfil e os votos dele, devolvendo o perfil removido.
	ExcluirPorEmail(ctx context.Context, email string) (Eleitor, error)
}

type CargoRepository interface {
	Criar(ctx context.Context, cargo Cargo) error
	BuscarPorID(ctx context.Context, id CargoID) (Cargo, error)
	Listar(ctx context.Context) ([]Cargo, error)
}

type CandidatoRepository interface {
	Criar(ctx context.Context, candidato Candidato) error
	Atualizar(ctx context.Context, candidato Candidato) error
	Excluir(ctx context.Context, id CandidatoID) error
	BuscarPorID(ctx context.Context, id CandidatoID) (Candidato, error)
	Listar(ctx context.Context) ([]Candidato, error)
}

type VotoRepository interface {
	// Registrar grava o voto e incrementa o candidato na mesma transação.
	Registrar(ctx context.Context, voto Voto) (Voto, error)
	ListarPorEleitor(ctx context.Context, id EleitorID) ([]Voto, error)
	// TotaisPorCargo devolve votos totais e abstenções agrupados por cargo.
	TotaisPorCargo(ctx context.Context) (totais, abstencoes map[CargoID]int64, err error)
	Limpar(ctx context.Context) (VerificacaoLimpeza, error)
}

type ConfiguracaoRepository interface {
	Obter(ctx context.Context) (Configuracao, error)
	Salvar(ctx context.Context, cfg Configuracao) (Configuracao, error)
}

type PainelRepository interface {
	CarregarPainel(ctx context.Context) (Painel, error)
}

type AuditoriaRepository interface {
	Registrar(ctx context.Context, evento EventoAuditoria) error
	ListarRecentes(ctx context.Context, limite int) ([]EventoAuditoria, error)
}

type FilaAuditoria interface {
	PublicarEvento(ctx context.Context, evento EventoAuditoria) error
	ConsumirEventos(ctx context.Context, handler func(context.Context, EventoAuditoria) error) error
}

type Cache interface {
	// Obter devolve a geração vigente junto com o valor; a gravação do que for lido
	// do banco usa essa mesma geração, senão um retrato anterior a Invalidar volta ao cache.
	Obter(ctx context.Context, chave string, destino any) (geracao int64, achou bool, err error)
	Gravar(ctx context.Context, geracao int64, chave string, valor any) error
	Invalidar(ctx context.Context) error
}

// TravaEnvio impede dois envios simultâneos para a mesma chave.
type TravaEnvio interface {
	Adquirir(ctx context.Context, chave string) (liberar func(), err error)
}

type Antifraude interface {
	Validar(ctx context.Context, chave string) error
}

type ProvedorIdentidade interface {
	Criar(ctx context.Context, email, senha string) (Identidade, error)
	Atualizar(ctx context.Context, id IdentidadeID, email, senha string) error
	Excluir(ctx context.Context, id IdentidadeID) error
	BuscarPorEmail(ctx context.Context, email string) (Identidade, error)
	Autenticar(ctx context.Context, email, senha string) (Identidade, error)
}

type Clock interface {
	Agora() time.Time
}
