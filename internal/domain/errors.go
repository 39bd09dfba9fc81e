package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("registro nao encontrado")
	ErrDuplicado        = errors.New("registro duplicado")
	ErrNaoAutenticado   = errors.New("credenciais invalidas")
	ErrAcessoNegado     = errors.New("acesso restrito a administradores")
	ErrVotacaoEncerrada = errors.New("votacao encerrada")
	ErrVotoDuplicado    = errors.New("voto ja registrado para este cargo")
	ErrDadosInvalidos   = errors.New("dados invalidos")
	ErrIndisponivel     = errors.New("servico indisponivel")
	ErrEnvioEmAndamento = errors.New("envio de voto em andamento")
	ErrLimiteExcedido   = errors.New("limite de tentativas atingido")
)

const (
	CodigoOK               = "ok"
	CodigoVotacaoEncerrada = "votacao_encerrada"
	CodigoVotoDuplicado    = "voto_duplicado"
	CodigoDadosInvalidos   = "dados_invalidos"
	CodigoEnvioEmAndamento = "envio_em_andamento"
	CodigoNaoAutenticado   = "nao_autenticado"
	CodigoAcessoNegado     = "acesso_negado"
	CodigoNaoEncontrado    = "nao_encontrado"
	CodigoIndisponivel     = "indisponivel"
	CodigoLimiteExcedido   = "limite_excedido"
	CodigoErroInterno      = "erro_interno"
)

// Codigo traduz um erro para a etiqueta estável devolvida aos clientes.
func Codigo(err error) string {
	switch {
	case err == nil:
		return CodigoOK
	case errors.Is(err, ErrVotacaoEncerrada):
		return CodigoVotacaoEncerrada
	case errors.Is(err, ErrVotoDuplicado):
		return CodigoVotoDuplicado
	case errors.Is(err, ErrDadosInvalidos), errors.Is(err, ErrDuplicado):
		return CodigoDadosInvalidos
	case errors.Is(err, ErrEnvioEmAndamento):
		return CodigoEnvioEmAndamento
	case errors.Is(err, ErrNaoAutenticado):
		return CodigoNaoAutenticado
	case errors.Is(err, ErrAcessoNegado):
		return CodigoAcessoNegado
	case errors.Is(err, ErrNotFound):
		return CodigoNaoEncontrado
	case errors.Is(err, ErrIndisponivel):
		return CodigoIndisponivel
	case errors.Is(err, ErrLimiteExcedido):
		return CodigoLimiteExcedido
	default:
		return CodigoErroInterno
	}
}

var conhecidos = []error{
	ErrNotFound, ErrDuplicado, ErrNaoAutenticado, ErrAcessoNegado, ErrVotacaoEncerrada,
	ErrVotoDuplicado, ErrDadosInvalidos, ErrIndisponivel, ErrEnvioEmAndamento, ErrLimiteExcedido,
}

// Indisponivel marca como ErrIndisponivel qualquer falha que não seja um erro de negócio conhecido.
func Indisponivel(err error) error {
	if err == nil {
		return nil
	}
	for _, alvo := range conhecidos {
		if errors.Is(err, alvo) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", ErrIndisponivel, err)
}
