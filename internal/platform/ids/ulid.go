// Pacote ids gera identificadores ULID ordenáveis para todas as entidades.
package ids

import (
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/marcelojr/portal-eleicao/internal/domain"
)

type Generator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func NewGenerator() *Generator {
	src := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Generator{
		entropy: ulid.Monotonic(src, 0),
	}
}

func (g *Generator) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now().UTC()), g.entropy).String()
}

func (g *Generator) Eleitor() domain.EleitorID { return domain.EleitorID(g.New()) }
func (g *Generator) Cargo() domain.CargoID { return domain.CargoID(g.New()) }
func (g *Generator) Candidato() domain.CandidatoID { return domain.CandidatoID(g.New()) }
func (g *Generator) Voto() domain.VotoID { return domain.VotoID(g.New()) }
func (g *Generator) Identidade() domain.IdentidadeID { return domain.IdentidadeID(g.New()) }

var (
	defaultOnce sync.Once
	defaultGen  *Generator
)

func DefaultGenerator() *Generator {
	defaultOnce.Do(func() {
		defaultGen = NewGenerator()
	})
	return defaultGen
}

func NewULID() string {
	return DefaultGenerator().New()
}
