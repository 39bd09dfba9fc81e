// Pacote clock isola a leitura do relógio para que os serviços possam ser testados com horário fixo.
package clock

import "time"

type SystemClock struct{}

func NewSystemClock() SystemClock {
	return SystemClock{}
}

// Agora devolve o instante atual sempre em UTC, o mesmo fuso gravado no banco.
func (SystemClock) Agora() time.Time {
	return time.Now().UTC()
}
