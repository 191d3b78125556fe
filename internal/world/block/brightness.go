package block

import "fmt"

// Индексы каналов яркости
const (
	ChannelRed = iota
	ChannelGreen
	ChannelBlue
	ChannelSky
)

// MaxLight - максимальное значение канала, используемое каталогом
const MaxLight = 15

// Brightness - четыре независимых канала освещённости (R, G, B, небо)
type Brightness [4]uint8

// SkyBrightness - прямой небесный свет
var SkyBrightness = Brightness{0, 0, 0, MaxLight}

// NewBrightness создаёт значение из каналов
func NewBrightness(r, g, b, sky uint8) Brightness {
	return Brightness{r, g, b, sky}
}

// Uniform возвращает яркость с одинаковым значением во всех каналах
func Uniform(v uint8) Brightness {
	return Brightness{v, v, v, v}
}

// Max - поканальный максимум
func (b Brightness) Max(o Brightness) Brightness {
	for i := range b {
		if o[i] > b[i] {
			b[i] = o[i]
		}
	}
	return b
}

// Sub - поканальное вычитание с насыщением в нуле
func (b Brightness) Sub(o Brightness) Brightness {
	for i := range b {
		if b[i] > o[i] {
			b[i] -= o[i]
		} else {
			b[i] = 0
		}
	}
	return b
}

// IsZero сообщает, что все каналы нулевые
func (b Brightness) IsZero() bool {
	return b == Brightness{}
}

func (b Brightness) String() string {
	return fmt.Sprintf("rgb(%d,%d,%d) sky %d", b[ChannelRed], b[ChannelGreen], b[ChannelBlue], b[ChannelSky])
}
