package block

// DefaultTopSourceHeight - высота поверхности источника жидкости
const DefaultTopSourceHeight = 0.875

// Reaction задаёт результат встречи жидкости с другой жидкостью
type Reaction struct {
	With BlockID
	// Result получает признаки источника для этой и другой жидкости
	Result func(isThisSource, isThatSource bool) Instance
}

// LiquidDescriptor описывает поведение жидкости
type LiquidDescriptor struct {
	SourceLevel uint8
	// SpreadDelay в игровых тиках
	SpreadDelay  int64
	SourceHeight float64
	Reactions    []Reaction

	owner BlockID
}

// Owner возвращает ID блока-жидкости, к которому привязан дескриптор
func (l *LiquidDescriptor) Owner() BlockID { return l.owner }

// TopSourceHeight возвращает высоту поверхности источника
func (l *LiquidDescriptor) TopSourceHeight() float64 {
	if l.SourceHeight <= 0 {
		return DefaultTopSourceHeight
	}
	return l.SourceHeight
}

// LevelToVertexHeight переводит уровень в высоту верхней грани
func (l *LiquidDescriptor) LevelToVertexHeight(level uint8) float64 {
	if level >= l.SourceLevel {
		return l.TopSourceHeight()
	}
	return l.TopSourceHeight() * float64(level) / float64(l.SourceLevel)
}

// Level извлекает уровень из дополнительных данных; 0 при их отсутствии
func (l *LiquidDescriptor) Level(extra ExtraData) uint8 {
	if d, ok := extra.(*LiquidData); ok && d != nil {
		return d.Level
	}
	return 0
}

// IsSource сообщает, является ли блок источником
func (l *LiquidDescriptor) IsSource(extra ExtraData) bool {
	return l.Level(extra) == l.SourceLevel
}

// Instance строит состояние жидкости заданного уровня
func (l *LiquidDescriptor) Instance(level uint8) Instance {
	return Instance{ID: l.owner, Extra: &LiquidData{Level: level}}
}

// ReactWith возвращает результат реакции с другой жидкостью. Без подходящего
// правила результатом остаётся сама жидкость (источник или поток).
func (l *LiquidDescriptor) ReactWith(other BlockID, isThisSource, isThatSource bool) Instance {
	for _, r := range l.Reactions {
		if r.With == other && r.Result != nil {
			return r.Result(isThisSource, isThatSource)
		}
	}
	if isThisSource {
		return l.Instance(l.SourceLevel)
	}
	return l.Instance(l.SourceLevel - 1)
}
