package block

// ExtraData - дополнительные данные блока, хранящиеся разреженно
type ExtraData interface {
	Clone() ExtraData
}

// LiquidData хранит уровень жидкости. Уровень SourceLevel означает источник.
type LiquidData struct {
	Level uint8
}

// Clone реализует ExtraData
func (d *LiquidData) Clone() ExtraData {
	c := *d
	return &c
}

// Instance - полное состояние одной ячейки мира
type Instance struct {
	ID          BlockID
	Orientation Orientation
	Extra       ExtraData
}

// Clone возвращает копию с независимыми дополнительными данными
func (i Instance) Clone() Instance {
	if i.Extra != nil {
		i.Extra = i.Extra.Clone()
	}
	return i
}

// SameState сравнивает ID, ориентацию и уровень жидкости
func (i Instance) SameState(o Instance) bool {
	if i.ID != o.ID || i.Orientation != o.Orientation {
		return false
	}
	a, aok := i.Extra.(*LiquidData)
	b, bok := o.Extra.(*LiquidData)
	if aok != bok {
		return false
	}
	return !aok || a.Level == b.Level
}
