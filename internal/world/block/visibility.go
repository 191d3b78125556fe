package block

// FaceVisibilityProperty описывает, как грань блока взаимодействует с соседней гранью
type FaceVisibilityProperty uint8

const (
	FaceSolid FaceVisibilityProperty = iota
	FaceTransparent
	FaceHollow
	FaceNonbox
)

// FaceVisibility - решение таблицы видимости
type FaceVisibility uint8

const (
	VisibleYes FaceVisibility = iota
	VisibleNo
	// VisiblePos - грань видна, только если её направление положительное
	VisiblePos
	// VisibleDiff - грань видна, только если типы блоков различаются
	VisibleDiff
)

// FaceVisibilityTable[this][neighbor]
var FaceVisibilityTable = [4][4]FaceVisibility{
	FaceSolid:       {VisibleNo, VisibleYes, VisibleYes, VisibleYes},
	FaceTransparent: {VisibleNo, VisibleDiff, VisibleYes, VisibleYes},
	FaceHollow:      {VisibleNo, VisibleYes, VisiblePos, VisibleYes},
	FaceNonbox:      {VisibleYes, VisibleYes, VisibleYes, VisibleYes},
}

// ShouldEmitFace решает, нужно ли выводить грань dir блока this, граничащую с neighbor
func ShouldEmitFace(this, neighbor Descriptor, dir Direction) bool {
	p := this.FaceVisibility(dir)
	q := neighbor.FaceVisibility(dir.Opposite())
	switch FaceVisibilityTable[p][q] {
	case VisibleYes:
		return true
	case VisiblePos:
		return dir.IsPositive()
	case VisibleDiff:
		return this.ID() != neighbor.ID()
	default:
		return false
	}
}
