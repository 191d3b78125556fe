package update

import (
	"sort"

	"github.com/annel0/voxel-world/internal/vec"
	"github.com/annel0/voxel-world/internal/world/block"
)

// NeighborhoodDelayCeiling - задержка, означающая отсутствие жидкости в окрестности
const NeighborhoodDelayCeiling int64 = 1 << 30

// Соседи, с которыми жидкость реагирует: четыре горизонтальных и верхний
var reactionOffsets = [5]vec.Vec3{
	{X: 1}, {X: -1}, {Z: 1}, {Z: -1}, {Y: 1},
}

var horizontalOffsets = [4]vec.Vec3{
	{X: 1}, {X: -1}, {Z: 1}, {Z: -1},
}

// LiquidUpdater пересчитывает жидкость в одной позиции: сначала реакция
// с другой жидкостью рядом, затем растекание от соседей
type LiquidUpdater struct {
	Pos vec.Vec3
	At  int64
}

// NewLiquidUpdater создаёт обработчик позиции на момент at
func NewLiquidUpdater(pos vec.Vec3, at int64) *LiquidUpdater {
	return &LiquidUpdater{Pos: pos, At: at}
}

func (u *LiquidUpdater) ExpectedUpdatingTime() int64 { return u.At }

func (u *LiquidUpdater) Execute(m *BlockUpdateManager) {
	if u.react(m) {
		return
	}
	u.flow(m)
}

// react: жидкость встречает другую жидкость среди соседей. Правило реакции
// всегда берётся у жидкости с меньшим ID.
func (u *LiquidUpdater) react(m *BlockUpdateManager) bool {
	api := m.API()
	desc := api.GetBlockDesc(u.Pos)
	liquid := desc.Liquid()
	if liquid == nil {
		return false
	}

	var other block.Descriptor
	var otherPos vec.Vec3
	for _, off := range reactionOffsets {
		p := u.Pos.Add(off)
		nd := api.GetBlockDesc(p)
		if nd.Liquid() == nil || nd.ID() == desc.ID() {
			continue
		}
		if other == nil || nd.ID() < other.ID() {
			other, otherPos = nd, p
		}
	}
	if other == nil {
		return false
	}

	thisSource := liquid.IsSource(api.GetBlock(u.Pos).Extra)
	thatSource := other.Liquid().IsSource(api.GetBlock(otherPos).Extra)

	lower, higher := desc, other
	lowerSource, higherSource := thisSource, thatSource
	if other.ID() < desc.ID() {
		lower, higher = other, desc
		lowerSource, higherSource = thatSource, thisSource
	}

	rule := lower.Liquid()
	api.SetBlock(u.Pos, rule.ReactWith(higher.ID(), lowerSource, higherSource))
	scheduleNeighbors(m, u.Pos, rule.SpreadDelay)
	return true
}

type candidate struct {
	desc  block.Descriptor
	level uint8
}

// flow: пустая ячейка или поток получает уровень от соседей
func (u *LiquidUpdater) flow(m *BlockUpdateManager) {
	api := m.API()
	current := api.GetBlock(u.Pos)
	desc := api.GetBlockDesc(u.Pos)
	liquid := desc.Liquid()

	switch {
	case liquid != nil && liquid.IsSource(current.Extra):
		return
	case liquid == nil && desc.ID() != block.VoidBlockID:
		return
	}

	candidates := u.collect(api)

	var next block.Instance
	var delay int64
	switch len(candidates) {
	case 0:
		if desc.ID() == block.VoidBlockID {
			return
		}
		next = block.Instance{ID: block.VoidBlockID}
		delay = liquid.SpreadDelay
	case 1:
		c := candidates[0]
		next = c.desc.Liquid().Instance(c.level)
		delay = c.desc.Liquid().SpreadDelay
	default:
		lower, higher := candidates[0], candidates[1]
		rule := lower.desc.Liquid()
		next = rule.ReactWith(higher.desc.ID(), false, false)
		delay = rule.SpreadDelay
	}

	if current.SameState(next) {
		return
	}
	api.SetBlock(u.Pos, next)
	scheduleNeighbors(m, u.Pos, delay)
}

// collect собирает кандидатов, оставляя у каждой жидкости наибольший уровень
// и не более двух жидкостей с наименьшими ID
func (u *LiquidUpdater) collect(api block.BlockAPI) []candidate {
	var all []candidate
	for _, off := range horizontalOffsets {
		p := u.Pos.Add(off)
		nd := api.GetBlockDesc(p)
		nl := nd.Liquid()
		if nl == nil {
			continue
		}
		level := nl.Level(api.GetBlock(p).Extra)
		if level <= 1 {
			continue
		}
		// Поток, стекающий вниз, в стороны не растекается
		if !nl.IsSource(api.GetBlock(p).Extra) && api.GetBlockDesc(p.Add(vec.Vec3{Y: -1})).ID() == block.VoidBlockID {
			continue
		}
		all = append(all, candidate{desc: nd, level: level - 1})
	}

	above := api.GetBlockDesc(u.Pos.Add(vec.Vec3{Y: 1}))
	if al := above.Liquid(); al != nil {
		all = append(all, candidate{desc: above, level: al.SourceLevel - 1})
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].desc.ID() != all[j].desc.ID() {
			return all[i].desc.ID() < all[j].desc.ID()
		}
		return all[i].level > all[j].level
	})

	out := all[:0]
	for _, c := range all {
		if len(out) > 0 && out[len(out)-1].desc.ID() == c.desc.ID() {
			continue
		}
		out = append(out, c)
		if len(out) == 2 {
			break
		}
	}
	return out
}

func scheduleNeighbors(m *BlockUpdateManager, pos vec.Vec3, delay int64) {
	at := m.Now() + delay
	for _, n := range pos.Neighbors6() {
		m.AddUpdater(NewLiquidUpdater(n, at))
	}
}

// AddUpdaterForNeighborhood планирует пересчёт pos через наименьшую задержку
// растекания среди жидкостей в pos и шести соседях. Без жидкостей ничего не планирует.
func AddUpdaterForNeighborhood(m *BlockUpdateManager, pos vec.Vec3) bool {
	delay := NeighborhoodDelayCeiling
	check := func(p vec.Vec3) {
		if l := m.API().GetBlockDesc(p).Liquid(); l != nil && l.SpreadDelay < delay {
			delay = l.SpreadDelay
		}
	}
	check(pos)
	for _, n := range pos.Neighbors6() {
		check(n)
	}
	if delay >= NeighborhoodDelayCeiling {
		return false
	}
	m.AddUpdater(NewLiquidUpdater(pos, m.Now()+delay))
	return true
}
