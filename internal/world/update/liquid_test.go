package update

import (
	"testing"

	"github.com/annel0/voxel-world/internal/vec"
	"github.com/annel0/voxel-world/internal/world/block"
	"github.com/annel0/voxel-world/internal/world/block/implementations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWorld - мир на карте; слой y = -1 целиком каменный
type fakeWorld struct {
	catalog *block.Catalog
	blocks  map[vec.Vec3]block.Instance
	writes  int
}

func newFakeWorld(c *block.Catalog) *fakeWorld {
	return &fakeWorld{catalog: c, blocks: map[vec.Vec3]block.Instance{}}
}

func (w *fakeWorld) GetBlock(pos vec.Vec3) block.Instance {
	if pos.Y == -1 {
		return block.Instance{ID: block.StoneBlockID}
	}
	return w.blocks[pos]
}

func (w *fakeWorld) GetBlockDesc(pos vec.Vec3) block.Descriptor {
	return w.catalog.Get(w.GetBlock(pos).ID)
}

func (w *fakeWorld) SetBlock(pos vec.Vec3, inst block.Instance) {
	w.writes++
	if inst.ID == block.VoidBlockID {
		delete(w.blocks, pos)
		return
	}
	w.blocks[pos] = inst
}

func (w *fakeWorld) liquid(pos vec.Vec3, id block.BlockID, level uint8) {
	w.blocks[pos] = block.Instance{ID: id, Extra: &block.LiquidData{Level: level}}
}

func (w *fakeWorld) level(pos vec.Vec3) uint8 {
	if d, ok := w.blocks[pos].Extra.(*block.LiquidData); ok {
		return d.Level
	}
	return 0
}

const (
	alphaID   block.BlockID = 3
	betaID    block.BlockID = 7
	alphaMade block.BlockID = 20
	betaMade  block.BlockID = 21
)

// tieBreakCatalog: две жидкости с ID 3 и 7, у каждой своё правило реакции
func tieBreakCatalog(t *testing.T) *block.Catalog {
	t.Helper()
	c := block.NewCatalog()
	result := func(id block.BlockID) func(bool, bool) block.Instance {
		return func(bool, bool) block.Instance { return block.Instance{ID: id} }
	}
	require.NoError(t, c.Register(&block.Description{BlockID: block.StoneBlockID, BlockName: "stone", Type: block.KindSolid}))
	require.NoError(t, c.Register(&block.Description{BlockID: alphaMade, BlockName: "alpha-made", Type: block.KindSolid}))
	require.NoError(t, c.Register(&block.Description{BlockID: betaMade, BlockName: "beta-made", Type: block.KindSolid}))
	require.NoError(t, c.Register(&block.Description{
		BlockID: alphaID, BlockName: "alpha", Type: block.KindLiquid,
		Fluid: &block.LiquidDescriptor{SourceLevel: 4, SpreadDelay: 2,
			Reactions: []block.Reaction{{With: betaID, Result: result(alphaMade)}}},
	}))
	require.NoError(t, c.Register(&block.Description{
		BlockID: betaID, BlockName: "beta", Type: block.KindLiquid,
		Fluid: &block.LiquidDescriptor{SourceLevel: 4, SpreadDelay: 9,
			Reactions: []block.Reaction{{With: alphaID, Result: result(betaMade)}}},
	}))
	return c
}

func defaultCatalog(t *testing.T) *block.Catalog {
	t.Helper()
	c, err := implementations.NewDefaultCatalog()
	require.NoError(t, err)
	return c
}

var origin = vec.Vec3{}

func TestReactionResolvedByLowerID(t *testing.T) {
	c := tieBreakCatalog(t)
	cases := []struct {
		name          string
		target, other block.BlockID
		otherPos      vec.Vec3
	}{
		{"цель 3, сосед 7", alphaID, betaID, vec.Vec3{X: 1}},
		{"цель 7, сосед 3", betaID, alphaID, vec.Vec3{Z: -1}},
		{"цель 7, сосед 3 сверху", betaID, alphaID, vec.Vec3{Y: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := newFakeWorld(c)
			w.liquid(origin, tc.target, 4)
			w.liquid(tc.otherPos, tc.other, 4)
			m := NewBlockUpdateManager(w, c, nil)

			NewLiquidUpdater(origin, 0).Execute(m)
			assert.Equal(t, alphaMade, w.GetBlock(origin).ID)
			assert.Equal(t, 6, m.Len())
			assert.Equal(t, 0, m.Execute(1, 0))
			assert.Equal(t, 6, m.Execute(2, 0), "продолжения через задержку жидкости 3")
		})
	}
}

func TestFlowTieBreakIgnoresNeighborOrder(t *testing.T) {
	c := tieBreakCatalog(t)
	for _, swap := range []bool{false, true} {
		w := newFakeWorld(c)
		a, b := vec.Vec3{X: 1}, vec.Vec3{X: -1}
		if swap {
			a, b = b, a
		}
		w.liquid(a, alphaID, 4)
		w.liquid(b, betaID, 4)
		m := NewBlockUpdateManager(w, c, nil)

		NewLiquidUpdater(origin, 0).Execute(m)
		assert.Equal(t, alphaMade, w.GetBlock(origin).ID)
	}
}

func TestWaterLavaReaction(t *testing.T) {
	c := defaultCatalog(t)

	w := newFakeWorld(c)
	w.liquid(origin, block.WaterBlockID, implementations.WaterSourceLevel)
	w.liquid(vec.Vec3{X: 1}, block.LavaBlockID, implementations.LavaSourceLevel)
	NewLiquidUpdater(origin, 0).Execute(NewBlockUpdateManager(w, c, nil))
	assert.Equal(t, block.ObsidianBlockID, w.GetBlock(origin).ID)

	w = newFakeWorld(c)
	w.liquid(origin, block.LavaBlockID, implementations.LavaSourceLevel)
	w.liquid(vec.Vec3{X: 1}, block.WaterBlockID, 3)
	NewLiquidUpdater(origin, 0).Execute(NewBlockUpdateManager(w, c, nil))
	assert.Equal(t, block.ObsidianBlockID, w.GetBlock(origin).ID, "правило воды: лава-источник даёт обсидиан")

	w = newFakeWorld(c)
	w.liquid(origin, block.LavaBlockID, 2)
	w.liquid(vec.Vec3{Z: 1}, block.WaterBlockID, implementations.WaterSourceLevel)
	NewLiquidUpdater(origin, 0).Execute(NewBlockUpdateManager(w, c, nil))
	assert.Equal(t, block.CobblestoneBlockID, w.GetBlock(origin).ID)
}

func TestFlowFromSource(t *testing.T) {
	c := defaultCatalog(t)
	w := newFakeWorld(c)
	w.liquid(origin, block.WaterBlockID, implementations.WaterSourceLevel)
	m := NewBlockUpdateManager(w, c, nil)

	target := vec.Vec3{X: 1}
	NewLiquidUpdater(target, 0).Execute(m)
	assert.Equal(t, block.WaterBlockID, w.GetBlock(target).ID)
	assert.Equal(t, uint8(implementations.WaterSourceLevel-1), w.level(target))
	assert.Equal(t, 6, m.Len())

	// Повторный пересчёт без изменений ничего не пишет
	writes := w.writes
	NewLiquidUpdater(target, 0).Execute(m)
	assert.Equal(t, writes, w.writes)
}

func TestFlowFromAbove(t *testing.T) {
	c := defaultCatalog(t)
	w := newFakeWorld(c)
	w.liquid(vec.Vec3{Y: 1}, block.WaterBlockID, 2)

	NewLiquidUpdater(origin, 0).Execute(NewBlockUpdateManager(w, c, nil))
	assert.Equal(t, uint8(implementations.WaterSourceLevel-1), w.level(origin))
}

func TestDrainingNeighborDoesNotSpread(t *testing.T) {
	c := defaultCatalog(t)
	w := newFakeWorld(c)
	// Поток на высоте 1 стекает вниз в пустоту
	w.liquid(vec.Vec3{X: 1, Y: 1}, block.WaterBlockID, 5)
	target := vec.Vec3{Y: 1}

	NewLiquidUpdater(target, 0).Execute(NewBlockUpdateManager(w, c, nil))
	assert.Equal(t, block.VoidBlockID, w.GetBlock(target).ID)
	assert.Zero(t, w.writes)
}

func TestFlowDriesUpWithoutSupply(t *testing.T) {
	c := defaultCatalog(t)
	w := newFakeWorld(c)
	w.liquid(origin, block.WaterBlockID, 3)
	m := NewBlockUpdateManager(w, c, nil)

	NewLiquidUpdater(origin, 0).Execute(m)
	assert.Equal(t, block.VoidBlockID, w.GetBlock(origin).ID)
	assert.Equal(t, 6, m.Len())
}

func TestSourceAndSolidAreNotRewritten(t *testing.T) {
	c := defaultCatalog(t)
	w := newFakeWorld(c)
	w.liquid(origin, block.WaterBlockID, implementations.WaterSourceLevel)
	w.blocks[vec.Vec3{X: 1}] = block.Instance{ID: block.StoneBlockID}
	m := NewBlockUpdateManager(w, c, nil)

	NewLiquidUpdater(origin, 0).Execute(m)
	NewLiquidUpdater(vec.Vec3{X: 1}, 0).Execute(m)
	assert.Zero(t, w.writes)
	assert.Equal(t, 0, m.Len())
}

func TestAddUpdaterForNeighborhood(t *testing.T) {
	c := defaultCatalog(t)
	w := newFakeWorld(c)
	m := NewBlockUpdateManager(w, c, nil)

	assert.False(t, AddUpdaterForNeighborhood(m, origin))
	assert.Equal(t, 0, m.Len())

	w.liquid(vec.Vec3{X: 1}, block.LavaBlockID, implementations.LavaSourceLevel)
	require.True(t, AddUpdaterForNeighborhood(m, origin))
	assert.Equal(t, 0, m.Execute(implementations.LavaSpreadDelay-1, 0))
	assert.Equal(t, 1, m.Execute(implementations.LavaSpreadDelay, 0))

	w.liquid(vec.Vec3{Y: 1}, block.WaterBlockID, implementations.WaterSourceLevel)
	m.Close(implementations.LavaSpreadDelay)
	m = NewBlockUpdateManager(w, c, nil)
	require.True(t, AddUpdaterForNeighborhood(m, origin))
	assert.Equal(t, 1, m.Execute(implementations.WaterSpreadDelay, 0), "берётся наименьшая задержка")
}

func TestWaterSpreadsOverFloor(t *testing.T) {
	c := defaultCatalog(t)
	w := newFakeWorld(c)
	w.liquid(origin, block.WaterBlockID, implementations.WaterSourceLevel)
	m := NewBlockUpdateManager(w, c, nil)

	for _, n := range origin.Neighbors6() {
		AddUpdaterForNeighborhood(m, n)
	}
	for now := int64(0); now <= 1000; now++ {
		m.Execute(now, 0)
	}
	require.Equal(t, 0, m.Len(), "растекание должно завершиться")

	assert.Equal(t, uint8(7), w.level(vec.Vec3{X: 1}))
	assert.Equal(t, uint8(5), w.level(vec.Vec3{X: 3}))
	assert.Equal(t, uint8(6), w.level(vec.Vec3{X: 1, Z: 1}))
	assert.Equal(t, uint8(1), w.level(vec.Vec3{Z: -7}))
	assert.Equal(t, block.VoidBlockID, w.GetBlock(vec.Vec3{X: 8}).ID)
	assert.Equal(t, block.VoidBlockID, w.GetBlock(vec.Vec3{Y: 1}).ID)
}

func TestFollowUpsScheduledFromCurrentCall(t *testing.T) {
	c := defaultCatalog(t)
	w := newFakeWorld(c)
	w.liquid(origin, block.WaterBlockID, implementations.WaterSourceLevel)
	m := NewBlockUpdateManager(w, c, nil)

	// Обработчик давно просрочен: продолжения отсчитываются от now, а не от его времени
	m.AddUpdater(NewLiquidUpdater(vec.Vec3{X: 1}, 0))
	const now = 100
	require.Equal(t, 1, m.Execute(now, 0))
	assert.Equal(t, 6, m.Len())
	assert.Equal(t, 0, m.Execute(now+implementations.WaterSpreadDelay-1, 0))
	assert.Equal(t, 6, m.Execute(now+implementations.WaterSpreadDelay, 0))
}
