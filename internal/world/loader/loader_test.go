package loader

import (
	"context"
	"testing"
	"time"

	"github.com/annel0/voxel-world/internal/cache"
	"github.com/annel0/voxel-world/internal/vec"
	"github.com/annel0/voxel-world/internal/world"
	"github.com/annel0/voxel-world/internal/world/block"
	"github.com/annel0/voxel-world/internal/world/block/implementations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const flatHeight = 20

func newTestLoader(t *testing.T, workers int) (*ChunkLoader, *cache.ChunkBlockDataPool, *countingReleaser) {
	t.Helper()
	c, err := implementations.NewDefaultCatalog()
	require.NoError(t, err)

	pool := cache.NewChunkBlockDataPool(cache.PoolConfig{Capacity: 64}, nil)
	r := &countingReleaser{}
	l := NewChunkLoader(c, world.NewFlatGenerator(c, flatHeight), pool, Options{Workers: workers, Releaser: r})
	t.Cleanup(func() {
		l.Close()
		pool.Close()
	})
	return l, pool, r
}

// collect ждёт n результатов или падает по таймауту
func collect(t *testing.T, l *ChunkLoader, n int) []*world.Chunk {
	t.Helper()
	var out []*world.Chunk
	deadline := time.Now().Add(10 * time.Second)
	for len(out) < n {
		if time.Now().After(deadline) {
			t.Fatalf("получено %d результатов из %d", len(out), n)
		}
		require.True(t, l.WaitForResults())
		out = append(out, l.GetAllLoadingResults()...)
	}
	return out
}

func TestShardRoutingIsDeterministic(t *testing.T) {
	l, _, _ := newTestLoader(t, 4)
	seen := map[int]bool{}
	for x := -10; x < 10; x++ {
		for z := -10; z < 10; z++ {
			pos := world.ChunkPosition{X: x, Z: z}
			s := l.ShardOf(pos)
			require.Equal(t, s, l.ShardOf(pos))
			require.GreaterOrEqual(t, s, 0)
			require.Less(t, s, 4)
			seen[s] = true
		}
	}
	assert.Len(t, seen, 4, "позиции должны распределяться по всем очередям")
}

func TestLoaderProducesLitChunks(t *testing.T) {
	l, pool, _ := newTestLoader(t, 2)

	positions := []world.ChunkPosition{{X: 0, Z: 0}, {X: 1, Z: 0}, {X: -3, Z: 2}}
	for _, p := range positions {
		l.AddLoadingTask(p)
	}
	results := collect(t, l, len(positions))

	got := map[world.ChunkPosition]*world.Chunk{}
	for _, c := range results {
		got[c.Position()] = c
	}
	for _, p := range positions {
		c, ok := got[p]
		require.True(t, ok, "нет результата для %s", p)

		assert.Equal(t, flatHeight, c.Blocks.Height(5, 5))
		assert.Equal(t, block.SkyBrightness, c.Light.Get(vec.Vec3{X: 5, Y: flatHeight + 1, Z: 5}))
		assert.True(t, c.Light.Get(vec.Vec3{X: 5, Y: 2, Z: 5}).IsZero())

		surface := c.Model(flatHeight / world.SectionSize)
		require.NotNil(t, surface)
		assert.NotEmpty(t, surface.Faces, "секция с поверхностью должна иметь грани")
		for s := 0; s < world.SectionsPerChunk; s++ {
			assert.NotNil(t, c.Model(s))
		}
		assert.True(t, pool.Contains(p))
	}
	// Соседи тоже попадают в пул
	assert.True(t, pool.Contains(world.ChunkPosition{X: -4, Z: 3}))
}

func TestLoaderUnloadReleasesModels(t *testing.T) {
	l, _, r := newTestLoader(t, 1)
	pos := world.ChunkPosition{X: 2, Z: 2}
	l.AddLoadingTask(pos)
	c := collect(t, l, 1)[0]

	l.AddUnloadingTask(c)
	deadline := time.Now().Add(5 * time.Second)
	for r.n.Load() < world.SectionsPerChunk {
		if time.Now().After(deadline) {
			t.Fatalf("освобождено %d моделей", r.n.Load())
		}
		time.Sleep(5 * time.Millisecond)
	}
	assert.Nil(t, c.Model(0))
}

func TestLoaderSetChunkBlockDataInPool(t *testing.T) {
	l, pool, _ := newTestLoader(t, 1)
	l.LoadChunk(context.Background(), world.ChunkPosition{})

	l.SetChunkBlockDataInPool(vec.Vec3{X: 1, Y: 60, Z: 1}, block.Instance{ID: block.StoneBlockID})
	flowing := &block.LiquidData{Level: 3}
	l.SetChunkBlockDataInPool(vec.Vec3{X: 2, Y: 61, Z: 1}, block.Instance{ID: block.WaterBlockID, Extra: flowing})
	flowing.Level = 5
	pool.Close()

	d, ok := pool.Get(world.ChunkPosition{})
	require.True(t, ok)
	assert.Equal(t, block.StoneBlockID, d.ID(vec.Vec3{X: 1, Y: 60, Z: 1}))
	assert.Equal(t, 60, d.Height(1, 1))
	assert.Equal(t, &block.LiquidData{Level: 3}, d.Extra(vec.Vec3{X: 2, Y: 61, Z: 1}), "уровень жидкости копируется в пул")
}

func TestLoaderCloseWakesWaiters(t *testing.T) {
	l, _, _ := newTestLoader(t, 2)
	done := make(chan bool, 1)
	go func() { done <- l.WaitForResults() }()

	time.Sleep(10 * time.Millisecond)
	l.Close()
	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("WaitForResults не проснулся после Close")
	}

	// После закрытия задачи игнорируются
	l.AddLoadingTask(world.ChunkPosition{X: 1})
	assert.Empty(t, l.GetAllLoadingResults())
	assert.Equal(t, 0, l.PendingTasks())
}
