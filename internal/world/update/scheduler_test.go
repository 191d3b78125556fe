package update

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recorder(order *[]int64, tag int64) func(*BlockUpdateManager) {
	return func(*BlockUpdateManager) { *order = append(*order, tag) }
}

func TestExecuteOrdersByTimeThenInsertion(t *testing.T) {
	m := NewBlockUpdateManager(nil, nil, nil)
	var order []int64
	m.AddUpdater(FuncUpdater{At: 5, Fn: recorder(&order, 50)})
	m.AddUpdater(FuncUpdater{At: 1, Fn: recorder(&order, 10)})
	m.AddUpdater(FuncUpdater{At: 3, Fn: recorder(&order, 30)})
	m.AddUpdater(FuncUpdater{At: 3, Fn: recorder(&order, 31)})

	assert.Equal(t, 4, m.Execute(10, 0))
	assert.Equal(t, []int64{10, 30, 31, 50}, order)
	assert.Equal(t, 0, m.Len())
}

func TestExecuteStopsAtNow(t *testing.T) {
	m := NewBlockUpdateManager(nil, nil, nil)
	var order []int64
	m.AddUpdater(FuncUpdater{At: 1, Fn: recorder(&order, 1)})
	m.AddUpdater(FuncUpdater{At: 2, Fn: recorder(&order, 2)})
	m.AddUpdater(FuncUpdater{At: 3, Fn: recorder(&order, 3)})

	assert.Equal(t, 2, m.Execute(2, 0))
	assert.Equal(t, int64(2), m.Now())
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, 0, m.Execute(2, 0))
	assert.Equal(t, 1, m.Execute(3, 0))
}

func TestHandlerScheduledForNowRunsInSameCall(t *testing.T) {
	m := NewBlockUpdateManager(nil, nil, nil)
	var order []int64
	m.AddUpdater(FuncUpdater{At: 1, Fn: func(m *BlockUpdateManager) {
		order = append(order, 1)
		m.AddUpdater(FuncUpdater{At: m.Now(), Fn: recorder(&order, 2)})
		m.AddUpdater(FuncUpdater{At: m.Now() + 1, Fn: recorder(&order, 3)})
	}})

	assert.Equal(t, 2, m.Execute(5, 0))
	assert.Equal(t, []int64{1, 2}, order)
	assert.Equal(t, 1, m.Len())
}

func TestExecuteBudget(t *testing.T) {
	m := NewBlockUpdateManager(nil, nil, nil)
	for i := int64(0); i < 5; i++ {
		m.AddUpdater(FuncUpdater{At: i})
	}
	assert.Equal(t, 2, m.Execute(10, 2))
	assert.Equal(t, 3, m.Len())
	assert.Equal(t, 3, m.Execute(10, -1))
}

func TestCloseForceExecutesPending(t *testing.T) {
	m := NewBlockUpdateManager(nil, nil, nil)
	var seen []int64
	record := func(m *BlockUpdateManager) {
		seen = append(seen, m.Now())
		m.AddUpdater(FuncUpdater{At: 0})
	}
	m.AddUpdater(FuncUpdater{At: 200, Fn: record})
	m.AddUpdater(FuncUpdater{At: 100, Fn: record})

	require.Equal(t, 2, m.Close(50))
	assert.Equal(t, []int64{50, 50}, seen, "при закрытии время закреплено")
	assert.Equal(t, 0, m.Len(), "обработчики, добавленные при закрытии, отбрасываются")

	m.AddUpdater(FuncUpdater{At: 1})
	assert.Equal(t, 0, m.Len())
	assert.Equal(t, 0, m.Close(60))
}
