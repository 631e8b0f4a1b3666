package utils

import (
	"errors"
	"math"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionMap(t *testing.T) {
	{ // Bucket sizes are balanced to within one item
		getHisto := func(K, Np int) (histo map[int]int) {
			pm := NewPartitionMap(Np, K)
			histo = make(map[int]int)
			for np := 0; np < pm.ParallelDegree; np++ {
				maxK := pm.GetBucketDimension(np)
				histo[maxK]++
			}
			return
		}
		getTotal := func(histo map[int]int) (total int) {
			for key, count := range histo {
				total += key * count
			}
			return
		}
		assert.Equal(t, map[int]int{0: 30, 1: 2}, getHisto(2, 32))
		assert.Equal(t, map[int]int{1: 32}, getHisto(32, 32))
		assert.Equal(t, map[int]int{8: 32}, getHisto(256, 32))
		assert.Equal(t, map[int]int{8: 1, 9: 31}, getHisto(287, 32))
		assert.Equal(t, 287, getTotal(getHisto(287, 32)))
		for n := 64; n < 2000; n++ {
			var (
				keys   [2]float64
				keyNum int
			)
			histo := getHisto(n, 32)
			for key := range histo {
				keys[keyNum] = float64(key)
				keyNum++
			}
			if keyNum == 2 {
				assert.Equal(t, 1., math.Abs(keys[0]-keys[1]))
			}
			assert.Equal(t, n, getTotal(histo))
		}
	}
}

func TestPartitionMap_Run(t *testing.T) {
	var (
		K     = 1001
		pm    = NewPartitionMap(7, K)
		seen  = make([]int32, K)
		calls int32
	)
	err := pm.Run(func(bn, kMin, kMax int) error {
		atomic.AddInt32(&calls, 1)
		for k := kMin; k < kMax; k++ {
			atomic.AddInt32(&seen[k], 1)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int32(7), calls)
	for k := range seen {
		assert.Equal(t, int32(1), seen[k], "index %d", k)
	}

	boom := errors.New("boom")
	err = pm.Run(func(bn, kMin, kMax int) error {
		if bn == 3 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)

	// Empty buckets are not dispatched
	pm = NewPartitionMap(8, 2)
	calls = 0
	require.NoError(t, pm.Run(func(bn, kMin, kMax int) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}))
	assert.Equal(t, int32(2), calls)
}

func TestDynBuffer(t *testing.T) {
	db := NewDynBuffer[float32](2)
	db.Add(1, 2)
	db.Add(3, 4, 5)
	assert.Equal(t, 5, db.Len())
	assert.Equal(t, []float32{1, 2, 3, 4, 5}, db.Cells())
	other := NewDynBuffer[float32](0)
	other.Add(6)
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, Concat([]*DynBuffer[float32]{db, nil, other}))
}

func TestCountNaN(t *testing.T) {
	assert.Equal(t, 0, CountNaN([]float64{1, 2, math.Inf(1)}))
	assert.Equal(t, 2, CountNaN([]float32{float32(math.NaN()), 0, float32(math.NaN())}))
	assert.Equal(t, 0, CountNaN[float64](nil))
	assert.Contains(t, MemUsage(), "MiB")
}
