package eth

import (
	"github.com/ethereum/go-ethereum/common"
	lru "github.com/hashicorp/golang-lru"
)

// DefaultTrackSize is the number of submitted transactions whose state is remembered.
const DefaultTrackSize = 1_024

// tracker remembers the lifecycle state of recently handled transactions.
type tracker struct {
	cache *lru.Cache
}

func newTracker(size int) (*tracker, error) {
	if size <= 0 {
		size = DefaultTrackSize
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &tracker{cache: cache}, nil
}

func (t *tracker) set(hash common.Hash, state TxState) {
	t.cache.Add(hash, state)
}

// advance moves hash to state unless it already reached a final state.
func (t *tracker) advance(hash common.Hash, state TxState) {
	if cur, ok := t.get(hash); ok && cur.Final() {
		return
	}
	t.set(hash, state)
}

func (t *tracker) get(hash common.Hash) (TxState, bool) {
	v, ok := t.cache.Get(hash)
	if !ok {
		return 0, false
	}
	return v.(TxState), true
}
