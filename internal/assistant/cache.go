package assistant

import (
	"container/list"
	"sync"
)

// QueryCache is an LRU cache of query results keyed by the corrected
// query text. Only successful, stateless query results are stored;
// confirmations and CRUD outcomes never land here.
type QueryCache struct {
	mutex   sync.Mutex
	cache   map[string]*list.Element
	order   *list.List
	maxSize int
}

type cacheEntry struct {
	key    string
	result Result
}

// NewQueryCache creates a cache holding up to maxSize entries.
func NewQueryCache(maxSize int) *QueryCache {
	if maxSize <= 0 {
		maxSize = 100
	}
	return &QueryCache{
		cache:   make(map[string]*list.Element),
		order:   list.New(),
		maxSize: maxSize,
	}
}

// Get returns the cached result for the query, if any.
func (qc *QueryCache) Get(query string) (Result, bool) {
	qc.mutex.Lock()
	defer qc.mutex.Unlock()
	elem, ok := qc.cache[query]
	if !ok {
		return Result{}, false
	}
	qc.order.MoveToFront(elem)
	return elem.Value.(*cacheEntry).result, true
}

// Set stores a result, evicting the least recently used entry when
// the cache is full. Only cacheable results are accepted.
func (qc *QueryCache) Set(query string, result Result) {
	if !cacheable(result) {
		return
	}
	qc.mutex.Lock()
	defer qc.mutex.Unlock()
	if elem, ok := qc.cache[query]; ok {
		elem.Value.(*cacheEntry).result = result
		qc.order.MoveToFront(elem)
		return
	}
	if len(qc.cache) >= qc.maxSize {
		oldest := qc.order.Back()
		if oldest != nil {
			qc.order.Remove(oldest)
			delete(qc.cache, oldest.Value.(*cacheEntry).key)
		}
	}
	qc.cache[query] = qc.order.PushFront(&cacheEntry{key: query, result: result})
}

// Invalidate drops every entry. Called after any write command, since
// cached listings may now be stale.
func (qc *QueryCache) Invalidate() {
	qc.mutex.Lock()
	defer qc.mutex.Unlock()
	qc.cache = make(map[string]*list.Element)
	qc.order.Init()
}

// Len returns the number of cached entries.
func (qc *QueryCache) Len() int {
	qc.mutex.Lock()
	defer qc.mutex.Unlock()
	return len(qc.cache)
}

// cacheable reports whether a result is a successful stateless query
// outcome.
func cacheable(r Result) bool {
	return r.Success && !r.AwaitingConfirmation && !r.RequiresConfirmation &&
		!r.ConfirmationProcessed && r.Error == ""
}
