package sqlite3

import "container/list"

// stmtCacheSize is the default number of distinct SQL texts a Conn will keep
// prepared at once via Conn.Prepared.
const stmtCacheSize = 64

// stmtCache is a bounded, LRU cache of prepared statements keyed by their SQL
// text. It exists so that the object mapper (component G), including its
// predicate queries, can issue the same handful of statement shapes
// (insert, update, select-by-pk, delete) repeatedly without re-parsing SQL on
// every call, while still bounding the number of statement handles held open
// against a single Conn.
type stmtCache struct {
	cap     int
	ll      *list.List // most-recently-used at the front
	entries map[string]*list.Element
}

type cacheEntry struct {
	sql  string
	stmt *Stmt
}

func newStmtCache(capacity int) *stmtCache {
	if capacity <= 0 {
		capacity = stmtCacheSize
	}
	return &stmtCache{
		cap:     capacity,
		ll:      list.New(),
		entries: make(map[string]*list.Element, capacity),
	}
}

// get returns a cached, reset statement for sql, preparing and inserting it
// if it is not already present. Eviction finalizes the least-recently-used
// statement once the cache is at capacity.
func (c *stmtCache) get(conn *Conn, sql string) (*Stmt, error) {
	if el, ok := c.entries[sql]; ok {
		c.ll.MoveToFront(el)
		s := el.Value.(*cacheEntry).stmt
		s.Reset()
		s.ClearBindings()
		return s, nil
	}
	s, err := newStmt(conn, sql)
	if err != nil {
		return nil, err
	}
	if s.stmt == nil {
		// Comment/whitespace-only SQL isn't worth caching.
		return s, nil
	}
	el := c.ll.PushFront(&cacheEntry{sql: sql, stmt: s})
	c.entries[sql] = el
	if c.ll.Len() > c.cap {
		c.evictOldest()
	}
	return s, nil
}

func (c *stmtCache) evictOldest() {
	el := c.ll.Back()
	if el == nil {
		return
	}
	c.ll.Remove(el)
	entry := el.Value.(*cacheEntry)
	delete(c.entries, entry.sql)
	entry.stmt.Close()
}

// closeAll finalizes every cached statement. Called from Conn.Close so a
// connection never reports BUSY on close solely because of its own
// statement cache.
func (c *stmtCache) closeAll() {
	for el := c.ll.Front(); el != nil; el = el.Next() {
		el.Value.(*cacheEntry).stmt.Close()
	}
	c.ll.Init()
	c.entries = make(map[string]*list.Element, c.cap)
}
