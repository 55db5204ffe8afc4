package lru

import (
	"math"
)

const nullPtr uint32 = math.MaxUint32

// LRU keeps keys ordered from most to least recently used, bounded by limit
type LRU struct {
	nodes    []listHead
	freeList uint32
	index    map[string]uint32
	limit    uint32

	next uint32
	prev uint32
	size uint32
}

type listHead struct {
	next uint32
	prev uint32
	key  string
}

// New ...
func New(limit uint32) *LRU {
	return &LRU{
		freeList: nullPtr,
		index:    map[string]uint32{},
		limit:    limit,

		next: nullPtr,
		prev: nullPtr,
		size: 0,
	}
}

// GetLRUList returns the keys, most recently used first
func (l *LRU) GetLRUList() []string {
	var result []string
	n := l.next
	for n != nullPtr {
		head := &l.nodes[n]
		result = append(result, head.key)
		n = head.next
	}
	return result
}

func (l *LRU) allocNode() uint32 {
	if l.freeList != nullPtr {
		addr := l.freeList
		l.freeList = l.nodes[addr].next
		return addr
	}
	l.nodes = append(l.nodes, listHead{})
	return uint32(len(l.nodes) - 1)
}

// Put inserts key as the most recently used. When the limit is reached the
// least recently used key is evicted and returned.
func (l *LRU) Put(key string) (evicted string, ok bool) {
	if addr, existed := l.index[key]; existed {
		l.touchAddr(addr)
		return "", false
	}

	if l.size >= l.limit && l.prev != nullPtr {
		evicted = l.nodes[l.prev].key
		ok = true
		l.Delete(evicted)
	}

	addr := l.allocNode()
	l.size++
	l.index[key] = addr
	head := &l.nodes[addr]
	head.key = key

	l.insertFront(addr)
	return evicted, ok
}

func (l *LRU) unlink(addr uint32) {
	head := &l.nodes[addr]

	if head.next != nullPtr {
		l.nodes[head.next].prev = head.prev
	} else {
		l.prev = head.prev
	}

	if head.prev != nullPtr {
		l.nodes[head.prev].next = head.next
	} else {
		l.next = head.next
	}
}

func (l *LRU) insertFront(addr uint32) {
	head := &l.nodes[addr]

	if l.next != nullPtr {
		l.nodes[l.next].prev = addr
	} else {
		l.prev = addr
	}

	head.next = l.next
	head.prev = nullPtr
	l.next = addr
}

// Delete removes key, returns false if it is not present
func (l *LRU) Delete(key string) bool {
	addr, ok := l.index[key]
	if !ok {
		return false
	}

	l.size--
	delete(l.index, key)
	l.unlink(addr)

	head := &l.nodes[addr]
	head.key = ""
	head.prev = nullPtr
	head.next = l.freeList
	l.freeList = addr
	return true
}

// Touch marks key as the most recently used
func (l *LRU) Touch(key string) bool {
	addr, ok := l.index[key]
	if !ok {
		return false
	}
	l.touchAddr(addr)
	return true
}

func (l *LRU) touchAddr(addr uint32) {
	l.unlink(addr)
	l.insertFront(addr)
}

// Size ...
func (l *LRU) Size() uint32 {
	return l.size
}
