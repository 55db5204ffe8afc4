package allocator

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlock_SplitAndMerge(t *testing.T) {
	b := newBlock(16)
	assert.True(t, b.IsLeaf())
	assert.True(t, b.IsFree())
	assert.False(t, b.tryMerge())

	b.split()
	assert.False(t, b.IsLeaf())
	assert.False(t, b.IsFree())
	assert.Equal(t, 8, b.Left().Size())
	assert.Equal(t, 8, b.Right().Size())

	b.left.occupant = &Occupant{Name: "A", Size: 8}
	assert.False(t, b.tryMerge())

	b.left.occupant = nil
	assert.True(t, b.tryMerge())
	assert.True(t, b.IsFree())
	assert.Nil(t, b.Left())
	assert.Nil(t, b.Right())
}

func TestBlock_MergeOnlyLeafChildren(t *testing.T) {
	b := newBlock(16)
	b.split()
	b.left.split()

	assert.False(t, b.tryMerge())
}

func TestBlock_Occupant(t *testing.T) {
	b := newBlock(4)
	_, ok := b.Occupant()
	assert.False(t, ok)

	b.occupant = &Occupant{Name: "A", Size: 4, ColorID: 3}
	occ, ok := b.Occupant()
	assert.True(t, ok)
	assert.Equal(t, Occupant{Name: "A", Size: 4, ColorID: 3}, occ)
	assert.False(t, b.IsFree())

	occ.Name = "B"
	assert.Equal(t, "A", b.occupant.Name)
}

func TestBlock_Clone(t *testing.T) {
	b := newBlock(8)
	b.split()
	b.left.occupant = &Occupant{Name: "A", Size: 4}

	c := b.Clone()
	assert.Equal(t, b, c)

	c.left.occupant.Name = "changed"
	c.right.split()
	assert.Equal(t, "A", b.left.occupant.Name)
	assert.True(t, b.right.IsLeaf())

	var nilBlock *Block
	assert.Nil(t, nilBlock.Clone())
}

func TestBlock_MarshalJSON(t *testing.T) {
	b := newBlock(8)
	b.split()
	b.left.occupant = &Occupant{Name: "A", Size: 4, ColorID: 1}

	data, err := json.Marshal(b)
	assert.NoError(t, err)
	assert.JSONEq(t, `{
		"size": 8, "leaf": false, "free": false,
		"left": {"size": 4, "leaf": true, "free": false, "occupant": {"name": "A", "size": 4, "colorId": 1}},
		"right": {"size": 4, "leaf": true, "free": true}
	}`, string(data))
}

func TestHistoryEntry_MarshalJSON(t *testing.T) {
	a := New(Config{Capacity: 2})

	data, err := json.Marshal(a.History()[0])
	assert.NoError(t, err)
	assert.JSONEq(t, `{
		"step": 0, "kind": "initialized", "message": "memory initialized",
		"snapshot": {"size": 2, "leaf": true, "free": true}
	}`, string(data))
}
