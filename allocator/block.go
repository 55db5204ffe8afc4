package allocator

import "encoding/json"

// Occupant is the named request currently filling a leaf block
type Occupant struct {
	Name    string `json:"name"`
	Size    int    `json:"size"`
	ColorID int    `json:"colorId"`
}

// Block is a node of the buddy tree. A leaf has no children, an internal node
// always has exactly two children of half its size.
type Block struct {
	size     int
	occupant *Occupant
	left     *Block
	right    *Block
}

func newBlock(size int) *Block {
	return &Block{size: size}
}

// Size ...
func (b *Block) Size() int {
	return b.size
}

// IsLeaf ...
func (b *Block) IsLeaf() bool {
	return b.left == nil && b.right == nil
}

// IsFree reports whether the block is a leaf without occupant
func (b *Block) IsFree() bool {
	return b.IsLeaf() && b.occupant == nil
}

// Occupant returns a copy of the occupant, ok = false when there is none
func (b *Block) Occupant() (Occupant, bool) {
	if b.occupant == nil {
		return Occupant{}, false
	}
	return *b.occupant, true
}

// Left ...
func (b *Block) Left() *Block {
	return b.left
}

// Right ...
func (b *Block) Right() *Block {
	return b.right
}

func (b *Block) split() {
	half := b.size >> 1
	b.left = newBlock(half)
	b.right = newBlock(half)
}

// tryMerge collapses two free children into b. Returns true if merged.
func (b *Block) tryMerge() bool {
	if b.IsLeaf() {
		return false
	}
	if !b.left.IsFree() || !b.right.IsFree() {
		return false
	}
	b.left = nil
	b.right = nil
	return true
}

// Clone returns a deep copy sharing nothing with b
func (b *Block) Clone() *Block {
	if b == nil {
		return nil
	}
	result := &Block{size: b.size}
	if b.occupant != nil {
		occ := *b.occupant
		result.occupant = &occ
	}
	result.left = b.left.Clone()
	result.right = b.right.Clone()
	return result
}

func (b *Block) containsName(name string) bool {
	if b == nil {
		return false
	}
	if b.occupant != nil && b.occupant.Name == name {
		return true
	}
	return b.left.containsName(name) || b.right.containsName(name)
}

func (b *Block) collectOccupants(result []Occupant) []Occupant {
	if b == nil {
		return result
	}
	if b.occupant != nil {
		result = append(result, *b.occupant)
	}
	result = b.left.collectOccupants(result)
	return b.right.collectOccupants(result)
}

type blockJSON struct {
	Size     int        `json:"size"`
	Leaf     bool       `json:"leaf"`
	Free     bool       `json:"free"`
	Occupant *Occupant  `json:"occupant,omitempty"`
	Left     *blockJSON `json:"left,omitempty"`
	Right    *blockJSON `json:"right,omitempty"`
}

func (b *Block) toJSON() *blockJSON {
	if b == nil {
		return nil
	}
	return &blockJSON{
		Size:     b.size,
		Leaf:     b.IsLeaf(),
		Free:     b.IsFree(),
		Occupant: b.occupant,
		Left:     b.left.toJSON(),
		Right:    b.right.toJSON(),
	}
}

// MarshalJSON encodes the subtree for external renderers
func (b *Block) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.toJSON())
}
