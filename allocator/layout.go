package allocator

// Segment is a leaf block placed at its offset in the address space
type Segment struct {
	Start    int       `json:"start"`
	Size     int       `json:"size"`
	Occupant *Occupant `json:"occupant,omitempty"`
}

// Usage summarizes the leaves of a tree
type Usage struct {
	Blocks        int `json:"blocks"`
	FreeBlocks    int `json:"freeBlocks"`
	UsedBlocks    int `json:"usedBlocks"`
	UsedMemory    int `json:"usedMemory"`
	Fragmentation int `json:"fragmentation"` // percent of leaves that are free
}

// Layout returns the leaves of the tree in address order
func Layout(root *Block) []Segment {
	return collectSegments(root, 0, nil)
}

func collectSegments(b *Block, start int, result []Segment) []Segment {
	if b == nil {
		return result
	}
	if b.IsLeaf() {
		seg := Segment{Start: start, Size: b.size}
		if b.occupant != nil {
			occ := *b.occupant
			seg.Occupant = &occ
		}
		return append(result, seg)
	}
	result = collectSegments(b.left, start, result)
	return collectSegments(b.right, start+b.size/2, result)
}

// Stats ...
func Stats(root *Block) Usage {
	var u Usage
	for _, seg := range Layout(root) {
		u.Blocks++
		if seg.Occupant == nil {
			u.FreeBlocks++
			continue
		}
		u.UsedBlocks++
		u.UsedMemory += seg.Occupant.Size
	}
	if u.Blocks > 0 {
		u.Fragmentation = NewRatio(u.FreeBlocks, u.Blocks).MulInt(100)
	}
	return u
}
