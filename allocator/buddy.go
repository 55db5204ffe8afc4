package allocator

// Allocate reserves the smallest power of two block that fits size for name.
// Every visited block is recorded in the history. Splits done during a failed
// search are kept.
func (a *Allocator) Allocate(name string, size int) bool {
	if name == "" || size <= 0 {
		a.record(EntryInvalid, invalidMessage)
		return false
	}

	if a.root.containsName(name) {
		a.record(EntryDuplicate, duplicateMessage(name))
		return false
	}

	colorID := a.nextColorID
	a.nextColorID++

	// no block can hold it, the search ends at the root
	if size > a.capacity {
		a.record(EntryEvaluating, evaluatingMessage(a.root.size))
		a.record(EntryExhausted, diedMessage(name))
		return false
	}

	realSize, _ := NextPowerOfTwo(size)
	occ := Occupant{
		Name:    name,
		Size:    realSize,
		ColorID: colorID,
	}

	if !a.allocateRec(a.root, occ) {
		a.record(EntryExhausted, diedMessage(name))
		return false
	}
	return true
}

func (a *Allocator) allocateRec(b *Block, occ Occupant) bool {
	a.record(EntryEvaluating, evaluatingMessage(b.size))

	if !b.IsLeaf() {
		if a.allocateRec(b.left, occ) {
			return true
		}
		return a.allocateRec(b.right, occ)
	}

	if !b.IsFree() || b.size < occ.Size {
		return false
	}

	if b.size == occ.Size {
		b.occupant = &occ
		a.record(EntryAssigned, assignedMessage(occ))
		return true
	}

	b.split()
	a.record(EntrySplit, splitMessage(b.size))

	return a.allocateRec(b.left, occ)
}

// Free releases the block held by name, merging free buddies on the way up
func (a *Allocator) Free(name string) bool {
	if !a.freeRec(a.root, name) {
		a.record(EntryNotFound, notFoundMessage(name))
		return false
	}
	return true
}

func (a *Allocator) freeRec(b *Block, name string) bool {
	if b == nil {
		return false
	}

	if b.occupant != nil && b.occupant.Name == name {
		b.occupant = nil
		a.record(EntryReleased, releasedMessage(name))
		return true
	}

	found := a.freeRec(b.left, name) || a.freeRec(b.right, name)
	if found && b.tryMerge() {
		a.record(EntryMerged, mergedMessage(b.size))
	}
	return found
}
