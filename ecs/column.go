package ecs

import "iter"

const (
	columnBlockSize = 64
)

// cell is one stored component reference.
type cell struct {
	data    any
	foreign bool
}

// column stores the values of one archetype column in fixed-size blocks.
// Deleted slots are recycled, so row indices stay stable until Compact is
// called.
type column[T any] struct {
	blocks    [][columnBlockSize]T
	filled    [][columnBlockSize]bool
	freeSlots []int
	nextIndex int
}

// Append stores a component and returns its row.
func (c *column[T]) Append(item T) int {
	if len(c.freeSlots) > 0 {
		index := c.freeSlots[len(c.freeSlots)-1]
		c.freeSlots = c.freeSlots[:len(c.freeSlots)-1]
		c.set(index, item)
		return index
	}

	index := c.nextIndex
	c.nextIndex++

	if index/columnBlockSize >= len(c.blocks) {
		c.blocks = append(c.blocks, [columnBlockSize]T{})
		c.filled = append(c.filled, [columnBlockSize]bool{})
	}

	c.set(index, item)
	return index
}

func (c *column[T]) set(index int, item T) {
	blockIdx := index / columnBlockSize
	slotIdx := index % columnBlockSize
	c.blocks[blockIdx][slotIdx] = item
	c.filled[blockIdx][slotIdx] = true
}

// Get returns the value at row and whether the row is occupied.
func (c *column[T]) Get(index int) (T, bool) {
	if !c.Has(index) {
		var zero T
		return zero, false
	}
	return c.blocks[index/columnBlockSize][index%columnBlockSize], true
}

// Delete empties a row and zeroes the value it held.
func (c *column[T]) Delete(index int) {
	if !c.Has(index) {
		return
	}

	blockIdx := index / columnBlockSize
	slotIdx := index % columnBlockSize
	var zero T
	c.filled[blockIdx][slotIdx] = false
	c.blocks[blockIdx][slotIdx] = zero
	c.freeSlots = append(c.freeSlots, index)
}

// Has checks if a row is occupied.
func (c *column[T]) Has(index int) bool {
	if index < 0 || index >= c.nextIndex {
		return false
	}
	return c.filled[index/columnBlockSize][index%columnBlockSize]
}

// Len returns the number of occupied rows.
func (c *column[T]) Len() int {
	return c.nextIndex - len(c.freeSlots)
}

// Compact moves occupied rows to the front and returns the old->new row mapping.
func (c *column[T]) Compact() map[int]int {
	indexMap := make(map[int]int)

	total := c.Len()
	if total == 0 {
		c.blocks = nil
		c.filled = nil
		c.freeSlots = nil
		c.nextIndex = 0
		return indexMap
	}

	numBlocks := (total + columnBlockSize - 1) / columnBlockSize
	newBlocks := make([][columnBlockSize]T, numBlocks)
	newFilled := make([][columnBlockSize]bool, numBlocks)

	writePos := 0
	for readIdx := range c.Iter() {
		indexMap[readIdx] = writePos
		newBlocks[writePos/columnBlockSize][writePos%columnBlockSize] = c.blocks[readIdx/columnBlockSize][readIdx%columnBlockSize]
		newFilled[writePos/columnBlockSize][writePos%columnBlockSize] = true
		writePos++
	}

	c.blocks = newBlocks
	c.filled = newFilled
	c.freeSlots = nil
	c.nextIndex = writePos
	return indexMap
}

// Iter yields occupied rows in ascending order.
func (c *column[T]) Iter() iter.Seq[int] {
	return func(yield func(int) bool) {
		for i := 0; i < c.nextIndex; i++ {
			if c.filled[i/columnBlockSize][i%columnBlockSize] {
				if !yield(i) {
					return
				}
			}
		}
	}
}
