// Package btree implements the order-4 B+Tree index described by
// spec.md §3/§4.6: a byte-exact internal/leaf node layout, search,
// insert-with-split, and a sibling-linked leaf range scan.
package btree

import (
	"encoding/binary"

	"minidb/internal/heap"
	"minidb/internal/slotted"
	"minidb/internal/storagepage"
)

// MaxKeys is the B+Tree order parameter: after a split, each resulting
// node holds at most MaxKeys keys; a node becomes full at MaxKeys+1.
const MaxKeys = 4

// PageID identifies a node within one tree's own page sequence (index of
// creation order), independent of the heap file's page ids.
type PageID = storagepage.PageID

// noNext marks a leaf's next-sibling field as absent. Safe as a sentinel
// because page id 0 is always the first-allocated (leftmost) page in a
// tree, so it is never itself a right sibling.
const noNext PageID = 0

// nodeData is the decoded, in-memory form of one node. Encoding/decoding to
// the spec's byte layout happens only at tree-mutation boundaries so split
// logic can operate on plain slices.
type nodeData struct {
	leaf bool

	// internal
	keys     []int64
	children []PageID // len(children) == len(keys)+1

	// leaf
	rids []heap.RID // len(rids) == len(keys)
	next PageID      // 0 means "none"
}

// findChildIndex returns the first child index i such that key < keys[i],
// or len(keys) (the last child) if none.
func (nd nodeData) findChildIndex(key int64) int {
	for i, k := range nd.keys {
		if key < k {
			return i
		}
	}
	return len(nd.keys)
}

// encodeNode writes nd into the byte-exact on-page layout of spec.md §3.
func encodeNode(nd nodeData) []byte {
	buf := make([]byte, storagepage.PageSize)
	binary.LittleEndian.PutUint16(buf[1:3], uint16(len(nd.keys)))
	if nd.leaf {
		buf[0] = 1
		binary.LittleEndian.PutUint16(buf[3:5], uint16(nd.next))
		off := 5
		for i, k := range nd.keys {
			binary.LittleEndian.PutUint64(buf[off:off+8], uint64(k))
			off += 8
			binary.LittleEndian.PutUint16(buf[off:off+2], uint16(nd.rids[i].PageID))
			off += 2
			binary.LittleEndian.PutUint16(buf[off:off+2], uint16(nd.rids[i].SlotID))
			off += 2
		}
		return buf
	}

	buf[0] = 0
	off := 3
	for i, k := range nd.keys {
		binary.LittleEndian.PutUint16(buf[off:off+2], uint16(nd.children[i]))
		off += 2
		binary.LittleEndian.PutUint64(buf[off:off+8], uint64(k))
		off += 8
	}
	// Trailing child pointer.
	binary.LittleEndian.PutUint16(buf[off:off+2], uint16(nd.children[len(nd.keys)]))
	return buf
}

// decodeNode parses a byte-exact node buffer into nodeData.
func decodeNode(buf []byte) nodeData {
	numKeys := int(binary.LittleEndian.Uint16(buf[1:3]))
	if buf[0] == 1 {
		nd := nodeData{
			leaf: true,
			next: PageID(binary.LittleEndian.Uint16(buf[3:5])),
			keys: make([]int64, numKeys),
			rids: make([]heap.RID, numKeys),
		}
		off := 5
		for i := 0; i < numKeys; i++ {
			nd.keys[i] = int64(binary.LittleEndian.Uint64(buf[off : off+8]))
			off += 8
			pid := storagepage.PageID(binary.LittleEndian.Uint16(buf[off : off+2]))
			off += 2
			sid := binary.LittleEndian.Uint16(buf[off : off+2])
			off += 2
			nd.rids[i] = heap.RID{PageID: pid, SlotID: slotted.SlotID(sid)}
		}
		return nd
	}

	nd := nodeData{
		leaf:     false,
		keys:     make([]int64, numKeys),
		children: make([]PageID, numKeys+1),
	}
	off := 3
	for i := 0; i < numKeys; i++ {
		nd.children[i] = PageID(binary.LittleEndian.Uint16(buf[off : off+2]))
		off += 2
		nd.keys[i] = int64(binary.LittleEndian.Uint64(buf[off : off+8]))
		off += 8
	}
	nd.children[numKeys] = PageID(binary.LittleEndian.Uint16(buf[off : off+2]))
	return nd
}
