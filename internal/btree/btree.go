package btree

import "minidb/internal/heap"

// BTree is a sequence of pages created in insertion order (page id = index
// in the sequence), per spec.md §3. It owns its pages outright; unlike
// HeapFile it does not borrow a BufferPool, since an index tree is small
// enough to keep resident for the lifetime of its owning table.
type BTree struct {
	pages   []*nodePage
	hasRoot bool
	root    PageID
}

// nodePage is a raw 4096-byte buffer holding one encoded node.
type nodePage struct {
	buf [4096]byte
}

// New returns an empty tree.
func New() *BTree {
	return &BTree{}
}

func (t *BTree) allocPage() PageID {
	id := PageID(len(t.pages))
	t.pages = append(t.pages, &nodePage{})
	return id
}

func (t *BTree) readNode(id PageID) nodeData {
	return decodeNode(t.pages[id].buf[:])
}

func (t *BTree) writeNode(id PageID, nd nodeData) {
	copy(t.pages[id].buf[:], encodeNode(nd))
}

// Search returns the RID stored under key, if present.
func (t *BTree) Search(key int64) (heap.RID, bool) {
	if !t.hasRoot {
		return heap.RID{}, false
	}
	id := t.root
	for {
		nd := t.readNode(id)
		if nd.leaf {
			for i, k := range nd.keys {
				if k == key {
					return nd.rids[i], true
				}
			}
			return heap.RID{}, false
		}
		id = nd.children[nd.findChildIndex(key)]
	}
}

// RangeScan returns the RID of every key with lo <= key <= hi, in ascending key order,
// by descending to the leaf that would hold lo and walking leaf-sibling
// links from there.
func (t *BTree) RangeScan(lo, hi int64) []heap.RID {
	if !t.hasRoot {
		return nil
	}
	id := t.root
	for {
		nd := t.readNode(id)
		if nd.leaf {
			break
		}
		id = nd.children[nd.findChildIndex(lo)]
	}

	var out []heap.RID
	for {
		nd := t.readNode(id)
		for i, k := range nd.keys {
			if k < lo {
				continue
			}
			if k > hi {
				return out
			}
			out = append(out, nd.rids[i])
		}
		if nd.next == noNext {
			return out
		}
		id = nd.next
	}
}

// Insert places key/rid into the tree, splitting leaves (and, on cascade,
// internal nodes) that overflow MaxKeys.
func (t *BTree) Insert(key int64, rid heap.RID) {
	if !t.hasRoot {
		id := t.allocPage()
		t.writeNode(id, nodeData{leaf: true, keys: []int64{key}, rids: []heap.RID{rid}, next: noNext})
		t.root = id
		t.hasRoot = true
		return
	}

	path := t.pathToLeaf(key)
	leafID := path[len(path)-1]
	nd := t.readNode(leafID)

	pos := 0
	for pos < len(nd.keys) && nd.keys[pos] < key {
		pos++
	}
	nd.keys = insertInt64At(nd.keys, pos, key)
	nd.rids = insertRIDAt(nd.rids, pos, rid)

	if len(nd.keys) <= MaxKeys {
		t.writeNode(leafID, nd)
		return
	}

	mid := len(nd.keys) / 2
	rightID := t.allocPage()
	right := nodeData{
		leaf: true,
		keys: append([]int64{}, nd.keys[mid:]...),
		rids: append([]heap.RID{}, nd.rids[mid:]...),
		next: nd.next,
	}
	left := nodeData{
		leaf: true,
		keys: append([]int64{}, nd.keys[:mid]...),
		rids: append([]heap.RID{}, nd.rids[:mid]...),
		next: rightID,
	}
	t.writeNode(leafID, left)
	t.writeNode(rightID, right)
	t.insertIntoParent(path[:len(path)-1], leafID, right.keys[0], rightID)
}

// pathToLeaf returns the page ids visited from root to leaf, inclusive,
// while descending toward key.
func (t *BTree) pathToLeaf(key int64) []PageID {
	var path []PageID
	id := t.root
	for {
		path = append(path, id)
		nd := t.readNode(id)
		if nd.leaf {
			return path
		}
		id = nd.children[nd.findChildIndex(key)]
	}
}

// insertIntoParent attaches a new right sibling under the separator key,
// cascading splits up ancestorPath (root-to-parent, excluding the child
// level) as needed. An empty ancestorPath means leftID was the root.
func (t *BTree) insertIntoParent(ancestorPath []PageID, leftID PageID, sepKey int64, rightID PageID) {
	if len(ancestorPath) == 0 {
		newRoot := t.allocPage()
		t.writeNode(newRoot, nodeData{leaf: false, keys: []int64{sepKey}, children: []PageID{leftID, rightID}})
		t.root = newRoot
		t.hasRoot = true
		return
	}

	parentID := ancestorPath[len(ancestorPath)-1]
	nd := t.readNode(parentID)

	idx := 0
	for i, c := range nd.children {
		if c == leftID {
			idx = i
			break
		}
	}
	nd.keys = insertInt64At(nd.keys, idx, sepKey)
	nd.children = insertPageIDAt(nd.children, idx+1, rightID)

	if len(nd.keys) <= MaxKeys {
		t.writeNode(parentID, nd)
		return
	}

	mid := len(nd.keys) / 2
	pushUp := nd.keys[mid]
	left := nodeData{
		leaf:     false,
		keys:     append([]int64{}, nd.keys[:mid]...),
		children: append([]PageID{}, nd.children[:mid+1]...),
	}
	right := nodeData{
		leaf:     false,
		keys:     append([]int64{}, nd.keys[mid+1:]...),
		children: append([]PageID{}, nd.children[mid+1:]...),
	}
	rightID2 := t.allocPage()
	t.writeNode(parentID, left)
	t.writeNode(rightID2, right)
	t.insertIntoParent(ancestorPath[:len(ancestorPath)-1], parentID, pushUp, rightID2)
}

func insertInt64At(s []int64, pos int, v int64) []int64 {
	s = append(s, 0)
	copy(s[pos+1:], s[pos:])
	s[pos] = v
	return s
}

func insertRIDAt(s []heap.RID, pos int, v heap.RID) []heap.RID {
	s = append(s, heap.RID{})
	copy(s[pos+1:], s[pos:])
	s[pos] = v
	return s
}

func insertPageIDAt(s []PageID, pos int, v PageID) []PageID {
	s = append(s, 0)
	copy(s[pos+1:], s[pos:])
	s[pos] = v
	return s
}
