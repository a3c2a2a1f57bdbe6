// Package slotted implements the byte-exact slotted-page record layout
// used by heap pages: a small header, a slot directory growing forward from
// the header, and variable-length records growing backward from the page
// end.
package slotted

import (
	"encoding/binary"
	"errors"

	"minidb/internal/storagepage"
)

// ErrNotEnoughFreeSpace is returned by Insert when a record does not fit
// even after compaction.
var ErrNotEnoughFreeSpace = errors.New("slotted: not enough free space")

const (
	// HeaderSize is the 6-byte page header: num_slots, free_space_start,
	// free_space_end, all uint16 little-endian.
	HeaderSize = 6
	// SlotSize is the 4-byte directory entry: record_offset, record_length.
	SlotSize = 4
)

// SlotID is a record's index within the slot directory.
type SlotID uint16

// Page wraps a storagepage.Page as a slotted page.
type Page struct {
	page *storagepage.Page
}

// Wrap interprets an already-initialized page as a slotted page.
func Wrap(page *storagepage.Page) *Page {
	return &Page{page: page}
}

// Init sets a fresh page's header to (0, HeaderSize, PageSize).
func Init(page *storagepage.Page) *Page {
	sp := &Page{page: page}
	sp.setNumSlots(0)
	sp.setFreeSpaceStart(HeaderSize)
	sp.setFreeSpaceEnd(storagepage.PageSize)
	return sp
}

func (sp *Page) numSlots() uint16       { return binary.LittleEndian.Uint16(sp.page.Read(0, 2)) }
func (sp *Page) setNumSlots(n uint16)   { sp.page.Write(0, le16(n)) }
func (sp *Page) freeSpaceStart() uint16 { return binary.LittleEndian.Uint16(sp.page.Read(2, 2)) }
func (sp *Page) setFreeSpaceStart(v uint16) {
	sp.page.Write(2, le16(v))
}
func (sp *Page) freeSpaceEnd() uint16 { return binary.LittleEndian.Uint16(sp.page.Read(4, 2)) }
func (sp *Page) setFreeSpaceEnd(v uint16) {
	sp.page.Write(4, le16(v))
}

func le16(v uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return b
}

// slotCapacity is the number of directory entries currently allocated,
// including dead (zeroed) ones.
func (sp *Page) slotCapacity() int {
	return (int(sp.freeSpaceStart()) - HeaderSize) / SlotSize
}

func (sp *Page) slotOffset(id int) int {
	return HeaderSize + id*SlotSize
}

func (sp *Page) slotEntry(id int) (offset, length uint16) {
	off := sp.slotOffset(id)
	b := sp.page.Read(off, SlotSize)
	return binary.LittleEndian.Uint16(b[0:2]), binary.LittleEndian.Uint16(b[2:4])
}

func (sp *Page) setSlotEntry(id int, offset, length uint16) {
	b := make([]byte, SlotSize)
	binary.LittleEndian.PutUint16(b[0:2], offset)
	binary.LittleEndian.PutUint16(b[2:4], length)
	sp.page.Write(sp.slotOffset(id), b)
}

// FreeSpace returns free_space_end - free_space_start.
func (sp *Page) FreeSpace() int {
	return int(sp.freeSpaceEnd()) - int(sp.freeSpaceStart())
}

// NumSlots returns the count of live records (not directory capacity).
func (sp *Page) NumSlots() int {
	return int(sp.numSlots())
}

// Get returns a copy of the record stored at id, or nil if the slot is
// outside the live directory or empty.
func (sp *Page) Get(id SlotID) []byte {
	if int(id) >= sp.slotCapacity() {
		return nil
	}
	off, length := sp.slotEntry(int(id))
	if off == 0 {
		return nil
	}
	out := make([]byte, length)
	copy(out, sp.page.Read(int(off), int(length)))
	return out
}

// Insert stores data in the first available slot, compacting the page in
// place if there is not currently enough contiguous free space.
func (sp *Page) Insert(data []byte) (SlotID, error) {
	needed := len(data) + SlotSize
	if needed > sp.FreeSpace() {
		sp.compact()
		if needed > sp.FreeSpace() {
			return 0, ErrNotEnoughFreeSpace
		}
	}

	newEnd := int(sp.freeSpaceEnd()) - len(data)
	sp.page.Write(newEnd, data)
	sp.setFreeSpaceEnd(uint16(newEnd))

	capacity := sp.slotCapacity()
	slotID := -1
	for i := 0; i < capacity; i++ {
		off, _ := sp.slotEntry(i)
		if off == 0 {
			slotID = i
			break
		}
	}
	if slotID == -1 {
		slotID = capacity
		sp.setFreeSpaceStart(sp.freeSpaceStart() + SlotSize)
	}
	sp.setSlotEntry(slotID, uint16(newEnd), uint16(len(data)))
	sp.setNumSlots(sp.numSlots() + 1)
	return SlotID(slotID), nil
}

// Delete zeroes the slot entry for id. The record payload is not reclaimed
// until the next compaction.
func (sp *Page) Delete(id SlotID) {
	capacity := sp.slotCapacity()
	if int(id) >= capacity {
		return
	}
	off, _ := sp.slotEntry(int(id))
	if off == 0 {
		return // already empty
	}
	sp.setSlotEntry(int(id), 0, 0)
	if int(id) == capacity-1 {
		sp.setFreeSpaceStart(sp.freeSpaceStart() - SlotSize)
	}
	sp.setNumSlots(sp.numSlots() - 1)
}

// compact rewrites live records contiguously against the page end in
// ascending slot order and resets free_space_end. Slot ids never change.
func (sp *Page) compact() {
	capacity := sp.slotCapacity()
	newEnd := storagepage.PageSize
	for i := 0; i < capacity; i++ {
		off, length := sp.slotEntry(i)
		if off == 0 {
			continue
		}
		data := make([]byte, length)
		copy(data, sp.page.Read(int(off), int(length)))
		newEnd -= int(length)
		sp.page.Write(newEnd, data)
		sp.setSlotEntry(i, uint16(newEnd), length)
	}
	sp.setFreeSpaceEnd(uint16(newEnd))
}

// Capacity exposes the slot directory size, including dead slots — used by
// the heap iterator to walk every slot in a page.
func (sp *Page) Capacity() int {
	return sp.slotCapacity()
}
