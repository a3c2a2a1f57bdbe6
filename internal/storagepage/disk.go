package storagepage

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// DiskManager maps logical page ids to byte offsets in a single backing
// file and performs page-granular seek/read/write.
type DiskManager struct {
	file *os.File
}

// OpenDiskManager opens (creating if necessary) the file at path for
// read/write access without truncating existing contents.
func OpenDiskManager(path string) (*DiskManager, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("storagepage: open %s: %w", path, err)
	}
	return &DiskManager{file: f}, nil
}

func (d *DiskManager) offset(id PageID) int64 {
	return int64(id) * int64(PageSize)
}

// ReadPage fills page with the full PageSize bytes stored for id. Bytes at
// or past end-of-file read as zero, so a page id that has never been
// written comes back zero-filled.
func (d *DiskManager) ReadPage(id PageID, page *Page) error {
	n, err := d.file.ReadAt(page.buf[:], d.offset(id))
	if errors.Is(err, io.EOF) {
		clear(page.buf[n:])
		err = nil
	}
	if err != nil {
		return fmt.Errorf("storagepage: read page %d: %w", id, err)
	}
	return nil
}

// WritePage writes the full PageSize bytes of page at id, extending the
// file if necessary.
func (d *DiskManager) WritePage(id PageID, page *Page) error {
	_, err := d.file.WriteAt(page.buf[:], d.offset(id))
	if err != nil {
		return fmt.Errorf("storagepage: write page %d: %w", id, err)
	}
	return nil
}

// Close closes the backing file.
func (d *DiskManager) Close() error {
	return d.file.Close()
}

// PageCount returns the number of whole pages currently stored in the
// backing file, used to distinguish a brand new table file from one being
// reopened across a restart.
func (d *DiskManager) PageCount() (PageID, error) {
	info, err := d.file.Stat()
	if err != nil {
		return 0, fmt.Errorf("storagepage: stat %s: %w", d.file.Name(), err)
	}
	return PageID(info.Size() / int64(PageSize)), nil
}

// Path returns the backing file's path.
func (d *DiskManager) Path() string {
	return d.file.Name()
}
