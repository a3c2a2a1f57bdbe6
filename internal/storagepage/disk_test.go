package storagepage

import "testing"

func TestPageCountGrowsAsPagesAreWritten(t *testing.T) {
	d := openTestDisk(t)
	if n, err := d.PageCount(); err != nil || n != 0 {
		t.Fatalf("PageCount = %d, %v, want 0, nil", n, err)
	}

	var page Page
	page.Write(0, []byte("row"))
	if err := d.WritePage(0, &page); err != nil {
		t.Fatalf("WritePage: %v", err)
	}
	if n, err := d.PageCount(); err != nil || n != 1 {
		t.Fatalf("PageCount = %d, %v, want 1, nil", n, err)
	}

	if err := d.WritePage(2, &page); err != nil {
		t.Fatalf("WritePage: %v", err)
	}
	if n, err := d.PageCount(); err != nil || n != 3 {
		t.Fatalf("PageCount = %d, %v, want 3, nil", n, err)
	}
}

func TestBufferPoolDiskPageCountDelegates(t *testing.T) {
	d := openTestDisk(t)
	bp := NewBufferPool(d, 4)
	if _, err := bp.NewPage(0); err != nil {
		t.Fatalf("NewPage: %v", err)
	}
	bp.UnpinPage(0, true)
	if err := bp.FlushAll(); err != nil {
		t.Fatalf("FlushAll: %v", err)
	}
	n, err := bp.DiskPageCount()
	if err != nil || n != 1 {
		t.Fatalf("DiskPageCount = %d, %v, want 1, nil", n, err)
	}
}
