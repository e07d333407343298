package main

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Pager seeks and reads 1-indexed fixed-size pages from a single file
// handle. It performs no caching and offers no concurrency guarantees;
// it is strictly single-caller, matching spec.md §4.7 and §5.
type Pager struct {
	file     io.ReaderAt
	pageSize int
}

// NewPager constructs a pager over file with the given page size.
func NewPager(file io.ReaderAt, pageSize int) *Pager {
	return &Pager{file: file, pageSize: pageSize}
}

// LoadPage reads the page at 1-indexed pageNo and returns its raw bytes.
func (pg *Pager) LoadPage(pageNo int) ([]byte, error) {
	if pageNo < 1 {
		return nil, newErr(KindPage, "load_page", "page numbers are 1-indexed", map[string]interface{}{
			"page_no": pageNo,
		})
	}
	offset := int64(pageNo-1) * int64(pg.pageSize)
	buf := make([]byte, pg.pageSize)
	n, err := pg.file.ReadAt(buf, offset)
	if err != nil && err != io.EOF {
		return nil, wrapErr(KindIO, "load_page", err, map[string]interface{}{"page_no": pageNo, "offset": offset})
	}
	if n != pg.pageSize {
		return nil, newErr(KindIO, "load_page", "short read", map[string]interface{}{
			"page_no": pageNo, "want": pg.pageSize, "got": n,
		})
	}
	log.WithFields(logrus.Fields{"page_no": pageNo, "offset": offset}).Debug("loaded page")
	return buf, nil
}

// LoadBTreePage reads and decodes the page at pageNo.
func (pg *Pager) LoadBTreePage(pageNo int) (*Page, error) {
	buf, err := pg.LoadPage(pageNo)
	if err != nil {
		return nil, err
	}
	return decodePage(buf, pageNo == 1)
}
