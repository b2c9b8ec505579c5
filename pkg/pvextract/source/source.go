// Package source provides page tables of a report document.
package source

import (
	"errors"
	"fmt"

	"github.com/ukaji3/pvextract-go/pkg/pvextract/models"
)

// Page skip conditions. They are not failures: the page simply contributes
// nothing.
var (
	ErrNoText  = errors.New("no text on page")
	ErrNoTable = errors.New("no table on page")
)

// Document is a read-only handle on an opened report. A handle is used by a
// single goroutine.
type Document interface {
	// Grid returns the table of the page at the 0-based index.
	Grid(pageIndex int) (models.PageGrid, error)
	Close() error
}

// Opener opens report documents. Open is called once per page task so that
// no handle is shared between goroutines.
type Opener interface {
	PageCount(path string) (int, error)
	Open(path string) (Document, error)
}

// IsSkip reports whether err is a page skip condition.
func IsSkip(err error) bool {
	return errors.Is(err, ErrNoText) || errors.Is(err, ErrNoTable)
}

// Static serves grids that were extracted beforehand. A nil grid stands for
// a page without table.
type Static struct {
	Pages []models.PageGrid
}

var _ Opener = (*Static)(nil)

// PageCount returns the number of pages held.
func (s *Static) PageCount(string) (int, error) {
	return len(s.Pages), nil
}

// Open returns a handle over the held pages.
func (s *Static) Open(string) (Document, error) {
	return staticDoc{pages: s.Pages}, nil
}

type staticDoc struct {
	pages []models.PageGrid
}

func (d staticDoc) Grid(pageIndex int) (models.PageGrid, error) {
	if pageIndex < 0 || pageIndex >= len(d.pages) {
		return nil, fmt.Errorf("page index %d out of range", pageIndex)
	}
	if d.pages[pageIndex] == nil {
		return nil, ErrNoTable
	}
	return d.pages[pageIndex], nil
}

func (staticDoc) Close() error { return nil }
