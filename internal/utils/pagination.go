package utils

import "strconv"

// MaxPageNumber bounds page so Offset cannot overflow
const MaxPageNumber = 1_000_000

// Page is a parsed page/page_size pair
type Page struct {
	Number int // 1-based page number
	Size   int // Rows per page
}

// Offset returns the number of rows to skip
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// TotalPages returns the page count for total rows
func (p Page) TotalPages(total int64) int {
	return (int(total) + p.Size - 1) / p.Size
}

// ParsePage reads page and page_size query values, defaulting to 1 and 20.
// page_size is capped at 100 and page at MaxPageNumber
func ParsePage(page, pageSize string) Page {
	p := Page{Number: 1, Size: 20}
	if v, err := strconv.Atoi(page); err == nil && v > 0 {
		p.Number = min(v, MaxPageNumber)
	}
	if v, err := strconv.Atoi(pageSize); err == nil && v > 0 && v <= 100 {
		p.Size = v
	}
	return p
}
