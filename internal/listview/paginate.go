// filepath: internal/listview/paginate.go
package listview

import "math"

// TotalPages is ceil(n/size). A non-positive size puts everything on one page.
func TotalPages(n, size int) int {
	if n <= 0 {
		return 0
	}
	if size <= 0 {
		return 1
	}
	return (n + size - 1) / size
}

// Paginate returns items[(page-1)*size : page*size], clamped to the slice.
// Pages outside the collection are empty.
func Paginate[T any](items []T, page, size int) []T {
	if size <= 0 {
		size = len(items)
	}
	if page < 1 || size == 0 {
		return []T{}
	}
	start := (page - 1) * size
	if start >= len(items) {
		return []T{}
	}
	end := min(start+size, len(items))
	out := make([]T, end-start)
	copy(out, items[start:end])
	return out
}

// PageLink is one entry of the page-number strip. Ellipsis entries carry no page.
type PageLink struct {
	Page     int
	Ellipsis bool
	Current  bool
}

// PageWindow lays out the page-number strip: the first page, an ellipsis when
// current > 3, the current page with one neighbour each side, an ellipsis
// when current < total-2, and the last page.
func PageWindow(current, total int) []PageLink {
	if total < 1 {
		total = 1
	}
	current = max(1, min(current, total))

	links := []PageLink{{Page: 1, Current: current == 1}}
	if current > 3 {
		links = append(links, PageLink{Ellipsis: true})
	}
	for p := max(2, current-1); p <= min(total-1, current+1); p++ {
		links = append(links, PageLink{Page: p, Current: p == current})
	}
	if current < total-2 {
		links = append(links, PageLink{Ellipsis: true})
	}
	if total > 1 {
		links = append(links, PageLink{Page: total, Current: current == total})
	}
	return links
}

// Pagination is the derived page state of a controller.
type Pagination struct {
	Page       int
	PageSize   int
	TotalPages int
	TotalItems int
	Window     []PageLink
}

// ProgressPercent is round((completed + inProgress/2) / total * 100), or 0
// for an empty collection.
func ProgressPercent(completed, inProgress, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round((float64(completed) + float64(inProgress)*0.5) / float64(total) * 100))
}

// Rate is round(part / max(total,1) * 100), kept within [0,100].
func Rate(part, total int) int {
	r := int(math.Round(float64(part) / float64(max(total, 1)) * 100))
	return max(0, min(r, 100))
}
