package usecase

import "github.com/xavierca1/lead-dashboard/internal/entity"

// MaxPageButtons bounds the page window shown under the table.
const MaxPageButtons = 5

// DefaultPageSize applies when a collection has no usable page size.
const DefaultPageSize = 20

// EffectivePageSize is the page size TotalPages and Paginate both use.
func EffectivePageSize(size int) int {
	if size <= 0 {
		return DefaultPageSize
	}
	return size
}

type Page struct {
	Items       []entity.Lead `json:"items"`
	Number      int           `json:"page"`
	Size        int           `json:"page_size"`
	TotalPages  int           `json:"total_pages"`
	TotalItems  int           `json:"total_items"`
	FirstItem   int           `json:"first_item"`
	LastItem    int           `json:"last_item"`
	WindowStart int           `json:"window_start"`
	WindowEnd   int           `json:"window_end"`
}

// TotalPages is ceil(count/size) with a floor of one page.
func TotalPages(count, size int) int {
	size = EffectivePageSize(size)
	if count <= 0 {
		return 1
	}
	return (count + size - 1) / size
}

func ClampPage(page, totalPages int) int {
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// Paginate slices one page out of an ordered set. Callers clamp the page
// first; an out-of-range page is an error, not an empty page.
func Paginate(leads []entity.Lead, pageSize, page int) (Page, error) {
	pageSize = EffectivePageSize(pageSize)
	total := TotalPages(len(leads), pageSize)
	if page < 1 || page > total {
		return Page{}, ErrPageOutOfRange
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if end > len(leads) {
		end = len(leads)
	}

	items := make([]entity.Lead, end-start)
	copy(items, leads[start:end])

	p := Page{
		Items:      items,
		Number:     page,
		Size:       pageSize,
		TotalPages: total,
		TotalItems: len(leads),
	}
	if len(items) > 0 {
		p.FirstItem = start + 1
		p.LastItem = end
	}
	p.WindowStart, p.WindowEnd = PageWindow(page, total)
	return p, nil
}

// PageWindow returns the first and last page button to show. The window is
// centered on current and slides to stay inside [1, total].
func PageWindow(current, total int) (int, int) {
	if total <= MaxPageButtons {
		return 1, total
	}
	half := MaxPageButtons / 2
	switch {
	case current <= half+1:
		return 1, MaxPageButtons
	case current >= total-half:
		return total - MaxPageButtons + 1, total
	default:
		return current - half, current + half
	}
}
