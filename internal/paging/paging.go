// Package paging slices already-fetched lists into pages. Pages are
// 1-based everywhere in this module; the one backend endpoint with a
// 0-based origin is translated at the gateway.
package paging

// Paginate returns the page-th slice of size items. Out-of-range pages
// yield an empty slice, never a panic.
func Paginate[T any](items []T, page, size int) []T {
	if size <= 0 || page <= 0 {
		return []T{}
	}
	start := (page - 1) * size
	if start >= len(items) {
		return []T{}
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// TotalPages is ceil(count/size); an empty list has zero pages.
func TotalPages(count, size int) int {
	if size <= 0 || count <= 0 {
		return 0
	}
	return (count + size - 1) / size
}

// Pager tracks the current page and size for one screen. Changing the
// size or any upstream filter must reset the page to 1 so the view never
// lands past the end.
type Pager struct {
	page int
	size int
}

func NewPager(size int) *Pager {
	if size <= 0 {
		size = 10
	}
	return &Pager{page: 1, size: size}
}

func (p *Pager) Page() int { return p.page }
func (p *Pager) Size() int { return p.size }

// SetSize changes the page size and resets to the first page.
func (p *Pager) SetSize(size int) {
	if size <= 0 {
		return
	}
	p.size = size
	p.page = 1
}

// Reset returns to the first page; call it whenever the upstream filter
// changes.
func (p *Pager) Reset() {
	p.page = 1
}

// SetPage jumps to page n clamped to [1, TotalPages(count, size)].
func (p *Pager) SetPage(n, count int) {
	total := TotalPages(count, p.size)
	if n < 1 {
		n = 1
	}
	if total > 0 && n > total {
		n = total
	}
	p.page = n
}

func (p *Pager) Next(count int) {
	if p.HasNext(count) {
		p.page++
	}
}

func (p *Pager) Prev() {
	if p.HasPrev() {
		p.page--
	}
}

// HasNext reports whether the next control is enabled; false at or past
// the last page.
func (p *Pager) HasNext(count int) bool {
	return p.page < TotalPages(count, p.size)
}

// HasPrev reports whether the previous control is enabled; false at the
// first page.
func (p *Pager) HasPrev() bool {
	return p.page > 1
}

// Slice applies the current page state to items.
func Slice[T any](p *Pager, items []T) []T {
	return Paginate(items, p.Page(), p.Size())
}
