package util

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type PageMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

// Calculate turns a 1-based page and a page size into offset and limit.
func Calculate(page, size int) (from, limit int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}
	from = (page - 1) * size
	return from, size
}

func Meta(page, size int, total int64) PageMeta {
	from, limit := Calculate(page, size)
	pages := total / int64(limit)
	if total%int64(limit) != 0 {
		pages++
	}
	return PageMeta{Page: from/limit + 1, Limit: limit, Total: total, TotalPages: pages}
}
