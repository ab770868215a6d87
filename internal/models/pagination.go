package models

// Page is the pagination envelope returned by all list endpoints.
// Total always reflects the filtered count, independent of page and limit.
type Page struct {
	Success    bool        `json:"success"`
	Count      int         `json:"count"`
	Data       interface{} `json:"data"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	Total      int64       `json:"total"`
	TotalPages int         `json:"totalPages"`
}

// NewPage builds a pagination envelope. count is derived from the item slice
// length by the caller since Data is opaque here.
func NewPage(data interface{}, count, page, limit int, total int64) Page {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Page{
		Success:    true,
		Count:      count,
		Data:       data,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}
