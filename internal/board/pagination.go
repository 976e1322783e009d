package board

// pageWindow is the number of page links shown at once.
const pageWindow = 10

// PageInfo describes where the current page sits among all pages.
type PageInfo struct {
	TotalPages        int `json:"totalPages"`
	LeftPageNumber    int `json:"leftPageNumber"`
	RightPageNumber   int `json:"rightPageNumber"`
	CurrentPageNumber int `json:"currentPageNumber"`
}

// NewPageInfo computes the link window for a 1-based current page. The window
// is the block of ten containing current, clamped to [1, totalPages].
func NewPageInfo(current, totalPages int) PageInfo {
	right := ((current-1)/pageWindow + 1) * pageWindow
	left := right - (pageWindow - 1)
	right = min(right, totalPages)
	left = max(left, 1)
	return PageInfo{
		TotalPages:        totalPages,
		LeftPageNumber:    left,
		RightPageNumber:   right,
		CurrentPageNumber: current,
	}
}
