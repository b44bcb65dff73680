package dto

// ProblemListFilter captures the catalogue query parameters.
type ProblemListFilter struct {
	Keyword      string
	Difficulties []string
	IsSolved     *bool
	IsFavorite   *bool
	Page         int
	Size         int
}

// ProblemListItem is one catalogue row with the caller's status.
type ProblemListItem struct {
	ProblemID  uint   `json:"problemId"`
	Title      string `json:"title"`
	Difficulty string `json:"difficulty"`
	IsFavorite bool   `json:"isFavorite"`
	IsSolved   bool   `json:"isSolved"`
}

// PaginationMeta describes the page returned by a list endpoint.
type PaginationMeta struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int   `json:"totalPages"`
}

// ProblemListResponse wraps a page of catalogue rows.
type ProblemListResponse struct {
	Items      []ProblemListItem `json:"items"`
	Pagination PaginationMeta    `json:"pagination"`
}

// ProblemSolution is the reference solution attached to a problem.
type ProblemSolution struct {
	Approach        string `json:"approach"`
	Code            string `json:"code"`
	TimeComplexity  string `json:"timeComplexity"`
	SpaceComplexity string `json:"spaceComplexity"`
}

// ProblemDetailResponse is the full problem view.
type ProblemDetailResponse struct {
	ProblemID   uint             `json:"id"`
	Title       string           `json:"title"`
	Difficulty  string           `json:"difficulty"`
	Description string           `json:"description"`
	IsFavorite  bool             `json:"isFavorite"`
	IsSolved    bool             `json:"solved"`
	Solution    *ProblemSolution `json:"solution"`
}
