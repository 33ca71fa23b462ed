package dto

// ListProspectsRequest carries the query parameters of GET /prospects.
type ListProspectsRequest struct {
	Status   string `query:"status"`
	MinScore *int   `query:"min_score"`
	Page     int    `query:"page"`
	PerPage  int    `query:"per_page"`
}
