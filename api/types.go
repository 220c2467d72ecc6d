package api

// PaginatedResponse wraps list endpoints with paging metadata
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Page       int         `json:"page"`
	PerPage    int         `json:"per_page"`
	Total      int         `json:"total"`
	TotalPages int         `json:"total_pages"`
	HasNext    bool        `json:"has_next"`
}

// ScanResponse decorates a stored scan with human-readable sizes
type ScanResponse struct {
	ScanID                int64    `json:"scan_id"`
	Roots                 []string `json:"roots"`
	StartedAt             int64    `json:"started_at"`
	FinishedAt            int64    `json:"finished_at"`
	DiscoveredFiles       int64    `json:"discovered_files"`
	DuplicateFiles        int64    `json:"duplicate_files"`
	DuplicateGroups       int64    `json:"duplicate_groups"`
	PotentialSavings      uint64   `json:"potential_savings"`
	PotentialSavingsHuman string   `json:"potential_savings_human"`
}

// GroupResponse is one duplicate group with its member paths
type GroupResponse struct {
	SizeBytes      uint64   `json:"size_bytes"`
	SizeBytesHuman string   `json:"size_bytes_human"`
	SHA256         string   `json:"sha256"`
	Paths          []string `json:"paths"`
}
