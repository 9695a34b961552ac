package model

// CreateReportRequest is everything the report API needs to file a report on
// behalf of a citizen.
type CreateReportRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
	Location    Location `json:"location"`
	Address     *string  `json:"address,omitempty"`
	Photos      []string `json:"photos"`
	IsAnonymous bool     `json:"isAnonymous"`
	UserID      int64    `json:"userId"`

	// IdempotencyKey travels as a header, not in the body.
	IdempotencyKey string `json:"-"`
}
