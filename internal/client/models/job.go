package models

// JobMatch is one entry of the {matches:[...]} collection returned by the
// recommendation endpoint. The same fields (minus Reasons) form the payload
// of a favorite.
type JobMatch struct {
	Title       string   `json:"title"`
	Company     string   `json:"company"`
	Location    string   `json:"location"`
	Link        string   `json:"link"`
	Expires     string   `json:"expires"`
	Description string   `json:"description,omitempty"`
	MatchScore  int      `json:"matchScore"`
	Reasons     []string `json:"reasons,omitempty"`
}
