package models

// Experience is a single work-history row in a CV profile.
type Experience struct {
	Position string `json:"position"`
	Company  string `json:"company"`
	Years    string `json:"years"`
}

// CVProfile is the structured CV record submitted to POST /api/cvs.
// Field names follow the backend contract.
type CVProfile struct {
	FullName    string       `json:"fullname"`
	Email       string       `json:"email"`
	PhoneNumber string       `json:"phoneNumber"`
	JobTitle    string       `json:"jobTitle"`
	Summary     string       `json:"summary"`
	Experiences []Experience `json:"experiences"`
}

// Analysis is the part of the upload response the client renders: the
// backend's feedback plus the id of the stored CV, used afterwards to key
// job recommendations. The rest of the payload is treated as opaque.
type Analysis struct {
	CVID                  int64
	Summary               string
	SuggestedImprovements string
}
