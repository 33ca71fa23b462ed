package entity

// CompanyInfo is the firmographic record returned by the company lookup
// adapter. All fields are optional; absent data stays nil.
type CompanyInfo struct {
	Name        string
	Website     *string
	Phone       *string
	LinkedInURL *string
	Size        *string
	Industry    *string
	Revenue     *string
	Address     *string
}

// ExecInfo identifies a named contact at a company.
type ExecInfo struct {
	Name        string
	Title       string
	Email       *string
	Phone       *string
	LinkedInURL *string
}

// LocalBusiness is a directory record for a physical establishment.
type LocalBusiness struct {
	Name    string
	Address *string
	Phone   *string
	Website *string
	Rating  *float64
	Reviews *int
	Types   []string
}

// Verification is the outcome of an email verification call.
type Verification struct {
	Status           string
	SubStatus        string
	Suggestion       *string
	CreditsRemaining int
}
