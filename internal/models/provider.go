package models

// Performance guarantee answers.
const (
	GuaranteeYes         = "yes"
	GuaranteeConditional = "conditional"
	GuaranteeNo          = "no"
)

// ProviderApplication is the form a service provider fills in to join the marketplace.
type ProviderApplication struct {
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
	CompanyName string `json:"company_name"`
	Website     string `json:"website,omitempty"`

	// YearsEmailMarketing is a bucket label such as "0-1", "3-5" or "5+".
	YearsEmailMarketing string   `json:"years_email_marketing"`
	ClientsServed       string   `json:"clients_served,omitempty"`
	Platforms           []string `json:"platforms"`
	ExpertiseAreas      []string `json:"expertise_areas"`
	Industries          []string `json:"industries,omitempty"`

	CaseStudies  []CaseStudy `json:"case_studies"`
	PortfolioURL string      `json:"portfolio_url"`
	LinkedInURL  string      `json:"linkedin_url"`

	PerformanceGuarantee string `json:"performance_guarantee"`
	AgreeToTerms         *bool  `json:"agree_to_terms,omitempty"`
}

type CaseStudy struct {
	Title          string `json:"title"`
	ClientIndustry string `json:"client_industry,omitempty"`
	Challenge      string `json:"challenge"`
	Solution       string `json:"solution"`
	Results        string `json:"results"`
}
