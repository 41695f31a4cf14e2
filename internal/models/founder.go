package models

// FounderApplication is the onboarding form for eCommerce founders looking for a provider.
type FounderApplication struct {
	ContactName  string `json:"contact_name"`
	ContactEmail string `json:"contact_email"`
	BusinessName string `json:"business_name"`
	Industry     string `json:"industry"`
	Website      string `json:"website,omitempty"`

	MonthlyRevenue  string   `json:"monthly_revenue"`
	EmailListSize   string   `json:"email_list_size,omitempty"`
	CurrentPlatform string   `json:"current_platform,omitempty"`
	Goals           []string `json:"goals"`
	Challenges      []string `json:"challenges,omitempty"`

	BudgetRange     string `json:"budget_range"`
	Timeline        string `json:"timeline"`
	AdditionalNotes string `json:"additional_notes,omitempty"`
	AgreeToTerms    *bool  `json:"agree_to_terms,omitempty"`
}
