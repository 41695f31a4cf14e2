package models

// ClientAcquisition is the short lead form a founder submits to request help.
type ClientAcquisition struct {
	ContactName  string `json:"contact_name"`
	ContactEmail string `json:"contact_email"`
	CompanyName  string `json:"company_name"`
	Phone        string `json:"phone,omitempty"`

	ServicesNeeded     []string `json:"services_needed"`
	ProjectDescription string   `json:"project_description"`
	Budget             string   `json:"budget,omitempty"`
	StartDate          string   `json:"start_date,omitempty"`

	ConsentToContact *bool `json:"consent_to_contact,omitempty"`
}
