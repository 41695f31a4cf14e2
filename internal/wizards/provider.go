package wizards

import (
	"connect-workers/internal/common/validation"
	"connect-workers/internal/models"
	"connect-workers/internal/wizard"
)

const KindProviderApplication = "provider-application"

type providerRule = validation.Rule[models.ProviderApplication]

var providerApplication = wizard.Definition[models.ProviderApplication]{
	Kind: KindProviderApplication,
	Steps: []wizard.Step[models.ProviderApplication]{
		{Name: "basics", Rules: []providerRule{
			{Field: "full_name", Label: "Full name", Required: true, Value: func(a *models.ProviderApplication) any { return a.FullName }},
			{Field: "email", Label: "Email", Required: true, Format: validation.IsEmail, Value: func(a *models.ProviderApplication) any { return a.Email }},
			{Field: "company_name", Label: "Company name", Required: true, Value: func(a *models.ProviderApplication) any { return a.CompanyName }},
			{Field: "website", Label: "Website", Format: validation.IsWellFormedURL, Value: func(a *models.ProviderApplication) any { return a.Website }},
		}},
		{Name: "experience", Rules: []providerRule{
			{Field: "years_email_marketing", Label: "Years of experience", Required: true, Value: func(a *models.ProviderApplication) any { return a.YearsEmailMarketing }},
			{Field: "platforms", Required: true, Message: "Please select at least one platform", Value: func(a *models.ProviderApplication) any { return a.Platforms }},
		}},
		{Name: "expertise", Rules: []providerRule{
			{Field: "expertise_areas", Label: "Expertise areas", Required: true, MinItems: 2, Value: func(a *models.ProviderApplication) any { return a.ExpertiseAreas }},
		}},
		{Name: "case-studies", Rules: []providerRule{
			{Field: "case_studies", Required: true, Message: "Please add at least one case study", Value: func(a *models.ProviderApplication) any { return a.CaseStudies }},
			{Field: "portfolio_url", Label: "Portfolio URL", Format: validation.IsWellFormedURL, Value: func(a *models.ProviderApplication) any { return a.PortfolioURL }},
			{Field: "linkedin_url", Label: "LinkedIn URL", Format: validation.IsWellFormedURL, Value: func(a *models.ProviderApplication) any { return a.LinkedInURL }},
		}},
		{Name: "commitment", Rules: []providerRule{
			{Field: "performance_guarantee", Label: "Performance guarantee", Required: true, Value: func(a *models.ProviderApplication) any { return a.PerformanceGuarantee }},
			{Field: "agree_to_terms", Required: true, Message: "You must agree to the terms", Value: func(a *models.ProviderApplication) any { return accepted(a.AgreeToTerms) }},
		}},
	},
	Initial: func() models.ProviderApplication {
		return models.ProviderApplication{
			Platforms:      []string{},
			ExpertiseAreas: []string{},
			Industries:     []string{},
			CaseStudies:    []models.CaseStudy{},
		}
	},
}

// accepted turns an unanswered or declined checkbox into an empty value.
func accepted(b *bool) any {
	if b == nil || !*b {
		return nil
	}
	return true
}

const providerSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "full_name": {"type": "string"},
    "email": {"type": "string"},
    "phone": {"type": "string"},
    "company_name": {"type": "string"},
    "website": {"type": "string"},
    "years_email_marketing": {"type": "string"},
    "clients_served": {"type": "string"},
    "platforms": {"type": "array", "items": {"type": "string"}},
    "expertise_areas": {"type": "array", "items": {"type": "string"}},
    "industries": {"type": "array", "items": {"type": "string"}},
    "case_studies": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "title": {"type": "string"},
          "client_industry": {"type": "string"},
          "challenge": {"type": "string"},
          "solution": {"type": "string"},
          "results": {"type": "string"}
        }
      }
    },
    "portfolio_url": {"type": "string"},
    "linkedin_url": {"type": "string"},
    "performance_guarantee": {"type": "string"},
    "agree_to_terms": {"type": ["boolean", "null"]}
  }
}`
