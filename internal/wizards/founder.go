package wizards

import (
	"connect-workers/internal/common/validation"
	"connect-workers/internal/models"
	"connect-workers/internal/wizard"
)

const KindFounderApplication = "founder-application"

type founderRule = validation.Rule[models.FounderApplication]

var founderApplication = wizard.Definition[models.FounderApplication]{
	Kind: KindFounderApplication,
	Steps: []wizard.Step[models.FounderApplication]{
		{Name: "business", Rules: []founderRule{
			{Field: "contact_name", Label: "Contact name", Required: true, Value: func(a *models.FounderApplication) any { return a.ContactName }},
			{Field: "contact_email", Label: "Contact email", Required: true, Format: validation.IsEmail, Value: func(a *models.FounderApplication) any { return a.ContactEmail }},
			{Field: "business_name", Label: "Business name", Required: true, Value: func(a *models.FounderApplication) any { return a.BusinessName }},
			{Field: "industry", Label: "Industry", Required: true, Value: func(a *models.FounderApplication) any { return a.Industry }},
			{Field: "website", Label: "Website", Format: validation.IsWellFormedURL, Value: func(a *models.FounderApplication) any { return a.Website }},
		}},
		{Name: "goals", Rules: []founderRule{
			{Field: "monthly_revenue", Label: "Monthly revenue", Required: true, Value: func(a *models.FounderApplication) any { return a.MonthlyRevenue }},
			{Field: "goals", Required: true, Message: "Please select at least one goal", Value: func(a *models.FounderApplication) any { return a.Goals }},
		}},
		{Name: "budget", Rules: []founderRule{
			{Field: "budget_range", Label: "Budget range", Required: true, Value: func(a *models.FounderApplication) any { return a.BudgetRange }},
			{Field: "timeline", Label: "Timeline", Required: true, Value: func(a *models.FounderApplication) any { return a.Timeline }},
		}},
		{Name: "review", Rules: []founderRule{
			{Field: "agree_to_terms", Required: true, Message: "You must agree to the terms", Value: func(a *models.FounderApplication) any { return accepted(a.AgreeToTerms) }},
		}},
	},
	Initial: func() models.FounderApplication {
		return models.FounderApplication{Goals: []string{}, Challenges: []string{}}
	},
}

const founderSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "contact_name": {"type": "string"},
    "contact_email": {"type": "string"},
    "business_name": {"type": "string"},
    "industry": {"type": "string"},
    "website": {"type": "string"},
    "monthly_revenue": {"type": "string"},
    "email_list_size": {"type": "string"},
    "current_platform": {"type": "string"},
    "goals": {"type": "array", "items": {"type": "string"}},
    "challenges": {"type": "array", "items": {"type": "string"}},
    "budget_range": {"type": "string"},
    "timeline": {"type": "string"},
    "additional_notes": {"type": "string"},
    "agree_to_terms": {"type": ["boolean", "null"]}
  }
}`
