package wizards

import (
	"connect-workers/internal/common/validation"
	"connect-workers/internal/models"
	"connect-workers/internal/wizard"
)

const KindClientAcquisition = "client-acquisition"

type clientRule = validation.Rule[models.ClientAcquisition]

var clientAcquisition = wizard.Definition[models.ClientAcquisition]{
	Kind: KindClientAcquisition,
	Steps: []wizard.Step[models.ClientAcquisition]{
		{Name: "contact", Rules: []clientRule{
			{Field: "contact_name", Label: "Contact name", Required: true, Value: func(c *models.ClientAcquisition) any { return c.ContactName }},
			{Field: "contact_email", Label: "Contact email", Required: true, Format: validation.IsEmail, Value: func(c *models.ClientAcquisition) any { return c.ContactEmail }},
			{Field: "company_name", Label: "Company name", Required: true, Value: func(c *models.ClientAcquisition) any { return c.CompanyName }},
		}},
		{Name: "needs", Rules: []clientRule{
			{Field: "services_needed", Required: true, Message: "Please select at least one service", Value: func(c *models.ClientAcquisition) any { return c.ServicesNeeded }},
			{Field: "project_description", Label: "Project description", Required: true, Value: func(c *models.ClientAcquisition) any { return c.ProjectDescription }},
		}},
		{Name: "confirm", Rules: []clientRule{
			{Field: "consent_to_contact", Required: true, Message: "Please confirm we may contact you", Value: func(c *models.ClientAcquisition) any { return accepted(c.ConsentToContact) }},
		}},
	},
	Initial: func() models.ClientAcquisition {
		return models.ClientAcquisition{ServicesNeeded: []string{}}
	},
}

const clientSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "contact_name": {"type": "string"},
    "contact_email": {"type": "string"},
    "company_name": {"type": "string"},
    "phone": {"type": "string"},
    "services_needed": {"type": "array", "items": {"type": "string"}},
    "project_description": {"type": "string"},
    "budget": {"type": "string"},
    "start_date": {"type": "string"},
    "consent_to_contact": {"type": ["boolean", "null"]}
  }
}`
