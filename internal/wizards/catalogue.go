// Package wizards holds the marketplace's concrete wizard definitions and a
// catalogue to look them up by kind.
package wizards

import (
	"errors"
	"fmt"
	"sort"

	"connect-workers/internal/models"
	"connect-workers/internal/wizard"
)

var ErrUnknownWizard = errors.New("unknown wizard")

type Catalogue struct {
	byKind map[string]Wizard
}

// NewCatalogue indexes ws by kind. A repeated kind is a programming error.
func NewCatalogue(ws ...Wizard) *Catalogue {
	c := &Catalogue{byKind: make(map[string]Wizard, len(ws))}
	for _, w := range ws {
		if _, dup := c.byKind[w.Kind()]; dup {
			panic(fmt.Sprintf("wizard %s registered twice", w.Kind()))
		}
		c.byKind[w.Kind()] = w
	}
	return c
}

// Default returns the catalogue of built-in wizards.
func Default() *Catalogue {
	return NewCatalogue(
		newForm("Provider application", providerApplication, providerSchema),
		newForm("Founder application", founderApplication, founderSchema),
		newForm("Client acquisition", clientAcquisition, clientSchema),
	)
}

func (c *Catalogue) Lookup(kind string) (Wizard, error) {
	w, ok := c.byKind[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownWizard, kind)
	}
	return w, nil
}

// Kinds lists the registered kinds in sorted order.
func (c *Catalogue) Kinds() []string {
	kinds := make([]string, 0, len(c.byKind))
	for k := range c.byKind {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// ProviderApplication is the typed provider wizard, for callers that work on
// models.ProviderApplication directly.
func ProviderApplication() wizard.Definition[models.ProviderApplication] {
	return providerApplication
}

func FounderApplication() wizard.Definition[models.FounderApplication] {
	return founderApplication
}

func ClientAcquisition() wizard.Definition[models.ClientAcquisition] {
	return clientAcquisition
}
