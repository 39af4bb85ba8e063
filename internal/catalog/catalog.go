// Package catalog holds the static document-requirement catalog the
// verification scoring engine runs against. The catalog is code-defined
// configuration: loaded once, immutable at runtime.
package catalog

import (
	"strings"

	"github.com/venturelink/venturelink-backend/internal/app/model"
)

// Requirement defines one required document type and its scoring weight.
type Requirement struct {
	Type     string
	Name     string // human-readable, used in missing-document lists
	Category model.DocumentCategory
	Weight   int
}

// Catalog answers which documents a business must provide for its subsector.
type Catalog interface {
	// Requirements returns the full requirement set for a subsector:
	// the universal core set plus any sector-specific and additional
	// entries. Unknown subsectors fall back to the core set alone.
	Requirements(subsector string) []Requirement
}

type staticCatalog struct {
	core        []Requirement
	bySubsector map[string][]Requirement
}

// New builds a catalog from a core set and per-subsector extensions.
// Subsector keys are matched case-insensitively.
func New(core []Requirement, bySubsector map[string][]Requirement) Catalog {
	normalized := make(map[string][]Requirement, len(bySubsector))
	for k, v := range bySubsector {
		normalized[strings.ToLower(k)] = v
	}
	return &staticCatalog{core: core, bySubsector: normalized}
}

func (c *staticCatalog) Requirements(subsector string) []Requirement {
	reqs := make([]Requirement, 0, len(c.core)+4)
	reqs = append(reqs, c.core...)
	if extra, ok := c.bySubsector[strings.ToLower(subsector)]; ok {
		reqs = append(reqs, extra...)
	}
	return reqs
}

// Default is the production catalog.
func Default() Catalog {
	return New(defaultCore, defaultBySubsector)
}

// Universal core set, required regardless of sector.
var defaultCore = []Requirement{
	{Type: "certificate_of_incorporation", Name: "Certificate of Incorporation", Category: model.DocumentCategoryCore, Weight: 25},
	{Type: "tax_clearance", Name: "Tax Clearance Certificate", Category: model.DocumentCategoryCore, Weight: 20},
	{Type: "financial_statements", Name: "Audited Financial Statements", Category: model.DocumentCategoryCore, Weight: 20},
	{Type: "proof_of_address", Name: "Proof of Business Address", Category: model.DocumentCategoryCore, Weight: 10},
	{Type: "director_id", Name: "Director Identification", Category: model.DocumentCategoryCore, Weight: 10},
}

var defaultBySubsector = map[string][]Requirement{
	"fintech": {
		{Type: "regulatory_license", Name: "Financial Services License", Category: model.DocumentCategorySectorSpecific, Weight: 10},
		{Type: "aml_policy", Name: "AML/KYC Policy", Category: model.DocumentCategorySectorSpecific, Weight: 5},
	},
	"healthcare": {
		{Type: "health_facility_license", Name: "Health Facility License", Category: model.DocumentCategorySectorSpecific, Weight: 10},
		{Type: "practitioner_registration", Name: "Practitioner Registration", Category: model.DocumentCategorySectorSpecific, Weight: 5},
	},
	"agriculture": {
		{Type: "land_title", Name: "Land Title or Lease Agreement", Category: model.DocumentCategorySectorSpecific, Weight: 10},
		{Type: "export_permit", Name: "Export Permit", Category: model.DocumentCategoryAdditional, Weight: 5},
	},
	"manufacturing": {
		{Type: "factory_inspection", Name: "Factory Inspection Certificate", Category: model.DocumentCategorySectorSpecific, Weight: 10},
		{Type: "environmental_compliance", Name: "Environmental Compliance Certificate", Category: model.DocumentCategoryAdditional, Weight: 5},
	},
	"logistics": {
		{Type: "fleet_registration", Name: "Fleet Registration", Category: model.DocumentCategorySectorSpecific, Weight: 10},
		{Type: "transport_license", Name: "Goods Transport License", Category: model.DocumentCategorySectorSpecific, Weight: 5},
	},
	"retail": {
		{Type: "trading_license", Name: "Trading License", Category: model.DocumentCategorySectorSpecific, Weight: 10},
	},
	"education": {
		{Type: "education_accreditation", Name: "Accreditation Certificate", Category: model.DocumentCategorySectorSpecific, Weight: 10},
	},
	"energy": {
		{Type: "generation_license", Name: "Generation/Distribution License", Category: model.DocumentCategorySectorSpecific, Weight: 10},
		{Type: "environmental_impact", Name: "Environmental Impact Assessment", Category: model.DocumentCategorySectorSpecific, Weight: 5},
	},
}

// FindRequirement looks up a requirement by document type within a
// subsector's requirement set.
func FindRequirement(c Catalog, subsector, documentType string) (Requirement, bool) {
	for _, req := range c.Requirements(subsector) {
		if req.Type == documentType {
			return req, true
		}
	}
	return Requirement{}, false
}
