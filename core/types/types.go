// Package types defines core domain types shared across all layers.
// This package contains NO business logic - only type definitions.
package types

// Currency represents a currency code
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyILS Currency = "ILS"
)

// String returns the string representation
func (c Currency) String() string {
	return string(c)
}

// Well-known multiplier group keys. Groups are data-driven; these are the
// four the calculator asks for by name.
const (
	GroupComplexity = "complexity"
	GroupTimeline   = "timeline"
	GroupTech       = "tech"
	GroupClientType = "clientType"
)

// CalculatorInputs is one user-configured estimate request
type CalculatorInputs struct {
	// ProjectTypeKey selects the project type (and its base rate)
	ProjectTypeKey string `json:"project_type_key"`

	// NumUnits is the number of pages/units
	NumUnits int `json:"num_units"`

	// SelectedFeatureKeys are the optional add-ons
	SelectedFeatureKeys []string `json:"selected_feature_keys,omitempty"`

	// ComplexityKey is the option key in the complexity group
	ComplexityKey string `json:"complexity_key"`

	// TimelineKey is the option key in the timeline group
	TimelineKey string `json:"timeline_key"`

	// TechKey is the option key in the tech group
	TechKey string `json:"tech_key"`

	// ClientTypeKey is the option key in the clientType group
	ClientTypeKey string `json:"client_type_key"`

	// Currency overrides the model's default currency when set
	Currency Currency `json:"currency,omitempty"`
}

// Selection returns the parts of the inputs that discount scopes look at
func (in CalculatorInputs) Selection() ScopeSelection {
	return ScopeSelection{
		ProjectTypeKey:      in.ProjectTypeKey,
		SelectedFeatureKeys: in.SelectedFeatureKeys,
		ClientTypeKey:       in.ClientTypeKey,
	}
}

// ScopeSelection is what a discount scope is matched against
type ScopeSelection struct {
	ProjectTypeKey      string   `json:"project_type_key,omitempty"`
	SelectedFeatureKeys []string `json:"selected_feature_keys,omitempty"`
	ClientTypeKey       string   `json:"client_type_key,omitempty"`
}
