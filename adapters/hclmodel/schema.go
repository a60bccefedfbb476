package hclmodel

// Money and multiplier attributes decode as strings so that values keep their
// exact decimal form; HCL converts number literals to strings on decode.

type fileSchema struct {
	Meta         *metaBlock         `hcl:"meta,block"`
	ProjectTypes []projectTypeBlock `hcl:"project_type,block"`
	Overrides    []overrideBlock    `hcl:"base_rate_override,block"`
	Features     []featureBlock     `hcl:"feature,block"`
	Groups       []groupBlock       `hcl:"multiplier_group,block"`
	Discounts    []discountBlock    `hcl:"discount,block"`
}

type metaBlock struct {
	Version         string            `hcl:"version,optional"`
	PageCostPerUnit string            `hcl:"page_cost_per_unit"`
	RangePercent    string            `hcl:"range_percent"`
	DefaultCurrency string            `hcl:"default_currency,optional"`
	ProjectMinimums map[string]string `hcl:"project_minimums,optional"`
}

type projectTypeBlock struct {
	Key         string `hcl:"key,label"`
	DisplayName string `hcl:"display_name,optional"`
	BaseRate    string `hcl:"base_rate"`
	Order       int    `hcl:"order,optional"`
	Active      *bool  `hcl:"active,optional"`
}

type overrideBlock struct {
	ProjectTypeKey string `hcl:"project_type,label"`
	ClientTypeKey  string `hcl:"client_type,label"`
	BaseRate       string `hcl:"base_rate"`
	Order          int    `hcl:"order,optional"`
	Active         *bool  `hcl:"active,optional"`
}

type featureBlock struct {
	Key         string `hcl:"key,label"`
	DisplayName string `hcl:"display_name,optional"`
	Cost        string `hcl:"cost"`
	Group       string `hcl:"group,optional"`
	Order       int    `hcl:"order,optional"`
	Active      *bool  `hcl:"active,optional"`
}

type groupBlock struct {
	Key         string        `hcl:"key,label"`
	DisplayName string        `hcl:"display_name,optional"`
	Order       int           `hcl:"order,optional"`
	Active      *bool         `hcl:"active,optional"`
	Options     []optionBlock `hcl:"option,block"`
}

type optionBlock struct {
	Key         string `hcl:"key,label"`
	Value       string `hcl:"value"`
	Fixed       bool   `hcl:"fixed,optional"`
	DisplayName string `hcl:"display_name,optional"`
	Order       int    `hcl:"order,optional"`
	Active      *bool  `hcl:"active,optional"`
}

type discountBlock struct {
	Code         string      `hcl:"code,label"`
	Type         string      `hcl:"type"`
	Amount       string      `hcl:"amount"`
	Currency     string      `hcl:"currency,optional"`
	StartsAt     string      `hcl:"starts_at,optional"`
	EndsAt       string      `hcl:"ends_at,optional"`
	MaxUses      *int        `hcl:"max_uses,optional"`
	UsedCount    int         `hcl:"used_count,optional"`
	PerUserLimit int         `hcl:"per_user_limit,optional"`
	Active       *bool       `hcl:"active,optional"`
	AppliesTo    *scopeBlock `hcl:"applies_to,block"`
}

type scopeBlock struct {
	ProjectTypes       []string `hcl:"project_types,optional"`
	Features           []string `hcl:"features,optional"`
	ClientTypes        []string `hcl:"client_types,optional"`
	ExcludeClientTypes []string `hcl:"exclude_client_types,optional"`
}

// absent means active
func active(b *bool) bool {
	return b == nil || *b
}
