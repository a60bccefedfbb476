package postgres

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/Omri-Jukin/Portfolio-sub003/core/types"
)

type projectTypeRow struct {
	Key         string          `db:"key"`
	DisplayName string          `db:"display_name"`
	BaseRate    decimal.Decimal `db:"base_rate"`
	SortOrder   int             `db:"sort_order"`
	IsActive    bool            `db:"is_active"`
}

type overrideRow struct {
	ProjectTypeKey string          `db:"project_type_key"`
	ClientTypeKey  sql.NullString  `db:"client_type_key"`
	BaseRate       decimal.Decimal `db:"base_rate"`
	SortOrder      int             `db:"sort_order"`
	IsActive       bool            `db:"is_active"`
}

type featureRow struct {
	Key         string          `db:"key"`
	DisplayName string          `db:"display_name"`
	Cost        decimal.Decimal `db:"cost"`
	Group       sql.NullString  `db:"feature_group"`
	SortOrder   int             `db:"sort_order"`
	IsActive    bool            `db:"is_active"`
}

type groupRow struct {
	Key         string `db:"key"`
	DisplayName string `db:"display_name"`
	SortOrder   int    `db:"sort_order"`
	IsActive    bool   `db:"is_active"`
}

type optionRow struct {
	GroupKey    string          `db:"group_key"`
	OptionKey   string          `db:"option_key"`
	Value       decimal.Decimal `db:"value"`
	IsFixed     bool            `db:"is_fixed"`
	DisplayName string          `db:"display_name"`
	SortOrder   int             `db:"sort_order"`
	IsActive    bool            `db:"is_active"`
}

type metaRow struct {
	PageCostPerUnit decimal.Decimal `db:"page_cost_per_unit"`
	RangePercent    decimal.Decimal `db:"range_percent"`
	DefaultCurrency string          `db:"default_currency"`
}

type minimumRow struct {
	ProjectTypeKey string          `db:"project_type_key"`
	Amount         decimal.Decimal `db:"amount"`
}

type discountRow struct {
	Code               string          `db:"code"`
	Type               string          `db:"discount_type"`
	Amount             decimal.Decimal `db:"amount"`
	Currency           string          `db:"currency"`
	ProjectTypes       pq.StringArray  `db:"project_types"`
	Features           pq.StringArray  `db:"features"`
	ClientTypes        pq.StringArray  `db:"client_types"`
	ExcludeClientTypes pq.StringArray  `db:"exclude_client_types"`
	StartsAt           sql.NullTime    `db:"starts_at"`
	EndsAt             sql.NullTime    `db:"ends_at"`
	MaxUses            sql.NullInt64   `db:"max_uses"`
	UsedCount          int             `db:"used_count"`
	PerUserLimit       int             `db:"per_user_limit"`
	IsActive           bool            `db:"is_active"`
}

// tables holds one read of every pricing table
type tables struct {
	projectTypes []projectTypeRow
	overrides    []overrideRow
	features     []featureRow
	groups       []groupRow
	options      []optionRow
	meta         metaRow
	minimums     []minimumRow
}

// assemble builds a model from table rows. Rows must arrive in sort order;
// options attach to their group by key and orphans are dropped.
func assemble(t tables) *types.PricingModel {
	m := &types.PricingModel{
		Meta: types.PricingMeta{
			PageCostPerUnit: t.meta.PageCostPerUnit,
			RangePercent:    t.meta.RangePercent,
			DefaultCurrency: types.Currency(t.meta.DefaultCurrency),
		},
	}

	for _, r := range t.projectTypes {
		m.ProjectTypes = append(m.ProjectTypes, types.ProjectType{
			Key:         r.Key,
			DisplayName: r.DisplayName,
			BaseRate:    r.BaseRate,
			Order:       r.SortOrder,
			IsActive:    r.IsActive,
		})
	}

	for _, r := range t.overrides {
		m.BaseRateOverrides = append(m.BaseRateOverrides, types.BaseRateOverride{
			ProjectTypeKey: r.ProjectTypeKey,
			ClientTypeKey:  r.ClientTypeKey.String,
			BaseRate:       r.BaseRate,
			Order:          r.SortOrder,
			IsActive:       r.IsActive,
		})
	}

	for _, r := range t.features {
		m.Features = append(m.Features, types.Feature{
			Key:         r.Key,
			DisplayName: r.DisplayName,
			Cost:        r.Cost,
			Group:       r.Group.String,
			Order:       r.SortOrder,
			IsActive:    r.IsActive,
		})
	}

	index := make(map[string]int, len(t.groups))
	for i, r := range t.groups {
		index[r.Key] = i
		m.MultiplierGroups = append(m.MultiplierGroups, types.MultiplierGroup{
			Key:         r.Key,
			DisplayName: r.DisplayName,
			Order:       r.SortOrder,
			IsActive:    r.IsActive,
		})
	}
	for _, r := range t.options {
		i, ok := index[r.GroupKey]
		if !ok {
			continue
		}
		m.MultiplierGroups[i].Options = append(m.MultiplierGroups[i].Options, types.MultiplierOption{
			Key:         r.OptionKey,
			Value:       r.Value,
			IsFixed:     r.IsFixed,
			DisplayName: r.DisplayName,
			Order:       r.SortOrder,
			IsActive:    r.IsActive,
		})
	}

	if len(t.minimums) > 0 {
		m.Meta.ProjectMinimums = make(map[string]decimal.Decimal, len(t.minimums))
		for _, r := range t.minimums {
			m.Meta.ProjectMinimums[r.ProjectTypeKey] = r.Amount
		}
	}

	m.Version = contentVersion(m)
	return m
}

// contentVersion hashes the model so that cache keys change whenever a table does
func contentVersion(m *types.PricingModel) string {
	data, _ := json.Marshal(m)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:12]
}

func (r discountRow) toDiscount() *types.Discount {
	d := &types.Discount{
		Code:     r.Code,
		Type:     types.DiscountType(r.Type),
		Amount:   r.Amount,
		Currency: types.Currency(r.Currency),
		AppliesTo: types.ScopeRules{
			ProjectTypes:       []string(r.ProjectTypes),
			Features:           []string(r.Features),
			ClientTypes:        []string(r.ClientTypes),
			ExcludeClientTypes: []string(r.ExcludeClientTypes),
		},
		UsedCount:    r.UsedCount,
		PerUserLimit: r.PerUserLimit,
		IsActive:     r.IsActive,
	}
	if r.StartsAt.Valid {
		t := r.StartsAt.Time
		d.StartsAt = &t
	}
	if r.EndsAt.Valid {
		t := r.EndsAt.Time
		d.EndsAt = &t
	}
	if r.MaxUses.Valid {
		n := int(r.MaxUses.Int64)
		d.MaxUses = &n
	}
	return d
}
