package molecule

import (
	"github.com/qaioz/molstore/pkg/errors"
	"github.com/qaioz/molstore/pkg/types/common"
)

// OrderByMass is the only supported explicit ordering column.
const OrderByMass = "mass"

// SearchParams filters and orders List results.  Nil fields are unset.
//
// When Name is set the results are ranked by trigram similarity and OrderBy
// and Order are ignored.  Otherwise OrderBy=mass sorts by mass in Order
// (default asc) with molecule_id as the tie-breaker; without OrderBy rows come
// back in molecule_id order.
type SearchParams struct {
	Name    *string
	MinMass *float64
	MaxMass *float64
	OrderBy *string
	Order   *string
}

// Validate rejects negative mass bounds, an inverted range and unknown
// ordering values.
func (p SearchParams) Validate() error {
	if p.MinMass != nil && *p.MinMass < 0 {
		return errors.New(errors.ErrCodeValidation, "minMass must be non-negative")
	}
	if p.MaxMass != nil && *p.MaxMass < 0 {
		return errors.New(errors.ErrCodeValidation, "maxMass must be non-negative")
	}
	if p.MinMass != nil && p.MaxMass != nil && *p.MinMass > *p.MaxMass {
		return errors.New(errors.ErrCodeValidation, "minMass must not exceed maxMass")
	}
	if p.OrderBy != nil && *p.OrderBy != OrderByMass {
		return errors.New(errors.ErrCodeValidation, "orderBy must be \"mass\"")
	}
	if p.Order != nil && !common.SortOrder(*p.Order).IsValid() {
		return errors.New(errors.ErrCodeValidation, "order must be \"asc\" or \"desc\"")
	}
	return nil
}

// IsZero reports whether no filter or ordering is set.
func (p SearchParams) IsZero() bool {
	return p.Name == nil && p.MinMass == nil && p.MaxMass == nil && p.OrderBy == nil && p.Order == nil
}

// SortOrder returns the effective direction for mass ordering.
func (p SearchParams) SortOrder() common.SortOrder {
	if p.Order != nil && *p.Order == string(common.SortDesc) {
		return common.SortDesc
	}
	return common.SortAsc
}

// CacheArgs returns the parameters as cache-key arguments.  Unset fields are
// nil and drop out of the key.
func (p SearchParams) CacheArgs() map[string]any {
	return map[string]any{
		"name":     p.Name,
		"min_mass": p.MinMass,
		"max_mass": p.MaxMass,
		"order_by": p.OrderBy,
		"order":    p.Order,
	}
}

//Personal.AI order the ending
