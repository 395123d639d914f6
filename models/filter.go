package models

import "github.com/cockroachdb/errors"

type FilterOperator string

const (
	FilterEqual              FilterOperator = "="
	FilterNotEqual           FilterOperator = "!="
	FilterLessThan           FilterOperator = "<"
	FilterLessThanOrEqual    FilterOperator = "<="
	FilterGreaterThan        FilterOperator = ">"
	FilterGreaterThanOrEqual FilterOperator = ">="
)

var allowedFilterOperators = map[FilterOperator]struct{}{
	FilterEqual:              {},
	FilterNotEqual:           {},
	FilterLessThan:           {},
	FilterLessThanOrEqual:    {},
	FilterGreaterThan:        {},
	FilterGreaterThanOrEqual: {},
}

// Filter is one (column, operator, value) predicate. Filters of a query are ANDed together.
type Filter struct {
	Column   string
	Operator FilterOperator
	Value    any
}

func (f Filter) Validate() error {
	if f.Column == "" {
		return errors.Wrap(BadParameterError, "filter column is required")
	}
	if _, ok := allowedFilterOperators[f.Operator]; !ok {
		return errors.Wrapf(ErrInvalidFilterOperator, "'%s'", f.Operator)
	}
	return nil
}
