package models

import (
	"fmt"

	"github.com/dmitrijs2005/dzakcloud/internal/common"
)

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 200
)

// ListPage is an offset/limit window over a list query.
type ListPage struct {
	Limit  int
	Offset int
}

// Normalize applies the default limit, caps it at MaxPageLimit and rejects
// negative values.
func (p ListPage) Normalize() (ListPage, error) {
	if p.Limit < 0 || p.Offset < 0 {
		return p, fmt.Errorf("%w: limit and offset must not be negative", common.ErrorValidation)
	}
	if p.Limit == 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p, nil
}
