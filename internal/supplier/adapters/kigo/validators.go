package kigo

import "github.com/allisson/concierge/internal/supplier/domain"

// ActiveProperty accepts properties Kigo lists as active.
var ActiveProperty = domain.ValidatorFunc[domain.Property](func(p domain.Property) bool {
	return p.Active
})

// InstantBookable accepts properties that can be booked without host approval.
var InstantBookable = domain.ValidatorFunc[domain.Property](func(p domain.Property) bool {
	return p.Attributes["instant_booking"] == "true"
})
