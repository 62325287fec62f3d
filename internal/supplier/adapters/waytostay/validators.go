package waytostay

import "github.com/allisson/concierge/internal/supplier/domain"

// ActiveProperty accepts properties whose status is active.
var ActiveProperty = domain.ValidatorFunc[domain.Property](func(p domain.Property) bool {
	return p.Active
})

// HasCapacity rejects listings that accept no guests.
var HasCapacity = domain.ValidatorFunc[domain.Property](func(p domain.Property) bool {
	return p.MaxGuests > 0
})
