package saw

import (
	"strings"

	"github.com/allisson/concierge/internal/supplier/domain"
)

// NetRate reports whether a quote is priced net of tax, in which case the tax
// must be added to the total.
var NetRate = domain.ValidatorFunc[quotePayload](func(q quotePayload) bool {
	return strings.EqualFold(q.RateType, "net")
})

// OnlineProperty accepts properties SAW lists as active.
var OnlineProperty = domain.ValidatorFunc[domain.Property](func(p domain.Property) bool {
	return p.Active
})

// NamedProperty rejects properties without a display name.
var NamedProperty = domain.ValidatorFunc[domain.Property](func(p domain.Property) bool {
	return strings.TrimSpace(p.Title) != ""
})
