package domain

// ScalingRule describes how an expense's cost scales with passenger count.
type ScalingRule string

const (
	// ScalePerPerson marks a cost that grows linearly with headcount. The
	// entered price covers the quote's reference pax and is renormalized
	// per head by the pricing table generator.
	ScalePerPerson ScalingRule = "PER_PERSON"

	// ScaleFixed marks a resource cost that is the same for any headcount.
	ScaleFixed ScalingRule = "FIXED"
)

// ScalingRuleFor classifies an expense category under the quote's transport
// pricing mode. Pure lookup, called for every expense during table
// generation.
//
// transportation is the only mode-dependent category: a VEHICLE-mode line is
// one vehicle's fixed charge, a TOTAL-mode line is an aggregate cost for the
// reference pax.
func ScalingRuleFor(category ExpenseCategory, mode TransportPricingMode) ScalingRule {
	switch category {
	case ExpenseTransportation:
		if mode == TransportPricingVehicle {
			return ScaleFixed
		}

		return ScalePerPerson

	case ExpenseGuideDriverAccommodation, ExpenseParking:
		return ScaleFixed

	case ExpenseHotelAccommodation, ExpenseMeals, ExpenseEntranceFees,
		ExpenseSICTourCost, ExpenseTips, ExpenseGuide:
		return ScalePerPerson
	}

	// Unknown categories are rejected at the aggregate boundary; scaling
	// per person is the conservative default should one slip through.
	return ScalePerPerson
}
