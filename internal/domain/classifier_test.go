package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScalingRuleFor(t *testing.T) {
	tests := []struct {
		name     string
		category ExpenseCategory
		mode     TransportPricingMode
		expected ScalingRule
	}{
		{"hotel is per person", ExpenseHotelAccommodation, TransportPricingTotal, ScalePerPerson},
		{"meals are per person", ExpenseMeals, TransportPricingVehicle, ScalePerPerson},
		{"entrance fees are per person", ExpenseEntranceFees, TransportPricingTotal, ScalePerPerson},
		{"sic tour cost is per person", ExpenseSICTourCost, TransportPricingVehicle, ScalePerPerson},
		{"tips are per person", ExpenseTips, TransportPricingTotal, ScalePerPerson},
		{"guide is per person", ExpenseGuide, TransportPricingVehicle, ScalePerPerson},
		{"guide/driver accommodation is fixed", ExpenseGuideDriverAccommodation, TransportPricingTotal, ScaleFixed},
		{"parking is fixed", ExpenseParking, TransportPricingTotal, ScaleFixed},
		{"transportation in total mode is per person", ExpenseTransportation, TransportPricingTotal, ScalePerPerson},
		{"transportation in vehicle mode is fixed", ExpenseTransportation, TransportPricingVehicle, ScaleFixed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ScalingRuleFor(tt.category, tt.mode))
		})
	}
}

func TestScalingRuleFor_CoversEveryCategory(t *testing.T) {
	for _, category := range ExpenseCategories {
		for _, mode := range []TransportPricingMode{TransportPricingTotal, TransportPricingVehicle} {
			rule := ScalingRuleFor(category, mode)
			assert.Contains(t, []ScalingRule{ScalePerPerson, ScaleFixed}, rule,
				"category %s mode %s", category, mode)
		}
	}
}
