package enums

import "fmt"

// InventoryCategory classifies a warehouse item by construction material type.
type InventoryCategory string

const (
	InventoryCategoryCement     InventoryCategory = "Cement"
	InventoryCategorySteel      InventoryCategory = "Steel"
	InventoryCategoryBricks     InventoryCategory = "Bricks"
	InventoryCategorySand       InventoryCategory = "Sand"
	InventoryCategoryWood       InventoryCategory = "Wood"
	InventoryCategoryElectrical InventoryCategory = "Electrical"
	InventoryCategoryPlumbing   InventoryCategory = "Plumbing"
	InventoryCategoryTools      InventoryCategory = "Tools"
	InventoryCategoryOther      InventoryCategory = "Other"
)

var validInventoryCategories = []InventoryCategory{
	InventoryCategoryCement,
	InventoryCategorySteel,
	InventoryCategoryBricks,
	InventoryCategorySand,
	InventoryCategoryWood,
	InventoryCategoryElectrical,
	InventoryCategoryPlumbing,
	InventoryCategoryTools,
	InventoryCategoryOther,
}

// String implements fmt.Stringer.
func (c InventoryCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known InventoryCategory.
func (c InventoryCategory) IsValid() bool {
	for _, candidate := range validInventoryCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseInventoryCategory converts raw input into an InventoryCategory.
func ParseInventoryCategory(value string) (InventoryCategory, error) {
	for _, candidate := range validInventoryCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid inventory category %q", value)
}

// Availability is the derived stock-level tier of a warehouse item.
type Availability string

const (
	AvailabilityInStock    Availability = "In Stock"
	AvailabilityLowStock   Availability = "Low Stock"
	AvailabilityOutOfStock Availability = "Out of Stock"
)

// lowStockCeiling is the largest quantity still considered low stock.
const lowStockCeiling = 50

// AvailabilityForQuantity derives the stock tier from a remaining quantity.
// Every code path that mutates an item's quantity goes through this function.
func AvailabilityForQuantity(quantity int) Availability {
	switch {
	case quantity > lowStockCeiling:
		return AvailabilityInStock
	case quantity > 0:
		return AvailabilityLowStock
	default:
		return AvailabilityOutOfStock
	}
}

// String implements fmt.Stringer.
func (a Availability) String() string {
	return string(a)
}
