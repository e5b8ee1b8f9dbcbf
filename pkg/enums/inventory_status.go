package enums

// InventoryStatus is derived from an item's quantity and reorder level; it is
// never stored.
type InventoryStatus string

const (
	InventoryStatusAvailable  InventoryStatus = "Available"
	InventoryStatusLowStock   InventoryStatus = "Low Stock"
	InventoryStatusOutOfStock InventoryStatus = "Out of Stock"
)

// DeriveInventoryStatus maps quantity against the reorder level.
func DeriveInventoryStatus(quantity, reorderLevel float64) InventoryStatus {
	switch {
	case quantity <= 0:
		return InventoryStatusOutOfStock
	case quantity <= reorderLevel:
		return InventoryStatusLowStock
	default:
		return InventoryStatusAvailable
	}
}
