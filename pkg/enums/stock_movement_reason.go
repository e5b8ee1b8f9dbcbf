package enums

// StockMovementReason labels why an inventory quantity changed.
type StockMovementReason string

const (
	StockMovementReasonOrderAdd     StockMovementReason = "order_add"
	StockMovementReasonOrderUpdate  StockMovementReason = "order_update"
	StockMovementReasonOrderDelete  StockMovementReason = "order_delete"
	StockMovementReasonOrderReject  StockMovementReason = "order_reject"
	StockMovementReasonCompensation StockMovementReason = "compensation"
	StockMovementReasonAdjustment   StockMovementReason = "adjustment"
)
