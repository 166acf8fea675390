package models

type BusinessUnit string

const (
	BusinessUnitRestaurant BusinessUnit = "restaurant"
	BusinessUnitCoffee     BusinessUnit = "coffee"
)

func (b BusinessUnit) Valid() bool {
	return b == BusinessUnitRestaurant || b == BusinessUnitCoffee
}

type StockStatus string

const (
	StockStatusInStock    StockStatus = "in_stock"
	StockStatusLowStock   StockStatus = "low_stock"
	StockStatusOutOfStock StockStatus = "out_of_stock"
)

type MovementType string

const (
	MovementCreate   MovementType = "CREATE"
	MovementRestock  MovementType = "RESTOCK"
	MovementConsume  MovementType = "CONSUME"
	MovementAdjust   MovementType = "ADJUST"
	MovementReversal MovementType = "REVERSAL"
)

func (m MovementType) Valid() bool {
	switch m {
	case MovementCreate, MovementRestock, MovementConsume, MovementAdjust, MovementReversal:
		return true
	}
	return false
}

type OrderStatus string

const (
	OrderStatusPendingWebhook OrderStatus = "PENDING_WEBHOOK"
	OrderStatusSubmitted      OrderStatus = "SUBMITTED"
	OrderStatusFailedWebhook  OrderStatus = "FAILED_WEBHOOK"
)

type ItemType string

const (
	ItemTypeMenu ItemType = "menu"
	ItemTypeDeal ItemType = "deal"
)

func (t ItemType) Valid() bool {
	return t == ItemTypeMenu || t == ItemTypeDeal
}

const (
	TicketScopeBusinessUnit = "business_unit"
	TicketScopeGlobal       = "global"

	WebhookSource   = "jojo-admin"
	DefaultCurrency = "TND"

	DefaultMovementsLimit = 200
	MaxMovementsLimit     = 1000
	DefaultOrdersLimit    = 10
	DefaultAlertsLimit    = 100
	MaxAlertsLimit        = 500
	DefaultAuditsLimit    = 100
)
