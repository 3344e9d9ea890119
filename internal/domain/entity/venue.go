package entity

import "github.com/shopspring/decimal"

// VenueSettings configuración del local relevante para el CMV.
type VenueSettings struct {
	VenueID int64
	Name    string
	// InventorySource identifica la fuente de conteos; vacío = no configurada.
	InventorySource       string
	TheoreticalCmvPercent decimal.Decimal
}
