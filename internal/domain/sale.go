package domain

import (
	"time"

	"github.com/google/uuid"
)

type Sale struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Items           []SaleItem `json:"items"`
	TotalAmount     float64    `gorm:"type:decimal(12,2);not null" json:"totalAmount"`
	TotalProfit     float64    `gorm:"type:decimal(12,2);not null" json:"totalProfit"`
	PaymentMethod   string     `gorm:"size:40;index" json:"paymentMethod"`
	Channel         string     `gorm:"size:60;index" json:"channel"`
	CustomerName    string     `gorm:"size:140" json:"customerName"`
	CustomerContact string     `gorm:"size:140" json:"customerContact"`
	Date            time.Time  `gorm:"index" json:"date"`
	CreatedBy       string     `gorm:"size:140" json:"createdBy,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// SaleItem congela precio y costo unitario al momento de la venta. El costo
// nunca se rederiva del producto actual: la rentabilidad histórica no cambia
// aunque después se edite el precio de costo del catálogo.
type SaleItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SaleID      uuid.UUID `gorm:"type:uuid;index" json:"-"`
	ProductID   uuid.UUID `gorm:"type:uuid;index" json:"productId"`
	ProductSKU  string    `gorm:"size:80" json:"productSku"`
	ProductName string    `gorm:"size:180" json:"productName"`
	Quantity    int       `gorm:"not null" json:"quantity"`
	UnitPrice   float64   `gorm:"type:decimal(12,2);not null" json:"unitPrice"`
	UnitCost    float64   `gorm:"type:decimal(12,2);not null" json:"unitCost"`
	Subtotal    float64   `gorm:"type:decimal(12,2);not null" json:"subtotal"`
}

// Recalculate rederiva los agregados desde los renglones. Los totales nunca
// se toman del caller.
func (s *Sale) Recalculate() {
	var amount, profit float64
	for i := range s.Items {
		it := &s.Items[i]
		it.Subtotal = it.UnitPrice * float64(it.Quantity)
		amount += it.Subtotal
		profit += it.Subtotal - float64(it.Quantity)*it.UnitCost
	}
	s.TotalAmount = amount
	s.TotalProfit = profit
}

type SaleFilter struct {
	From          *time.Time
	To            *time.Time
	PaymentMethod string
	Channel       string
	ProductID     *uuid.UUID
}

// ProductSalesRow es una fila de la agregación de ventas por producto.
type ProductSalesRow struct {
	ProductID     uuid.UUID `json:"productId"`
	ProductName   string    `json:"productName"`
	SKU           string    `json:"sku"`
	Image         string    `json:"image"`
	TotalQuantity int       `json:"totalQuantity"`
	TotalRevenue  float64   `json:"totalRevenue"`
	TotalProfit   float64   `json:"totalProfit"`
	LastSaleDate  time.Time `json:"lastSaleDate"`
}
