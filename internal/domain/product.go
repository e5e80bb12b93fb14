package domain

import (
	"time"

	"github.com/google/uuid"
)

type ProductStatus string

const (
	ProductActive   ProductStatus = "active"
	ProductInactive ProductStatus = "inactive"
)

// Tipos de canal reconocidos para rutear la sincronización de catálogo. Un
// producto sin tipo reconocido se publica a todos los endpoints configurados.
const (
	TypeHogar   = "hogar"
	TypeCalzado = "calzado"
)

func KnownType(t string) bool { return t == TypeHogar || t == TypeCalzado }

type Product struct {
	ID          uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	SKU         string        `gorm:"uniqueIndex;size:80;not null" json:"sku"`
	Name        string        `gorm:"size:180;not null" json:"name"`
	Category    string        `gorm:"size:100;index" json:"category"`
	Distributor string        `gorm:"size:140" json:"distributor"`
	Image       string        `gorm:"size:255" json:"image"`
	CostPrice   float64       `gorm:"type:decimal(12,2);default:0" json:"costPrice"`
	PublicPrice float64       `gorm:"type:decimal(12,2);default:0" json:"publicPrice"`
	MarginAmt   float64       `gorm:"type:decimal(12,2);default:0" json:"marginAmount"`
	MarginPct   float64       `gorm:"type:decimal(6,2);default:0" json:"marginPercentage"`
	Stock       int           `gorm:"type:int;default:0" json:"stock"`
	MinStock    int           `gorm:"type:int;default:5" json:"minStock"`
	Status      ProductStatus `gorm:"type:varchar(10);default:'active';index" json:"status"`
	Type        string        `gorm:"size:40;index" json:"type"`
	Sizes       []SizeStock   `gorm:"type:jsonb;serializer:json" json:"sizes,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// SizeStock es el desglose de stock por talle para productos que lo trackean
// por variante (calzado). Se serializa como jsonb dentro del producto.
type SizeStock struct {
	Size  string `json:"size"`
	Stock int    `json:"stock"`
}

// Normalize recalcula los invariantes derivados del producto. Todo camino de
// escritura (alta, edición, ingesta remota) debe invocarlo antes de persistir:
// margen = publicPrice - costPrice (cero si publicPrice <= 0) y, cuando hay
// desglose por talle, stock = suma de los talles.
func (p *Product) Normalize() {
	if p.PublicPrice > 0 {
		p.MarginAmt = p.PublicPrice - p.CostPrice
		p.MarginPct = p.MarginAmt / p.PublicPrice * 100
	} else {
		p.MarginAmt = 0
		p.MarginPct = 0
	}
	if len(p.Sizes) > 0 {
		total := 0
		for _, s := range p.Sizes {
			total += s.Stock
		}
		p.Stock = total
	}
	if p.Status == "" {
		p.Status = ProductActive
	}
}

// LowStock informa si el producto está por debajo de su umbral mínimo.
func (p *Product) LowStock() bool { return p.Stock < p.MinStock }

type ProductFilter struct {
	Category string
	Status   ProductStatus
	Type     string
	Query    string
}
