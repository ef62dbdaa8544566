package catalog

import (
	"context"

	"github.com/shopspring/decimal"
)

// Product is the record returned by the catalog backend for a barcode
// lookup. It carries the associations the ERP maintains for a SKU.
type Product struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Barcode      string          `json:"barcode"`
	Image        string          `json:"image,omitempty"`
	CategoryID   string          `json:"category_id,omitempty"`
	DepartmentID string          `json:"department_id,omitempty"`
	EmployeeID   string          `json:"employee_id,omitempty"`
}

// Resolver turns a validated barcode string into a product record.
// Implementations issue a single lookup and never retry on their own;
// retry policy belongs to the decode loop, not to resolution.
//
// Failures are returned as errors wrapping shared.ErrNotFound for a
// not-ok backend response and shared.ErrUnavailable for transport
// failures, each with a human-readable cause.
type Resolver interface {
	ResolveByBarcode(ctx context.Context, barcode string) (*Product, error)
}
