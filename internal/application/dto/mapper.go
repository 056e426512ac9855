package dto

import (
	"github.com/jhoicas/ventas-pos/internal/domain/billing"
	"github.com/jhoicas/ventas-pos/internal/domain/entity"
	"github.com/jhoicas/ventas-pos/pkg/money"
)

// ToProductResponse f puede ser nil (sin precio formateado).
func ToProductResponse(p *entity.Product, f *money.Formatter) *ProductResponse {
	if p == nil {
		return nil
	}
	out := &ProductResponse{
		ID:          p.ID,
		Code:        p.Code,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Quantity:    p.Quantity,
		Category:    p.Category,
		Active:      p.Active,
		CreatedAt:   p.CreatedAt,
	}
	if f != nil {
		out.PriceFormatted = f.Format(p.Price)
	}
	return out
}

// ToProductList mapea una lista.
func ToProductList(list []*entity.Product, f *money.Formatter) []ProductResponse {
	out := make([]ProductResponse, 0, len(list))
	for _, p := range list {
		out = append(out, *ToProductResponse(p, f))
	}
	return out
}

// ToUserResponse sin password.
func ToUserResponse(u *entity.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:              u.ID,
		Username:        u.Username,
		Name:            u.Name,
		Email:           u.Email,
		Role:            u.Role.String(),
		RoleDescription: u.Role.Description(),
		Active:          u.Active,
		CreatedAt:       u.CreatedAt,
	}
}

// ToSaleResponse f puede ser nil.
func ToSaleResponse(s *entity.Sale, f *money.Formatter) *SaleResponse {
	if s == nil {
		return nil
	}
	out := &SaleResponse{
		ID:        s.ID,
		SellerID:  s.SellerID(),
		Items:     make([]SaleItemResponse, 0, len(s.Items)),
		ItemCount: s.ItemCount(),
		Total:     s.Total,
		CreatedAt: s.CreatedAt,
	}
	if s.Seller != nil {
		out.SellerName = s.Seller.Name
	}
	for _, it := range s.Items {
		out.Items = append(out.Items, SaleItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Code:      it.ProductCode,
			Name:      it.ProductName,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Subtotal:  it.Subtotal,
		})
	}
	if f != nil {
		out.TotalFormatted = f.Format(s.Total)
	}
	return out
}

// ToSaleList mapea una lista.
func ToSaleList(list []*entity.Sale, f *money.Formatter) []SaleResponse {
	out := make([]SaleResponse, 0, len(list))
	for _, s := range list {
		out = append(out, *ToSaleResponse(s, f))
	}
	return out
}

// ToInvoiceResponse f puede ser nil.
func ToInvoiceResponse(inv *billing.Invoice, f *money.Formatter) *InvoiceResponse {
	out := &InvoiceResponse{
		Number:           inv.Number,
		IssuedAt:         inv.IssuedAt,
		IssuerName:       inv.Issuer.Name,
		IssuerNIT:        inv.Issuer.NIT,
		SaleID:           inv.SaleID,
		SellerName:       inv.SellerName,
		CustomerName:     inv.CustomerName,
		CustomerDocument: inv.CustomerDocument,
		IncludeTax:       inv.IncludeTax,
		Lines:            make([]InvoiceLineResponse, 0, len(inv.Lines)),
		Subtotal:         inv.Subtotal,
		Tax:              inv.Tax,
		Total:            inv.Total,
		Notes:            inv.Notes,
	}
	for _, l := range inv.Lines {
		out.Lines = append(out.Lines, InvoiceLineResponse{
			Code: l.Code, Name: l.Name, Quantity: l.Quantity, UnitPrice: l.UnitPrice, Subtotal: l.Subtotal,
		})
	}
	if f != nil {
		out.TotalFormatted = f.Format(inv.Total)
	}
	return out
}
