package cart

import "errors"

var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrItemNotInCart   = errors.New("item not in cart")
)

// AddRequest carries the catalog snapshot for one add-to-cart call.
type AddRequest struct {
	ProductID    string
	Size         string
	Quantity     int
	Name         string
	Images       []string
	PriceAtAdded float64
}

// Consolidate merges the request into an existing (productId, size) line or
// appends a new one built from the request's snapshot fields. Snapshot
// fields of a merged line are left untouched.
func Consolidate(lines []Line, req AddRequest) ([]Line, error) {
	if req.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	for i := range lines {
		if lines[i].ProductID == req.ProductID && lines[i].Size == req.Size {
			lines[i].Quantity += req.Quantity
			return lines, nil
		}
	}

	return append(lines, Line{
		ProductID:    req.ProductID,
		Name:         req.Name,
		Images:       req.Images,
		Size:         req.Size,
		Quantity:     req.Quantity,
		PriceAtAdded: req.PriceAtAdded,
	}), nil
}

// ChangeSize moves the (productId, oldSize) line to newSize. If a
// (productId, newSize) line already exists the quantities are merged and the
// old line is dropped; otherwise the size is rewritten in place. A retry
// after success finds no (productId, oldSize) line and gets ErrItemNotInCart
// instead of touching the new line again.
func ChangeSize(lines []Line, productID, oldSize, newSize string) ([]Line, error) {
	src := -1
	for i := range lines {
		if lines[i].ProductID == productID && lines[i].Size == oldSize {
			src = i
			break
		}
	}
	if src == -1 {
		return nil, ErrItemNotInCart
	}

	for i := range lines {
		if i == src {
			continue
		}
		if lines[i].ProductID == productID && lines[i].Size == newSize {
			lines[i].Quantity += lines[src].Quantity
			return append(lines[:src], lines[src+1:]...), nil
		}
	}

	lines[src].Size = newSize
	return lines, nil
}
