package cart

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Kubgxy/Project-Benjaphan-V2-sub000/internal/catalog"
)

var ErrEmptySelection = errors.New("no items selected")

// Cache is the read cache consulted by GetCart. A miss is (nil, nil).
type Cache interface {
	Get(ctx context.Context, customerID string) (*Cart, error)
	Set(ctx context.Context, customerID string, c *Cart) error
	Delete(ctx context.Context, customerID string) error
}

// Service owns one cart per customer. The catalog is read exactly once per
// AddItem to snapshot name/images/price; every other operation works on the
// stored snapshots only.
type Service struct {
	repo    Repository
	catalog catalog.Lookup
	cache   Cache
	sfg     singleflight.Group // prevents cache stampede
	logger  *log.Logger
}

func NewService(repo Repository, lookup catalog.Lookup, cache Cache, logger *log.Logger) *Service {
	return &Service{
		repo:    repo,
		catalog: lookup,
		cache:   cache,
		logger:  logger,
	}
}

// GetCart returns the customer's cart, or nil if none has been created yet.
func (s *Service) GetCart(ctx context.Context, customerID string) (*Cart, error) {
	v, err, _ := s.sfg.Do(customerID, func() (interface{}, error) {
		c, err := s.cache.Get(ctx, customerID)
		if err != nil {
			s.logger.Printf("cache get error: %v", err)
		}
		if c != nil {
			return c, nil
		}

		c, err = s.repo.GetCart(ctx, customerID)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return (*Cart)(nil), nil
		}

		go func() {
			setCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := s.cache.Set(setCtx, customerID, c); err != nil {
				s.logger.Printf("cache set error: %v", err)
			}
		}()

		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Cart), nil
}

// AddItem snapshots the product from the catalog and consolidates it into
// the cart, creating the cart on first use. A catalog failure aborts the
// call; the cart is never mutated without a valid snapshot.
func (s *Service) AddItem(ctx context.Context, customerID, productID, size string, quantity int) (*Cart, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	p, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("catalog lookup: %w", err)
	}

	c, err := s.repo.Mutate(ctx, customerID, func(c *Cart) error {
		lines, err := Consolidate(c.Lines, AddRequest{
			ProductID:    productID,
			Size:         size,
			Quantity:     quantity,
			Name:         p.Name,
			Images:       p.Images,
			PriceAtAdded: p.Price,
		})
		if err != nil {
			return err
		}
		c.Lines = lines
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCache(customerID)
	return c, nil
}

// RemoveItem filters out the matching line. A missing line, or a missing
// cart altogether, is an idempotent no-op.
func (s *Service) RemoveItem(ctx context.Context, customerID string, key LineKey) (*Cart, error) {
	existing, err := s.repo.GetCart(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return &Cart{CustomerID: customerID}, nil
	}

	c, err := s.repo.Mutate(ctx, customerID, func(c *Cart) error {
		kept := c.Lines[:0]
		for _, ln := range c.Lines {
			if ln.ProductID == key.ProductID && ln.Size == key.Size {
				continue
			}
			kept = append(kept, ln)
		}
		c.Lines = kept
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCache(customerID)
	return c, nil
}

// UpdateQuantity overwrites the quantity of the matching line. Live stock is
// not re-validated here; that is an admin/checkout boundary concern.
func (s *Service) UpdateQuantity(ctx context.Context, customerID, productID, size string, quantity int) (*Cart, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	if err := s.requireCart(ctx, customerID); err != nil {
		return nil, err
	}

	c, err := s.repo.Mutate(ctx, customerID, func(c *Cart) error {
		for i := range c.Lines {
			if c.Lines[i].ProductID == productID && c.Lines[i].Size == size {
				c.Lines[i].Quantity = quantity
				return nil
			}
		}
		return ErrItemNotInCart
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCache(customerID)
	return c, nil
}

// ChangeSize moves a line to another size, merging into an existing line of
// the target size when there is one.
func (s *Service) ChangeSize(ctx context.Context, customerID, productID, oldSize, newSize string) (*Cart, error) {
	if err := s.requireCart(ctx, customerID); err != nil {
		return nil, err
	}

	c, err := s.repo.Mutate(ctx, customerID, func(c *Cart) error {
		lines, err := ChangeSize(c.Lines, productID, oldSize, newSize)
		if err != nil {
			return err
		}
		c.Lines = lines
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCache(customerID)
	return c, nil
}

// ReplaceSelection narrows the cart down to the given line keys, so checkout
// always snapshots from the stored cart rather than a client-held list.
// Every key must match a stored line; snapshots cannot be forged from the
// outside.
func (s *Service) ReplaceSelection(ctx context.Context, customerID string, keys []LineKey) (*Cart, error) {
	if len(keys) == 0 {
		return nil, ErrEmptySelection
	}

	if err := s.requireCart(ctx, customerID); err != nil {
		return nil, err
	}

	c, err := s.repo.Mutate(ctx, customerID, func(c *Cart) error {
		selected := make([]Line, 0, len(keys))
		for _, key := range keys {
			found := false
			for _, ln := range c.Lines {
				if ln.ProductID == key.ProductID && ln.Size == key.Size {
					selected = append(selected, ln)
					found = true
					break
				}
			}
			if !found {
				return ErrItemNotInCart
			}
		}
		c.Lines = selected
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCache(customerID)
	return c, nil
}

// Clear empties the cart after checkout. The cart row survives.
func (s *Service) Clear(ctx context.Context, customerID string) error {
	if err := s.repo.ClearLines(ctx, customerID); err != nil {
		return err
	}
	s.invalidateCache(customerID)
	return nil
}

func (s *Service) requireCart(ctx context.Context, customerID string) error {
	c, err := s.repo.GetCart(ctx, customerID)
	if err != nil {
		return err
	}
	if c == nil {
		return ErrItemNotInCart
	}
	return nil
}

func (s *Service) invalidateCache(customerID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, customerID); err != nil {
		s.logger.Printf("cache invalidate error: %v", err)
	}
}
