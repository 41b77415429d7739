package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rajivgeraev/adena-api/internal/models"
)

// ListingStore читает объявления. Для чата нужен только продавец объявления.
type ListingStore struct {
	pool *pgxpool.Pool
}

// NewListingStore создаёт ListingStore
func NewListingStore(pool *pgxpool.Pool) *ListingStore {
	return &ListingStore{pool: pool}
}

// GetListing получает объявление по ID
func (s *ListingStore) GetListing(ctx context.Context, listingID int64) (*models.Listing, error) {
	var l models.Listing
	err := s.pool.QueryRow(ctx, `
		SELECT id, seller_id, server_id, chronicle, type, quantity, price, status, created_at
		FROM listings WHERE id = $1
	`, listingID).Scan(
		&l.ID, &l.SellerID, &l.ServerID, &l.Chronicle, &l.Type,
		&l.Quantity, &l.Price, &l.Status, &l.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка при получении объявления %d: %w", listingID, err)
	}
	return &l, nil
}
