package models

import "time"

// Типы объявлений
const (
	ListingTypeBuy  = "BUY"
	ListingTypeSell = "SELL"
)

// Listing представляет объявление о покупке или продаже адены на сервере
type Listing struct {
	ID        int64     `json:"id"`
	SellerID  int64     `json:"seller_id"`
	ServerID  int64     `json:"server_id"`
	Chronicle string    `json:"chronicle"`
	Type      string    `json:"type"` // BUY или SELL
	Quantity  int64     `json:"quantity"`
	Price     float64   `json:"price"`
	Status    string    `json:"status"` // ACTIVE или CLOSED
	CreatedAt time.Time `json:"created_at"`
}
