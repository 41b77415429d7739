// Package room кодирует и разбирает составной идентификатор комнаты чата
// вида "{listing_id}_{buyer_id}_{seller_id}".
package room

import (
	"strconv"
	"strings"
)

// Delimiter разделитель частей идентификатора
const Delimiter = "_"

// ID составной идентификатор комнаты: объявление, покупатель, продавец
type ID struct {
	ListingID int64
	BuyerID   int64
	SellerID  int64
}

// Encode формирует ключ комнаты. Порядок частей фиксирован: объявление, покупатель, продавец.
func Encode(listingID, buyerID, sellerID int64) string {
	return strconv.FormatInt(listingID, 10) + Delimiter +
		strconv.FormatInt(buyerID, 10) + Delimiter +
		strconv.FormatInt(sellerID, 10)
}

// Decode разбирает ключ комнаты. Возвращает false для любой строки,
// которая не состоит ровно из трёх неотрицательных целых чисел.
func Decode(s string) (ID, bool) {
	parts := strings.Split(s, Delimiter)
	if len(parts) != 3 {
		return ID{}, false
	}

	var nums [3]int64
	for i, p := range parts {
		n, ok := parseSegment(p)
		if !ok {
			return ID{}, false
		}
		nums[i] = n
	}

	return ID{ListingID: nums[0], BuyerID: nums[1], SellerID: nums[2]}, true
}

// String возвращает ключ комнаты
func (id ID) String() string {
	return Encode(id.ListingID, id.BuyerID, id.SellerID)
}

// HasParticipant проверяет, является ли пользователь покупателем или продавцом комнаты
func (id ID) HasParticipant(userID int64) bool {
	return userID == id.BuyerID || userID == id.SellerID
}

// Counterpart возвращает собеседника пользователя в комнате
func (id ID) Counterpart(userID int64) int64 {
	if userID == id.BuyerID {
		return id.SellerID
	}
	return id.BuyerID
}

// parseSegment принимает только десятичные цифры: без знака, пробелов и пустых частей
func parseSegment(p string) (int64, bool) {
	if p == "" {
		return 0, false
	}
	for i := 0; i < len(p); i++ {
		if p[i] < '0' || p[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(p, 10, 64)
	if err != nil {
		// переполнение int64
		return 0, false
	}
	return n, true
}
