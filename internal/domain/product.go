package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category is the backend's closed product category enumeration.
type Category string

const (
	CategoryElectronics          Category = "ELECTRONICS"
	CategoryFashion              Category = "FASHION"
	CategoryHomeKitchen          Category = "HOME_KITCHEN"
	CategoryBeautyPersonalCare   Category = "BEAUTY_PERSONAL_CARE"
	CategoryBooksStationery      Category = "BOOKS_STATIONERY"
	CategoryHealthWellness       Category = "HEALTH_WELLNESS"
	CategoryToysGames            Category = "TOYS_GAMES"
	CategorySportsOutdoors       Category = "SPORTS_OUTDOORS"
	CategoryAutomotive           Category = "AUTOMOTIVE"
	CategoryGroceriesGourmetFood Category = "GROCERIES_GOURMET_FOOD"
)

// Categories lists every valid category, in the backend's declaration order.
func Categories() []Category {
	return []Category{
		CategoryElectronics,
		CategoryFashion,
		CategoryHomeKitchen,
		CategoryBeautyPersonalCare,
		CategoryBooksStationery,
		CategoryHealthWellness,
		CategoryToysGames,
		CategorySportsOutdoors,
		CategoryAutomotive,
		CategoryGroceriesGourmetFood,
	}
}

// Valid reports whether c belongs to the closed category set.
func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// Product mirrors the backend product resource. ImageURL is an opaque
// display reference (a hosted URL or an inline data URI) and is never
// decoded or validated client-side.
type Product struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Brand       string          `json:"brand"`
	Price       decimal.Decimal `json:"price"`
	Category    Category        `json:"category"`
	CreatedAt   time.Time       `json:"createdAt"`
	Available   bool            `json:"available"`
	Quantity    int             `json:"quantity"`
	ImageURL    string          `json:"imageUrl"`
}
