package domain

import "github.com/shopspring/decimal"

type Category string

const (
	CategoryMobile     Category = "M"
	CategoryLaptop     Category = "L"
	CategoryTV         Category = "TV"
	CategoryTopWear    Category = "TW"
	CategoryBottomWear Category = "BW"
	CategoryShoes      Category = "SH"
	CategoryWatch      Category = "WW"
)

var categoryNames = map[Category]string{
	CategoryMobile:     "Mobile",
	CategoryLaptop:     "Laptop",
	CategoryTV:         "TV",
	CategoryTopWear:    "Top Wear",
	CategoryBottomWear: "Bottom Wear",
	CategoryShoes:      "Shoes",
	CategoryWatch:      "Watch",
}

// Name is the display label; unknown codes come back unchanged.
func (c Category) Name() string {
	if n, ok := categoryNames[c]; ok {
		return n
	}
	return string(c)
}

func (c Category) Valid() bool {
	_, ok := categoryNames[c]
	return ok
}

type Product struct {
	ID              string          `db:"id"`
	Title           string          `db:"title"`
	Brand           string          `db:"brand"`
	Category        Category        `db:"category"`
	SellingPrice    decimal.Decimal `db:"selling_price"`
	DiscountedPrice decimal.Decimal `db:"discounted_price"`
	Description     string          `db:"description"`
	Image           string          `db:"image"`
}

// CartLine is one pending purchase. Quantity is always >= 1 once persisted.
type CartLine struct {
	ID        string `db:"id"`
	UserID    string `db:"user_id"`
	ProductID string `db:"product_id"`
	Quantity  int    `db:"quantity"`
	Version   int    `db:"version"`
	CreatedAt string `db:"created_at"`
	UpdatedAt string `db:"updated_at"`
}

type Address struct {
	ID       string `db:"id"`
	UserID   string `db:"user_id"`
	Name     string `db:"name"`
	Locality string `db:"locality"`
	City     string `db:"city"`
	State    string `db:"state"`
	Zipcode  string `db:"zipcode"`
}

type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderAccepted  OrderStatus = "ACCEPTED"
	OrderPacked    OrderStatus = "PACKED"
	OrderOnTheWay  OrderStatus = "ON_THE_WAY"
	OrderDelivered OrderStatus = "DELIVERED"
	OrderCancelled OrderStatus = "CANCELLED"
)

// PlacedOrder is created once per cart line at checkout and never edited
// afterwards. CheckoutID groups the rows produced by one placement.
type PlacedOrder struct {
	ID         string          `db:"id"`
	CheckoutID string          `db:"checkout_id"`
	UserID     string          `db:"user_id"`
	AddressID  string          `db:"address_id"`
	ProductID  string          `db:"product_id"`
	Quantity   int             `db:"quantity"`
	UnitPrice  decimal.Decimal `db:"unit_price"`
	PlacedAt   string          `db:"placed_at"`
	Status     OrderStatus     `db:"status"`
}

// OrderPlaced is the payload written to the outbox for each placement.
type OrderPlaced struct {
	CheckoutID string            `json:"checkout_id"`
	UserID     string            `json:"user_id"`
	AddressID  string            `json:"address_id"`
	PlacedAt   string            `json:"placed_at"`
	Lines      []OrderPlacedLine `json:"lines"`
}

type OrderPlacedLine struct {
	OrderID   string          `json:"order_id"`
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}
