package handlers

import (
	"github.com/jmoiron/sqlx"

	"storefront/internal/config"
	"storefront/internal/lock"
	"storefront/internal/metrics"
	"storefront/internal/repos"
	"storefront/internal/services"
)

type Deps struct {
	Auth    *services.AuthService
	Cart    *services.CartService
	Orders  *services.OrderService
	Catalog *services.CatalogService

	AuthHandler     *AuthHandler
	CategoryHandler *CategoryHandler
	ProductHandler  *ProductHandler
	SearchHandler   *SearchHandler
	CartHandler     *CartHandler
	OrderHandler    *OrderHandler
	AddressHandler  *AddressHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, locks lock.Locker, m *metrics.Metrics) *Deps {
	prodRepo := repos.NewProductRepo(db)
	cartRepo := repos.NewCartRepo(db)
	addrRepo := repos.NewAddressRepo(db)
	orderRepo := repos.NewOrderRepo(db)

	authSvc := services.NewAuthService(repos.NewUserRepo(db))
	catalogSvc := services.NewCatalogService(prodRepo)
	cartSvc := services.NewCartService(cartRepo, prodRepo, locks, m)
	orderSvc := services.NewOrderService(cartRepo, addrRepo, orderRepo, locks, m, cfg.OrderTopic)
	addrSvc := services.NewAddressService(addrRepo)

	return &Deps{
		Auth:    authSvc,
		Cart:    cartSvc,
		Orders:  orderSvc,
		Catalog: catalogSvc,

		AuthHandler:     &AuthHandler{Auth: authSvc},
		CategoryHandler: &CategoryHandler{Catalog: catalogSvc},
		ProductHandler:  &ProductHandler{Catalog: catalogSvc, Cart: cartSvc},
		SearchHandler:   &SearchHandler{Catalog: catalogSvc},
		CartHandler:     &CartHandler{Cart: cartSvc},
		OrderHandler:    &OrderHandler{Order: orderSvc},
		AddressHandler:  &AddressHandler{Addresses: addrSvc},
	}
}
