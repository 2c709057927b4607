package services

import (
	"context"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/repos"
	"storefront/internal/validate"
)

type CatalogService struct {
	Prods *repos.ProductRepo
}

func NewCatalogService(prods *repos.ProductRepo) *CatalogService {
	return &CatalogService{Prods: prods}
}

// Listing is one category page: the products plus the filter links it offers.
type Listing struct {
	Page     string
	Title    string
	Filter   string
	Brands   []string
	Bands    []string
	Products []domain.Product
}

type band struct {
	below, above, min, max *decimal.Decimal
}

type categoryPage struct {
	title      string
	categories []domain.Category
	brands     []string
	bandOrder  []string
	bands      map[string]band
}

func d(n int64) *decimal.Decimal {
	v := decimal.NewFromInt(n)
	return &v
}

func below(n int64) band        { return band{below: d(n)} }
func above(n int64) band        { return band{above: d(n)} }
func between(lo, hi int64) band { return band{min: d(lo), max: d(hi)} }

// clothing filters on sub-category instead of brand.
var subCategories = map[string]domain.Category{
	"TW": domain.CategoryTopWear,
	"BW": domain.CategoryBottomWear,
}

var pages = map[string]categoryPage{
	"mobile": {
		title: "Mobiles", categories: []domain.Category{domain.CategoryMobile},
		brands:    []string{"Redmi", "Samsung", "Realme"},
		bandOrder: []string{"Below10000", "10000-20000", "Above20000"},
		bands:     map[string]band{"Below10000": below(10000), "10000-20000": between(10000, 20000), "Above20000": above(20000)},
	},
	"laptop": {
		title: "Laptops", categories: []domain.Category{domain.CategoryLaptop},
		brands:    []string{"Hp", "Dell", "Acer", "Asus", "Lenovo", "Apple"},
		bandOrder: []string{"Below40000", "40000-100000", "Above100000"},
		bands:     map[string]band{"Below40000": below(40000), "40000-100000": between(40000, 100000), "Above100000": above(100000)},
	},
	"tv": {
		title: "Televisions", categories: []domain.Category{domain.CategoryTV},
		brands:    []string{"LG", "Sony", "Samsung"},
		bandOrder: []string{"Below50000", "50000-100000", "Above100000"},
		bands:     map[string]band{"Below50000": below(50000), "50000-100000": between(50000, 100000), "Above100000": above(100000)},
	},
	"clothing": {
		title: "Clothing", categories: []domain.Category{domain.CategoryTopWear, domain.CategoryBottomWear},
		brands:    []string{"TW", "BW"},
		bandOrder: []string{"Below1000", "500-1000", "Above1000"},
		bands:     map[string]band{"Below1000": below(1000), "500-1000": between(500, 1000), "Above1000": above(1000)},
	},
	"shoes": {
		title: "Shoes", categories: []domain.Category{domain.CategoryShoes},
		brands:    []string{"Nike", "Reebok"},
		bandOrder: []string{"Below3000", "3000-10000", "Above10000"},
		bands:     map[string]band{"Below3000": below(3000), "3000-10000": between(3000, 10000), "Above10000": above(10000)},
	},
	"watch": {
		title: "Watches", categories: []domain.Category{domain.CategoryWatch},
		brands:    []string{"Casio", "Diesel", "Fossil", "Titan"},
		bandOrder: []string{"Below10000", "10000-20000", "Above20000"},
		bands:     map[string]band{"Below10000": below(10000), "10000-20000": between(10000, 20000), "Above20000": above(20000)},
	},
}

// Pages lists the category page names in menu order.
func Pages() []string {
	return []string{"mobile", "laptop", "tv", "clothing", "shoes", "watch"}
}

// Category lists a category page. filter is empty, a brand (or sub-category
// for clothing) or a price band slug; anything else is ErrNotFound.
func (s *CatalogService) Category(ctx context.Context, page, filter string) (Listing, error) {
	cp, ok := pages[page]
	if !ok {
		return Listing{}, fmt.Errorf("category page %q: %w", page, ErrNotFound)
	}
	f := repos.ProductFilter{Categories: cp.categories}
	switch {
	case filter == "":
	case page == "clothing" && subCategories[filter] != "":
		f.Categories = []domain.Category{subCategories[filter]}
	case page != "clothing" && slices.Contains(cp.brands, filter):
		f.Brand = filter
	default:
		b, ok := cp.bands[filter]
		if !ok {
			return Listing{}, fmt.Errorf("filter %q on %s: %w", filter, page, ErrNotFound)
		}
		f.Below, f.Above, f.Min, f.Max = b.below, b.above, b.min, b.max
	}

	ps, err := s.Prods.List(ctx, f)
	if err != nil {
		return Listing{}, err
	}
	return Listing{Page: page, Title: cp.title, Filter: filter, Brands: cp.brands, Bands: cp.bandOrder, Products: ps}, nil
}

// Home holds the rails on the landing page.
type Home struct {
	TopWear    []domain.Product
	BottomWear []domain.Product
	Mobiles    []domain.Product
	Laptops    []domain.Product
}

func (s *CatalogService) Home(ctx context.Context) (Home, error) {
	var h Home
	rails := []struct {
		dst *[]domain.Product
		cat domain.Category
	}{
		{&h.TopWear, domain.CategoryTopWear},
		{&h.BottomWear, domain.CategoryBottomWear},
		{&h.Mobiles, domain.CategoryMobile},
		{&h.Laptops, domain.CategoryLaptop},
	}
	for _, r := range rails {
		ps, err := s.Prods.List(ctx, repos.ProductFilter{Categories: []domain.Category{r.cat}})
		if err != nil {
			return Home{}, err
		}
		*r.dst = ps
	}
	return h, nil
}

func (s *CatalogService) Product(ctx context.Context, id string) (domain.Product, error) {
	p, err := s.Prods.Get(ctx, id)
	if err != nil {
		return domain.Product{}, notFound(err, "product", id)
	}
	return p, nil
}

// Search matches title, brand and category. A query outside 1..70
// characters yields no results and no error.
func (s *CatalogService) Search(ctx context.Context, q string) ([]domain.Product, error) {
	q, ok := validate.Q(q)
	if !ok {
		return []domain.Product{}, nil
	}
	return s.Prods.Search(ctx, q, 50)
}
