package services

import (
	"context"

	"storefront/internal/domain"
	"storefront/internal/repos"
	"storefront/internal/validate"
)

type AddressService struct {
	Addresses *repos.AddressRepo
}

func NewAddressService(addrs *repos.AddressRepo) *AddressService {
	return &AddressService{Addresses: addrs}
}

// AddressInput is the profile form.
type AddressInput struct {
	Name, Locality, City, State, Zipcode string
}

func (s *AddressService) List(ctx context.Context, userID string) ([]domain.Address, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	return s.Addresses.ListByUser(ctx, userID)
}

// Add validates in and stores it for userID. Nothing is written when any
// field fails.
func (s *AddressService) Add(ctx context.Context, userID string, in AddressInput) (domain.Address, error) {
	if userID == "" {
		return domain.Address{}, ErrUnauthenticated
	}
	var ve ValidationError
	a := domain.Address{UserID: userID}
	var ok bool
	if a.Name, ok = validate.Name(in.Name); !ok {
		ve.add("name", "required, up to 64 characters")
	}
	if a.Locality, ok = validate.Text(in.Locality, 200); !ok {
		ve.add("locality", "required, up to 200 characters")
	}
	if a.City, ok = validate.Text(in.City, 50); !ok {
		ve.add("city", "required, up to 50 characters")
	}
	if a.State, ok = validate.Text(in.State, 50); !ok {
		ve.add("state", "required, up to 50 characters")
	}
	if a.Zipcode, ok = validate.Zipcode(in.Zipcode); !ok {
		ve.add("zipcode", "must be a 6-digit PIN or 5-digit ZIP")
	}
	if err := ve.orNil(); err != nil {
		return domain.Address{}, err
	}
	return s.Addresses.Create(ctx, a)
}
