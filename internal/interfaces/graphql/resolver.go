package graphql

import (
	"context"

	gql "github.com/graph-gophers/graphql-go"

	apperrors "github.com/sngm3741/restaurant-graph/api/internal/common/errors"
	"github.com/sngm3741/restaurant-graph/api/internal/restaurant/application"
	"github.com/sngm3741/restaurant-graph/api/internal/restaurant/domain"
)

// Resolver is the root of the resolver tree.
type Resolver struct {
	service application.RestaurantService
}

func NewResolver(service application.RestaurantService) *Resolver {
	return &Resolver{service: service}
}

func (r *Resolver) GetRestaurant(ctx context.Context, args struct{ ID gql.ID }) (*restaurantResolver, error) {
	restaurant, err := r.service.GetRestaurant(ctx, string(args.ID))
	if err != nil {
		return nil, present(err)
	}
	if restaurant == nil {
		return nil, nil
	}
	return r.wrap(*restaurant), nil
}

func (r *Resolver) GetRestaurants(ctx context.Context, args struct{ City string }) ([]*restaurantResolver, error) {
	restaurants, err := r.service.GetRestaurants(ctx, args.City)
	if err != nil {
		return nil, present(err)
	}
	out := make([]*restaurantResolver, 0, len(restaurants))
	for _, restaurant := range restaurants {
		out = append(out, r.wrap(restaurant))
	}
	return out, nil
}

type addRestaurantArgs struct {
	Name    string
	Address string
	City    string
	Phone   string
}

func (r *Resolver) AddRestaurant(ctx context.Context, args addRestaurantArgs) (*restaurantResolver, error) {
	restaurant, err := r.service.AddRestaurant(ctx, application.AddRestaurantCommand{
		Name:    args.Name,
		Address: args.Address,
		City:    args.City,
		Phone:   args.Phone,
	})
	if err != nil {
		return nil, present(err)
	}
	return r.wrap(*restaurant), nil
}

func (r *Resolver) DeleteRestaurant(ctx context.Context, args struct{ ID gql.ID }) (bool, error) {
	removed, err := r.service.DeleteRestaurant(ctx, string(args.ID))
	if err != nil {
		return false, present(err)
	}
	return removed, nil
}

func (r *Resolver) wrap(restaurant domain.Restaurant) *restaurantResolver {
	return &restaurantResolver{restaurant: restaurant, service: r.service}
}

// restaurantResolver serves the stored fields directly. temp and datetime
// hit the enrichment endpoints each time they are selected.
type restaurantResolver struct {
	restaurant domain.Restaurant
	service    application.RestaurantService
}

func (r *restaurantResolver) ID() gql.ID {
	return gql.ID(r.restaurant.ID)
}

func (r *restaurantResolver) Name() string {
	return r.restaurant.Name
}

func (r *restaurantResolver) Address() string {
	return r.restaurant.Address
}

func (r *restaurantResolver) City() string {
	return r.restaurant.City
}

func (r *restaurantResolver) Phone() string {
	return r.restaurant.Phone
}

func (r *restaurantResolver) Temp(ctx context.Context) (string, error) {
	temp, err := r.service.EnrichTemp(ctx, r.restaurant)
	if err != nil {
		return "", present(err)
	}
	return temp, nil
}

func (r *restaurantResolver) Datetime(ctx context.Context) (string, error) {
	datetime, err := r.service.EnrichDatetime(ctx, r.restaurant)
	if err != nil {
		return "", present(err)
	}
	return datetime, nil
}

// present returns the *StandardError itself so graphql-go picks up its
// Extensions. Anything outside the taxonomy is reported as an internal error.
func present(err error) error {
	if se, ok := apperrors.As(err); ok {
		return se
	}
	return apperrors.NewInternalError(err)
}
