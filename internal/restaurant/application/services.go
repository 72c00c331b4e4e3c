package application

import (
	"context"

	"github.com/sngm3741/restaurant-graph/api/internal/restaurant/domain"
)

// RestaurantRepository is the port to the restaurant document store.
type RestaurantRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Restaurant, error)
	FindByCity(ctx context.Context, city string) ([]domain.Restaurant, error)
	CountByPhone(ctx context.Context, phone string) (int64, error)
	Insert(ctx context.Context, restaurant *domain.Restaurant) error
	DeleteByID(ctx context.Context, id string) (bool, error)
}

// Enricher is the port to the third-party enrichment endpoints.
type Enricher interface {
	ValidatePhone(ctx context.Context, number string) (domain.PhoneValidation, error)
	GeocodeCity(ctx context.Context, city string) ([]domain.Coordinates, error)
	WorldTime(ctx context.Context, timezone string) (domain.WorldTime, error)
	Weather(ctx context.Context, latitude, longitude float64) (domain.Weather, error)
}

// RestaurantService answers the four restaurant operations and the two
// on-demand enrichments. Each call is a linear pipeline that stops at the
// first failure.
type RestaurantService interface {
	GetRestaurant(ctx context.Context, id string) (*domain.Restaurant, error)
	GetRestaurants(ctx context.Context, city string) ([]domain.Restaurant, error)
	AddRestaurant(ctx context.Context, cmd AddRestaurantCommand) (*domain.Restaurant, error)
	DeleteRestaurant(ctx context.Context, id string) (bool, error)
	EnrichDatetime(ctx context.Context, restaurant domain.Restaurant) (string, error)
	EnrichTemp(ctx context.Context, restaurant domain.Restaurant) (string, error)
}

// AddRestaurantCommand captures the client-supplied fields of a new
// restaurant.
type AddRestaurantCommand struct {
	Name    string
	Address string
	City    string
	Phone   string
}
