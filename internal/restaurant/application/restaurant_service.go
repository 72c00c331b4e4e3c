package application

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	apperrors "github.com/sngm3741/restaurant-graph/api/internal/common/errors"
	"github.com/sngm3741/restaurant-graph/api/internal/common/logger"
	"github.com/sngm3741/restaurant-graph/api/internal/observability/metrics"
	"github.com/sngm3741/restaurant-graph/api/internal/restaurant/domain"
)

const (
	OpGetRestaurant    = "getRestaurant"
	OpGetRestaurants   = "getRestaurants"
	OpAddRestaurant    = "addRestaurant"
	OpDeleteRestaurant = "deleteRestaurant"
	OpEnrichDatetime   = "datetime"
	OpEnrichTemp       = "temp"
)

type restaurantService struct {
	repo     RestaurantRepository
	enricher Enricher
	logger   logger.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewRestaurantService wires the engine to its store and enrichment ports.
// log and m may be nil.
func NewRestaurantService(repo RestaurantRepository, enricher Enricher, log logger.Logger, m *metrics.Metrics) RestaurantService {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &restaurantService{
		repo:     repo,
		enricher: enricher,
		logger:   log.With(map[string]interface{}{"component": "restaurant-service"}),
		metrics:  m,
		now:      time.Now,
	}
}

func (s *restaurantService) GetRestaurant(ctx context.Context, id string) (restaurant *domain.Restaurant, err error) {
	defer s.observe(OpGetRestaurant, time.Now(), &err)

	id = strings.TrimSpace(id)
	if !primitive.IsValidObjectID(id) {
		return nil, apperrors.NewInvalidIdentifierError(id)
	}

	restaurant, err = s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrRestaurantNotFound) {
			return nil, nil
		}
		return nil, storeError("findById", err)
	}
	return restaurant, nil
}

func (s *restaurantService) GetRestaurants(ctx context.Context, city string) (restaurants []domain.Restaurant, err error) {
	defer s.observe(OpGetRestaurants, time.Now(), &err)

	restaurants, err = s.repo.FindByCity(ctx, city)
	if err != nil {
		return nil, storeError("findByCity", err)
	}
	if restaurants == nil {
		restaurants = []domain.Restaurant{}
	}
	return restaurants, nil
}

// AddRestaurant runs the fixed pipeline: phone uniqueness, phone validation,
// geocoding, insert. Nothing is persisted unless every earlier step
// succeeded.
func (s *restaurantService) AddRestaurant(ctx context.Context, cmd AddRestaurantCommand) (restaurant *domain.Restaurant, err error) {
	defer s.observe(OpAddRestaurant, time.Now(), &err)

	cmd = normalizeAddCommand(cmd)
	if err := validateAddCommand(cmd); err != nil {
		return nil, err
	}

	count, err := s.repo.CountByPhone(ctx, cmd.Phone)
	if err != nil {
		return nil, storeError("countByPhone", err)
	}
	if count > 0 {
		return nil, apperrors.NewDuplicatePhoneError(cmd.Phone)
	}

	validation, err := s.enricher.ValidatePhone(ctx, cmd.Phone)
	if err != nil {
		return nil, err
	}
	if !validation.Valid {
		return nil, apperrors.NewInvalidPhoneError(cmd.Phone)
	}
	if len(validation.Timezones) == 0 {
		return nil, apperrors.NewUpstreamPayloadError("validatephone", errors.New("valid phone returned no timezones"))
	}

	candidates, err := s.enricher.GeocodeCity(ctx, cmd.City)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, apperrors.NewCityNotFoundError(cmd.City)
	}

	restaurant = &domain.Restaurant{
		Name:        cmd.Name,
		Address:     cmd.Address,
		City:        cmd.City,
		Country:     validation.Country,
		Phone:       cmd.Phone,
		Timezone:    validation.Timezones[0],
		Coordinates: candidates[0],
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.Insert(ctx, restaurant); err != nil {
		if apperrors.IsCode(err, apperrors.ErrCodeDuplicatePhone) {
			return nil, err
		}
		return nil, storeError("insert", err)
	}

	s.logger.Info("restaurant added", map[string]interface{}{
		"id":       restaurant.ID,
		"city":     restaurant.City,
		"timezone": restaurant.Timezone,
	})
	return restaurant, nil
}

func (s *restaurantService) DeleteRestaurant(ctx context.Context, id string) (removed bool, err error) {
	defer s.observe(OpDeleteRestaurant, time.Now(), &err)

	id = strings.TrimSpace(id)
	if !primitive.IsValidObjectID(id) {
		return false, apperrors.NewInvalidIdentifierError(id)
	}

	removed, err = s.repo.DeleteByID(ctx, id)
	if err != nil {
		return false, storeError("deleteById", err)
	}
	return removed, nil
}

// EnrichDatetime returns the upstream local datetime for the restaurant's
// timezone, verbatim.
func (s *restaurantService) EnrichDatetime(ctx context.Context, restaurant domain.Restaurant) (datetime string, err error) {
	defer s.observe(OpEnrichDatetime, time.Now(), &err)

	worldTime, err := s.enricher.WorldTime(ctx, restaurant.Timezone)
	if err != nil {
		return "", err
	}
	return worldTime.Datetime, nil
}

// EnrichTemp returns the current temperature at the restaurant's coordinates
// as text.
func (s *restaurantService) EnrichTemp(ctx context.Context, restaurant domain.Restaurant) (temp string, err error) {
	defer s.observe(OpEnrichTemp, time.Now(), &err)

	weather, err := s.enricher.Weather(ctx, restaurant.Coordinates.Latitude, restaurant.Coordinates.Longitude)
	if err != nil {
		return "", err
	}
	return FormatTemperature(weather.Temperature), nil
}

// FormatTemperature renders the shortest decimal form: 15, 15.5, -3.25.
func FormatTemperature(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (s *restaurantService) observe(operation string, started time.Time, errp *error) {
	err := *errp
	if err == nil {
		s.metrics.ObserveOperation(operation, metrics.ResultSuccess, started)
		return
	}

	code := apperrors.CodeOf(err)
	result := string(code)
	if result == "" {
		result = metrics.ResultError
	}
	s.metrics.ObserveOperation(operation, result, started)

	fields := map[string]interface{}{
		"operation": operation,
		"code":      result,
	}
	if se, ok := apperrors.As(err); ok {
		fields["error"] = se.LogString()
	} else {
		fields["error"] = err.Error()
	}

	switch apperrors.KindOf(err) {
	case apperrors.KindValidation, apperrors.KindNotFound:
		s.logger.Info("operation rejected", fields)
	default:
		s.logger.Error("operation failed", fields)
	}
}

func normalizeAddCommand(cmd AddRestaurantCommand) AddRestaurantCommand {
	return AddRestaurantCommand{
		Name:    strings.TrimSpace(cmd.Name),
		Address: strings.TrimSpace(cmd.Address),
		City:    strings.TrimSpace(cmd.City),
		Phone:   strings.TrimSpace(cmd.Phone),
	}
}

func validateAddCommand(cmd AddRestaurantCommand) error {
	switch {
	case cmd.Name == "":
		return apperrors.NewInvalidInputError("name")
	case cmd.Address == "":
		return apperrors.NewInvalidInputError("address")
	case cmd.City == "":
		return apperrors.NewInvalidInputError("city")
	case cmd.Phone == "":
		return apperrors.NewInvalidInputError("phone")
	}
	return nil
}

func storeError(op string, err error) error {
	if _, ok := apperrors.As(err); ok {
		return err
	}
	return apperrors.NewStoreFailureError(op, err)
}
