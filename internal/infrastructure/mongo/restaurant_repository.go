package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/sngm3741/restaurant-graph/api/internal/common/errors"
	"github.com/sngm3741/restaurant-graph/api/internal/restaurant/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// RestaurantRepository implements application.RestaurantRepository using
// MongoDB.
type RestaurantRepository struct {
	collection *mongo.Collection
}

// NewRestaurantRepository creates a new Mongo-backed restaurant repository.
func NewRestaurantRepository(db *mongo.Database, collectionName string) *RestaurantRepository {
	return &RestaurantRepository{collection: db.Collection(collectionName)}
}

// EnsureIndexes creates the unique phone index and the city lookup index.
func (r *RestaurantRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "phone", Value: 1}},
			Options: options.Index().SetName("phone_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "city", Value: 1}},
			Options: options.Index().SetName("city"),
		},
	})
	return err
}

// Ping checks connectivity to the primary.
func (r *RestaurantRepository) Ping(ctx context.Context) error {
	return r.collection.Database().Client().Ping(ctx, readpref.Primary())
}

// FindByID returns a single restaurant by its identifier.
func (r *RestaurantRepository) FindByID(ctx context.Context, id string) (*domain.Restaurant, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.NewInvalidIdentifierError(id)
	}

	var doc RestaurantDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRestaurantNotFound
		}
		return nil, err
	}
	restaurant := mapRestaurantDocument(doc)
	return &restaurant, nil
}

// FindByCity returns every restaurant whose city matches exactly.
func (r *RestaurantRepository) FindByCity(ctx context.Context, city string) ([]domain.Restaurant, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"city": city})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	restaurants := make([]domain.Restaurant, 0)
	for cursor.Next(ctx) {
		var doc RestaurantDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		restaurants = append(restaurants, mapRestaurantDocument(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return restaurants, nil
}

// CountByPhone returns how many restaurants are registered with phone.
func (r *RestaurantRepository) CountByPhone(ctx context.Context, phone string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"phone": phone})
}

// Insert stores the restaurant and writes the generated ID back onto it.
func (r *RestaurantRepository) Insert(ctx context.Context, restaurant *domain.Restaurant) error {
	if restaurant.HasID() {
		return fmt.Errorf("restaurant already has id %s", restaurant.ID)
	}

	doc := toRestaurantDocument(*restaurant)
	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.NewDuplicatePhoneError(restaurant.Phone)
		}
		return err
	}

	objectID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("unexpected inserted id type %T", result.InsertedID)
	}
	restaurant.ID = objectID.Hex()
	return nil
}

// DeleteByID removes the restaurant and reports whether one was removed.
func (r *RestaurantRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, apperrors.NewInvalidIdentifierError(id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return false, err
	}
	return result.DeletedCount > 0, nil
}

// Drop removes the whole collection. Only the seed tool uses it.
func (r *RestaurantRepository) Drop(ctx context.Context) error {
	return r.collection.Drop(ctx)
}

func mapRestaurantDocument(doc RestaurantDocument) domain.Restaurant {
	createdAt := time.Time{}
	if doc.CreatedAt != nil {
		createdAt = *doc.CreatedAt
	}

	return domain.Restaurant{
		ID:       doc.ID.Hex(),
		Name:     doc.Name,
		Address:  doc.Address,
		City:     doc.City,
		Country:  doc.Country,
		Phone:    doc.Phone,
		Timezone: doc.Timezone,
		Coordinates: domain.Coordinates{
			Latitude:  doc.Latitude,
			Longitude: doc.Longitude,
		},
		CreatedAt: createdAt,
	}
}

func toRestaurantDocument(r domain.Restaurant) RestaurantDocument {
	doc := RestaurantDocument{
		Name:      r.Name,
		Address:   r.Address,
		City:      r.City,
		Country:   r.Country,
		Phone:     r.Phone,
		Timezone:  r.Timezone,
		Latitude:  r.Coordinates.Latitude,
		Longitude: r.Coordinates.Longitude,
	}
	if !r.CreatedAt.IsZero() {
		createdAt := r.CreatedAt.UTC()
		doc.CreatedAt = &createdAt
	}
	return doc
}
