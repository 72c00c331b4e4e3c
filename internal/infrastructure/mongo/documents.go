package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RestaurantDocument is the restaurant schema as stored in MongoDB. ID is
// omitted on insert so the driver generates one.
type RestaurantDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Address   string             `bson:"address"`
	City      string             `bson:"city"`
	Country   string             `bson:"country"`
	Phone     string             `bson:"phone"`
	Timezone  string             `bson:"timezone"`
	Latitude  float64            `bson:"latitude"`
	Longitude float64            `bson:"longitude"`
	CreatedAt *time.Time         `bson:"createdAt,omitempty"`
}
