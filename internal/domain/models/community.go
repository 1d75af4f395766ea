// internal/domain/models/community.go
package models

import "time"

// GeoPoint is a WGS84 coordinate pair.
type GeoPoint struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lng float64 `bson:"lng" json:"lng"`
}

// Community is a parish community. IDs are slugs and never change once set.
type Community struct {
	ID      string    `bson:"_id" json:"id"`
	Name    string    `bson:"name" json:"name"`
	NameCI  string    `bson:"name_ci" json:"-"`
	Address string    `bson:"address" json:"address"`
	Geo     *GeoPoint `bson:"geo,omitempty" json:"geo,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
