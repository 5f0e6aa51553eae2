package geo

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"marketscope/server/internal/models"
)

// ProjectCollection builds a GeoJSON FeatureCollection for the map layer.
// Geometry is a point per project; the properties carry what the popup and
// marker styling need.
func ProjectCollection(projects []*models.Project) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for _, p := range projects {
		feature := geojson.NewFeature(orb.Point{p.Longitude, p.Latitude})
		feature.ID = p.ID
		feature.Properties = geojson.Properties{
			"id":            p.ID,
			"name":          p.Name,
			"developer":     p.Developer,
			"area_code":     p.AreaCode,
			"price_range":   p.PriceRange,
			"percent_sold":  p.PercentSold,
			"total_units":   p.TotalUnits,
			"sold_units":    p.SoldUnits,
			"sale_speed_6m": p.SaleSpeed6M,
			"distance":      p.Distance,
		}
		fc.Append(feature)
	}

	return fc
}

// PlaceCollection builds a GeoJSON FeatureCollection for the point-of-interest
// overlay.
func PlaceCollection(places []models.NearbyPlace) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for _, pl := range places {
		feature := geojson.NewFeature(orb.Point{pl.Longitude, pl.Latitude})
		feature.ID = pl.ID
		feature.Properties = geojson.Properties{
			"id":       pl.ID,
			"name":     pl.Name,
			"category": pl.Category,
			"distance": pl.Distance,
			"address":  pl.Address,
			"rating":   pl.Rating,
		}
		fc.Append(feature)
	}

	return fc
}
