package client

import (
	"math"
	"sort"
)

const earthRadiusKm = 6371.0

// DistanceKm is the great-circle distance between two points in degrees.
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	rad := func(d float64) float64 { return d * math.Pi / 180 }

	dLat := rad(lat2 - lat1)
	dLng := rad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// FilterByDistance keeps shops within maxKm of (lat, lng), nearest first.
// Shops without coordinates are dropped.
func FilterByDistance(shops []Shop, lat, lng, maxKm float64) []Shop {
	type hit struct {
		shop Shop
		km   float64
	}
	hits := make([]hit, 0, len(shops))
	for _, s := range shops {
		if s.Lat == nil || s.Lng == nil {
			continue
		}
		if km := DistanceKm(lat, lng, *s.Lat, *s.Lng); km <= maxKm {
			hits = append(hits, hit{shop: s, km: km})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].km < hits[j].km })

	out := make([]Shop, len(hits))
	for i, h := range hits {
		out[i] = h.shop
	}
	return out
}
