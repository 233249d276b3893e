package domain

// GeoPoint represents a geographic coordinate (WGS 84, degrees).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Viewport is a rectangular map region: a center plus half-extents in degrees.
type Viewport struct {
	Center         GeoPoint `json:"center"`
	LatitudeDelta  float64  `json:"latitude_delta"`
	LongitudeDelta float64  `json:"longitude_delta"`
}

// Bounds returns the corners of the viewport.
func (v Viewport) Bounds() Bounds {
	return Bounds{
		MinLat: v.Center.Lat - v.LatitudeDelta,
		MinLon: v.Center.Lon - v.LongitudeDelta,
		MaxLat: v.Center.Lat + v.LatitudeDelta,
		MaxLon: v.Center.Lon + v.LongitudeDelta,
	}
}

// Bounds represents a geographic bounding box.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// Contains reports whether p lies inside or on the edge of the box.
func (b Bounds) Contains(p GeoPoint) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat && p.Lon >= b.MinLon && p.Lon <= b.MaxLon
}
