package entity

// Place is a point of interest returned by the geocoding service, ranked by
// its distance from the position the search was biased to.
//
// ID is assigned by the geocoding service. It is unique within one search
// response but not guaranteed stable across searches.
type Place struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Address        string     `json:"address"`
	Coordinates    Coordinate `json:"coordinates"`
	DistanceMeters int        `json:"distance_meters"`
}
