package domain

import (
	"time"
)

// Role marks whether an observation belongs to the start or the finish of a
// migration.
type Role string

const (
	RoleStart  Role = "start"
	RoleFinish Role = "finish"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleStart || r == RoleFinish
}

// DefaultSpecies is assigned to individuals registered without a species.
const DefaultSpecies = "Humpback whale"

// DefaultPhoto is assigned to individuals registered without a photo.
const DefaultPhoto = "pic1.jpg"

// Individual is a tracked animal belonging to a population group.
type Individual struct {
	ID        int64     `json:"id"`
	GroupID   int64     `json:"group_id"`
	Species   string    `json:"species"`
	Photo     string    `json:"photo"`
	CreatedAt time.Time `json:"created_at"`
}

// IndividualUpdate describes a partial update. A nil field is left untouched.
type IndividualUpdate struct {
	GroupID *int64  `json:"group_id,omitempty"`
	Species *string `json:"species,omitempty"`
	Photo   *string `json:"photo,omitempty"`
}

// Empty reports whether the update changes nothing.
func (u IndividualUpdate) Empty() bool {
	return u.GroupID == nil && u.Species == nil && u.Photo == nil
}

// Observation is a single start or finish sighting of an individual.
type Observation struct {
	IndividualID int64    `json:"individual_id"`
	GroupID      int64    `json:"group_id"`
	Role         Role     `json:"role"`
	Location     GeoPoint `json:"location"`
}

// Circle is an enclosing circle around an observation cluster.
type Circle struct {
	Center       GeoPoint `json:"center"`
	RadiusMeters float64  `json:"radius_m"`
}

// Route is the smoothed sea path of one group between its circle centers.
type Route struct {
	ID          string     `json:"id"`
	GroupID     int64      `json:"group_id"`
	Points      []GeoPoint `json:"points"`
	Origin      Circle     `json:"origin"`
	Destination Circle     `json:"destination"`
}

// Corridor is a closed polygon around a route: the left offset followed by
// the reversed right offset.
type Corridor struct {
	RouteID      string     `json:"route_id"`
	GroupID      int64      `json:"group_id"`
	RadiusMeters float64    `json:"radius_m"`
	Boundary     []GeoPoint `json:"boundary"`
}

// OverlapRegion is where the boundaries of two corridors come within the
// overlap threshold of each other.
type OverlapRegion struct {
	GroupA  int64      `json:"group_a"`
	GroupB  int64      `json:"group_b"`
	Polygon []GeoPoint `json:"polygon"`
}

// GroupFailure records why a group produced no corridor in a run.
type GroupFailure struct {
	GroupID int64     `json:"group_id"`
	Kind    ErrorKind `json:"kind"`
	Reason  string    `json:"reason"`
}

// RunRequest asks for a corridor run. Zero values fall back to the
// configured defaults.
type RunRequest struct {
	WidthKm     float64 `json:"width_km" validate:"gte=0,lte=20000"`
	SampleCount int     `json:"sample_count,omitempty" validate:"omitempty,gte=4,lte=2000"`
}

// RunResult is the complete output of one engine run. Nothing in it is
// persisted.
type RunResult struct {
	ID         string          `json:"id"`
	WidthKm    float64         `json:"width_km"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Routes     []Route         `json:"routes"`
	Corridors  []Corridor      `json:"corridors"`
	Overlaps   []OverlapRegion `json:"overlaps"`
	Failures   []GroupFailure  `json:"failures"`
}

// Summary condenses r for event payloads and listings.
func (r *RunResult) Summary() RunSummary {
	return RunSummary{
		ID:         r.ID,
		WidthKm:    r.WidthKm,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Corridors:  len(r.Corridors),
		Overlaps:   len(r.Overlaps),
		Failures:   len(r.Failures),
	}
}

// RunSummary is a compact view of a RunResult.
type RunSummary struct {
	ID         string    `json:"id"`
	WidthKm    float64   `json:"width_km"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Corridors  int       `json:"corridors"`
	Overlaps   int       `json:"overlaps"`
	Failures   int       `json:"failures"`
}
