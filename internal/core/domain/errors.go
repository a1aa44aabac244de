package domain

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel causes wrapped by the typed errors below.
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrEmptyPointSet = errors.New("empty point set")
	ErrMissingRole   = errors.New("no observations for required role")
	ErrNoPath        = errors.New("no path between points")
)

// ErrorKind classifies a per-group pipeline failure.
type ErrorKind string

const (
	KindData      ErrorKind = "data"
	KindGeometry  ErrorKind = "geometry"
	KindRouting   ErrorKind = "routing"
	KindRendering ErrorKind = "rendering"
	KindCancelled ErrorKind = "cancelled"
	KindInternal  ErrorKind = "internal"
)

// DataError reports a group that lacks observations for a required role.
type DataError struct {
	GroupID int64
	Role    Role
	Err     error
}

func (e *DataError) Error() string {
	return fmt.Sprintf("group %d: %s observations: %v", e.GroupID, e.Role, e.Err)
}

func (e *DataError) Unwrap() error { return e.Err }

// GeometryError reports a geometric computation on invalid input.
type GeometryError struct {
	Op  string
	Err error
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("geometry %s: %v", e.Op, e.Err)
}

func (e *GeometryError) Unwrap() error { return e.Err }

// RoutingError reports that the sea graph could not connect two points.
type RoutingError struct {
	Origin      GeoPoint
	Destination GeoPoint
	Err         error
}

func (e *RoutingError) Error() string {
	return fmt.Sprintf("route (%.4f,%.4f) -> (%.4f,%.4f): %v",
		e.Origin.Lat, e.Origin.Lon, e.Destination.Lat, e.Destination.Lon, e.Err)
}

func (e *RoutingError) Unwrap() error { return e.Err }

// RenderingError is raised by rendering sinks, never by the pipeline.
type RenderingError struct {
	Format string
	Err    error
}

func (e *RenderingError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Format, e.Err)
}

func (e *RenderingError) Unwrap() error { return e.Err }

// KindOf maps an error onto its failure kind.
func KindOf(err error) ErrorKind {
	var (
		dataErr   *DataError
		geomErr   *GeometryError
		routeErr  *RoutingError
		renderErr *RenderingError
	)
	switch {
	case errors.As(err, &dataErr):
		return KindData
	case errors.As(err, &geomErr):
		return KindGeometry
	case errors.As(err, &routeErr):
		return KindRouting
	case errors.As(err, &renderErr):
		return KindRendering
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCancelled
	default:
		return KindInternal
	}
}
