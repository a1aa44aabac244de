// Package seagraph routes between sea points over a maritime network loaded
// from GeoJSON line features.
package seagraph

import (
	"context"
	"fmt"
	"math"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/quadtree"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/samirrijal/seacorridor/internal/core/domain"
	"github.com/samirrijal/seacorridor/internal/core/geometry"
	"github.com/samirrijal/seacorridor/internal/pkg/geospatial"
)

const (
	// coordinates closer than this (degrees) share a node
	snapPrecision = 1e6
	// planar neighbours re-ranked by great-circle distance when snapping
	nearestCandidates = 8
)

type nodeKey struct{ lat, lon int64 }

type vertex struct {
	id int64
	p  orb.Point
}

func (v vertex) Point() orb.Point { return v.p }

// Graph is an immutable weighted network. Edge weights are haversine meters.
type Graph struct {
	g           *simple.WeightedUndirectedGraph
	coords      map[int64]domain.GeoPoint
	ids         map[nodeKey]int64
	index       *quadtree.Quadtree
	densifyStep float64
}

// Option customizes a Graph.
type Option func(*Graph)

// WithDensify subdivides returned paths so that no segment spans more than
// step degrees.
func WithDensify(step float64) Option {
	return func(g *Graph) { g.densifyStep = step }
}

// Load reads a GeoJSON FeatureCollection of LineString or MultiLineString
// features from file.
func Load(file string, opts ...Option) (*Graph, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read network: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse network: %w", err)
	}
	return FromFeatures(fc, opts...)
}

// FromFeatures builds a graph from line features. Other geometry types are
// ignored.
func FromFeatures(fc *geojson.FeatureCollection, opts ...Option) (*Graph, error) {
	var lines []orb.LineString
	for _, f := range fc.Features {
		switch geom := f.Geometry.(type) {
		case orb.LineString:
			lines = append(lines, geom)
		case orb.MultiLineString:
			lines = append(lines, geom...)
		}
	}
	return FromLines(lines, opts...)
}

// FromLines builds a graph whose edges join consecutive line vertices.
func FromLines(lines []orb.LineString, opts ...Option) (*Graph, error) {
	g := &Graph{
		g:      simple.NewWeightedUndirectedGraph(0, math.Inf(1)),
		coords: make(map[int64]domain.GeoPoint),
		ids:    make(map[nodeKey]int64),
	}
	for _, opt := range opts {
		opt(g)
	}

	for _, ls := range lines {
		for i := 1; i < len(ls); i++ {
			a := g.node(domain.GeoPoint{Lat: ls[i-1].Lat(), Lon: ls[i-1].Lon()})
			b := g.node(domain.GeoPoint{Lat: ls[i].Lat(), Lon: ls[i].Lon()})
			if a == b {
				continue
			}
			w := geospatial.Distance(g.coords[a], g.coords[b])
			if e := g.g.WeightedEdge(a, b); e != nil && e.Weight() <= w {
				continue
			}
			g.g.SetWeightedEdge(g.g.NewWeightedEdge(simple.Node(a), simple.Node(b), w))
		}
	}

	if len(g.coords) == 0 {
		return nil, fmt.Errorf("network has no edges")
	}
	if err := g.buildIndex(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Graph) buildIndex() error {
	mp := make(orb.MultiPoint, 0, len(g.coords))
	for _, c := range g.coords {
		mp = append(mp, orb.Point{c.Lon, c.Lat})
	}
	g.index = quadtree.New(mp.Bound().Pad(1))
	for id, c := range g.coords {
		if err := g.index.Add(vertex{id: id, p: orb.Point{c.Lon, c.Lat}}); err != nil {
			return fmt.Errorf("index node %d: %w", id, err)
		}
	}
	return nil
}

func (g *Graph) node(p domain.GeoPoint) int64 {
	key := nodeKey{lat: int64(math.Round(p.Lat * snapPrecision)), lon: int64(math.Round(p.Lon * snapPrecision))}
	if id, ok := g.ids[key]; ok {
		return id
	}
	n := g.g.NewNode()
	g.g.AddNode(n)
	g.ids[key] = n.ID()
	g.coords[n.ID()] = p
	return n.ID()
}

// Nodes returns the number of graph nodes.
func (g *Graph) Nodes() int {
	return len(g.coords)
}

// Nearest returns the id of the node closest to p by great-circle distance.
// Candidates come from a planar nearest-neighbour query around p and its
// images one turn east and west; ties go to the lower node id.
func (g *Graph) Nearest(p domain.GeoPoint) int64 {
	best, bestDist := int64(-1), math.Inf(1)
	buf := make([]orb.Pointer, 0, nearestCandidates)
	for _, shift := range [...]float64{0, -360, 360} {
		buf = g.index.KNearest(buf[:0], orb.Point{p.Lon + shift, p.Lat}, nearestCandidates)
		for _, c := range buf {
			v := c.(vertex)
			d := geospatial.Distance(p, g.coords[v.id])
			if d < bestDist || (d == bestDist && v.id < best) {
				best, bestDist = v.id, d
			}
		}
	}
	return best
}

// ShortestPath snaps origin and destination to their nearest nodes and
// returns origin, the node path, then destination. It returns
// domain.ErrNoPath when the snapped nodes are not connected.
func (g *Graph) ShortestPath(ctx context.Context, origin, destination domain.GeoPoint) ([]domain.GeoPoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	from, to := g.Nearest(origin), g.Nearest(destination)

	var nodes []graph.Node
	if from == to {
		nodes = []graph.Node{simple.Node(from)}
	} else {
		nodes, _ = path.DijkstraFrom(simple.Node(from), g.g).To(to)
		if len(nodes) == 0 {
			return nil, domain.ErrNoPath
		}
	}

	out := make([]domain.GeoPoint, 0, len(nodes)+2)
	out = appendDistinct(out, origin)
	for _, n := range nodes {
		out = appendDistinct(out, g.coords[n.ID()])
	}
	out = appendDistinct(out, destination)

	if g.densifyStep > 0 {
		out = geometry.Densify(geometry.CorrectAntimeridian(out), g.densifyStep)
	}
	return out, nil
}

func appendDistinct(out []domain.GeoPoint, p domain.GeoPoint) []domain.GeoPoint {
	if len(out) > 0 && out[len(out)-1] == p {
		return out
	}
	return append(out, p)
}
