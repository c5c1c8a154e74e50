// Package catalog holds the celestial objects a caller can score.
//
// Objects come from the built-in set (Sun, Moon, bright stars) and from JSON
// snapshots exported by an ephemeris service. Lookups are case-insensitive by id.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/litescript/ls-skyscore/internal/orbit"
	"github.com/litescript/ls-skyscore/internal/visibility"
)

// ErrUnknownObject is returned when an id is not in the catalog.
var ErrUnknownObject = errors.New("unknown celestial object")

// DefaultMagnitude stands in for objects with RA/Dec but no magnitude.
const DefaultMagnitude = 1.0

// AUKm is one astronomical unit in km.
const AUKm = 149597870.7

// Type is the kind of celestial object.
type Type string

const (
	TypeMoon        Type = "moon"
	TypePlanet      Type = "planet"
	TypeDwarfPlanet Type = "dwarf_planet"
	TypeStar        Type = "star"
	TypeAsteroid    Type = "asteroid"
	TypeComet       Type = "comet"
	TypeSatellite   Type = "satellite"
	TypeSpacecraft  Type = "spacecraft"
)

// Valid reports whether t is a known type.
func (t Type) Valid() bool {
	switch t {
	case TypeMoon, TypePlanet, TypeDwarfPlanet, TypeStar, TypeAsteroid,
		TypeComet, TypeSatellite, TypeSpacecraft:
		return true
	}
	return false
}

// Object is one catalog entry. Optional fields are nil when unknown.
type Object struct {
	ID       string              `json:"id"`
	Name     string              `json:"name"`
	Type     Type                `json:"type"`
	Position visibility.Position `json:"position"`

	// Heliocentric position in AU, for 3D rendering.
	X *float64 `json:"x,omitempty"`
	Y *float64 `json:"y,omitempty"`
	Z *float64 `json:"z,omitempty"`

	RA         *float64 `json:"ra,omitempty"`  // degrees
	Dec        *float64 `json:"dec,omitempty"` // degrees
	DistanceAU *float64 `json:"distance_au,omitempty"`
	DistanceKm *float64 `json:"distance_km,omitempty"`
	Magnitude  *float64 `json:"magnitude,omitempty"`
	RadiusKm   *float64 `json:"radius_km,omitempty"`
	ParentBody string   `json:"parent_body,omitempty"`

	// Two-line element set, satellites only.
	TLELine1 string `json:"tle_line1,omitempty"`
	TLELine2 string `json:"tle_line2,omitempty"`
}

// HasEquatorial reports whether the object carries RA and Dec.
func (o Object) HasEquatorial() bool {
	return o.RA != nil && o.Dec != nil
}

// HasTLE reports whether the object carries orbital elements.
func (o Object) HasTLE() bool {
	return o.TLELine1 != "" && o.TLELine2 != ""
}

// Target converts the object to a scoring target. The Moon always uses the
// live lunar ephemeris; snapshot coordinates are ignored for it.
func (o Object) Target() visibility.Target {
	switch strings.ToLower(o.ID) {
	case "moon":
		return visibility.MoonTarget
	case "sun":
		return visibility.SunTarget
	}

	if !o.HasEquatorial() {
		return visibility.Unknown{}
	}

	mag := DefaultMagnitude
	if o.Magnitude != nil {
		mag = *o.Magnitude
	}
	return visibility.EquatorialObject{
		Name:      o.Name,
		RAdeg:     *o.RA,
		DecDeg:    *o.Dec,
		Magnitude: mag,
	}
}

// LegacyPosition returns Position, filling it from dec/ra/distance when the
// snapshot left it empty.
func (o Object) LegacyPosition() visibility.Position {
	if o.Position != (visibility.Position{}) || !o.HasEquatorial() {
		return o.Position
	}
	p := visibility.Position{Lat: *o.Dec, Lon: *o.RA}
	if p.Lon > 180 {
		p.Lon -= 360
	}
	switch {
	case o.DistanceKm != nil:
		p.AltitudeKm = *o.DistanceKm
	case o.DistanceAU != nil:
		p.AltitudeKm = *o.DistanceAU * AUKm
	}
	return p
}

// Catalog is an immutable, id-indexed set of objects.
type Catalog struct {
	objects []Object
	byID    map[string]int
	sats    map[string]*orbit.Satellite // parsed TLEs by lowercased id
}

// New builds a catalog, rejecting empty ids, unknown types, duplicates and
// element sets that do not parse.
func New(objects ...Object) (*Catalog, error) {
	c := &Catalog{
		objects: make([]Object, 0, len(objects)),
		byID:    make(map[string]int, len(objects)),
		sats:    make(map[string]*orbit.Satellite),
	}
	for _, o := range objects {
		if err := c.add(o); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Catalog) add(o Object) error {
	key := strings.ToLower(strings.TrimSpace(o.ID))
	if key == "" {
		return fmt.Errorf("object %q: empty id", o.Name)
	}
	if !o.Type.Valid() {
		return fmt.Errorf("object %q: invalid type %q", o.ID, o.Type)
	}
	if _, dup := c.byID[key]; dup {
		return fmt.Errorf("object %q: duplicate id", o.ID)
	}
	if o.HasTLE() {
		sat, err := orbit.Parse(o.Name, o.TLELine1, o.TLELine2)
		if err != nil {
			return fmt.Errorf("object %q: %w", o.ID, err)
		}
		c.sats[key] = sat
	}
	c.byID[key] = len(c.objects)
	c.objects = append(c.objects, o)
	return nil
}

// Get returns the object with the given id.
func (c *Catalog) Get(id string) (Object, error) {
	i, ok := c.byID[strings.ToLower(strings.TrimSpace(id))]
	if !ok {
		return Object{}, fmt.Errorf("%w: %q", ErrUnknownObject, id)
	}
	return c.objects[i], nil
}

// Satellite returns the propagator for an object carrying a TLE. ok is false
// for unknown ids and for objects without elements.
func (c *Catalog) Satellite(id string) (sat *orbit.Satellite, ok bool) {
	sat, ok = c.sats[strings.ToLower(strings.TrimSpace(id))]
	return sat, ok
}

// All returns the objects in insertion order.
func (c *Catalog) All() []Object {
	out := make([]Object, len(c.objects))
	copy(out, c.objects)
	return out
}

// IDs returns all ids, sorted.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.objects))
	for _, o := range c.objects {
		ids = append(ids, o.ID)
	}
	sort.Strings(ids)
	return ids
}

// ByType returns objects of the given type in insertion order.
func (c *Catalog) ByType(t Type) []Object {
	var out []Object
	for _, o := range c.objects {
		if o.Type == t {
			out = append(out, o)
		}
	}
	return out
}

// Len returns the number of objects.
func (c *Catalog) Len() int { return len(c.objects) }

// Merge returns a new catalog with the objects of other added after c's.
// Objects in other replace same-id objects in c.
func (c *Catalog) Merge(other *Catalog) *Catalog {
	out := &Catalog{
		byID: make(map[string]int, len(c.objects)+len(other.objects)),
		sats: make(map[string]*orbit.Satellite, len(c.sats)+len(other.sats)),
	}
	for _, o := range c.objects {
		key := strings.ToLower(o.ID)
		if _, replaced := other.byID[key]; replaced {
			continue
		}
		out.byID[key] = len(out.objects)
		out.objects = append(out.objects, o)
		if sat, ok := c.sats[key]; ok {
			out.sats[key] = sat
		}
	}
	for _, o := range other.objects {
		key := strings.ToLower(o.ID)
		out.byID[key] = len(out.objects)
		out.objects = append(out.objects, o)
		if sat, ok := other.sats[key]; ok {
			out.sats[key] = sat
		}
	}
	return out
}

// Load decodes a JSON array of objects.
func Load(r io.Reader) (*Catalog, error) {
	var objects []Object
	if err := json.NewDecoder(r).Decode(&objects); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return New(objects...)
}

// LoadFile reads a JSON catalog from disk.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	c, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}
