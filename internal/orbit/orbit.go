// Package orbit propagates satellites from two-line element sets so they can
// be scored as elevated targets.
package orbit

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/litescript/ls-skyscore/internal/visibility"
)

// ErrInvalidTLE is returned for element sets that fail validation.
var ErrInvalidTLE = errors.New("invalid TLE")

// ErrPropagation is returned when SGP4 produces no usable state.
var ErrPropagation = errors.New("propagation failed")

const tleLineLen = 69

// Satellite is an SGP4-propagated object.
type Satellite struct {
	Name   string
	Number string // NORAD catalogue number
	sat    satellite.Satellite
}

// LookAngles is a satellite as seen by an observer.
type LookAngles struct {
	AzimuthDeg   float64 `json:"azimuth"`
	ElevationDeg float64 `json:"elevation"`
	RangeKm      float64 `json:"rangeKm"`
}

// Parse validates a TLE and prepares it for propagation.
func Parse(name, line1, line2 string) (*Satellite, error) {
	line1 = strings.TrimRight(line1, " \r\n")
	line2 = strings.TrimRight(line2, " \r\n")

	if err := validateLine(line1, '1'); err != nil {
		return nil, fmt.Errorf("%w: line 1: %v", ErrInvalidTLE, err)
	}
	if err := validateLine(line2, '2'); err != nil {
		return nil, fmt.Errorf("%w: line 2: %v", ErrInvalidTLE, err)
	}
	if err := validateFields(line1, line1Fields); err != nil {
		return nil, fmt.Errorf("%w: line 1: %v", ErrInvalidTLE, err)
	}
	if err := validateFields(line2, line2Fields); err != nil {
		return nil, fmt.Errorf("%w: line 2: %v", ErrInvalidTLE, err)
	}
	num := strings.TrimSpace(line1[2:7])
	if num != strings.TrimSpace(line2[2:7]) {
		return nil, fmt.Errorf("%w: catalogue numbers differ", ErrInvalidTLE)
	}

	return &Satellite{
		Name:   name,
		Number: num,
		sat:    satellite.TLEToSat(line1, line2, satellite.GravityWGS72),
	}, nil
}

// field is a numeric column range of a TLE line, 0-based and half-open.
type field struct {
	name       string
	start, end int
	implied    bool // decimal point assumed before the digits
}

// SGP4 reads these with sscanf and silently takes zero for garbage.
var (
	line1Fields = []field{
		{name: "epoch", start: 18, end: 32},
		{name: "mean motion derivative", start: 33, end: 43},
	}
	line2Fields = []field{
		{name: "inclination", start: 8, end: 16},
		{name: "right ascension", start: 17, end: 25},
		{name: "eccentricity", start: 26, end: 33, implied: true},
		{name: "argument of perigee", start: 34, end: 42},
		{name: "mean anomaly", start: 43, end: 51},
		{name: "mean motion", start: 52, end: 63},
	}
)

func validateFields(line string, fields []field) error {
	for _, f := range fields {
		raw := line[f.start:f.end]
		v := strings.TrimSpace(raw)
		if f.implied && v != "" {
			v = "0." + v
		}
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return fmt.Errorf("%s %q is not a number", f.name, raw)
		}
	}
	return nil
}

func validateLine(line string, num byte) error {
	if len(line) != tleLineLen {
		return fmt.Errorf("length %d, want %d", len(line), tleLineLen)
	}
	if line[0] != num || line[1] != ' ' {
		return fmt.Errorf("line number %q, want %q", line[0], num)
	}
	want := line[tleLineLen-1]
	if want < '0' || want > '9' {
		return fmt.Errorf("checksum %q is not a digit", want)
	}
	if got := checksum(line[:tleLineLen-1]); got != int(want-'0') {
		return fmt.Errorf("checksum %d, want %c", got, want)
	}
	return nil
}

// checksum is the modulo-10 sum of digits, with '-' counting as 1.
func checksum(s string) int {
	sum := 0
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= '0' && c <= '9':
			sum += int(c - '0')
		case c == '-':
			sum++
		}
	}
	return sum % 10
}

// propagate returns the ECI position in km and the GMST in radians at t.
func (s *Satellite) propagate(t time.Time) (satellite.Vector3, float64, error) {
	t = t.UTC()
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	pos, _ := satellite.Propagate(s.sat, year, int(month), day, hour, min, sec)
	if math.IsNaN(pos.X) || math.IsNaN(pos.Y) || math.IsNaN(pos.Z) ||
		(pos.X == 0 && pos.Y == 0 && pos.Z == 0) {
		return pos, 0, fmt.Errorf("%w: %s at %s", ErrPropagation, s.Name, t.Format(time.RFC3339))
	}

	jd := satellite.JDay(year, int(month), day, hour, min, sec)
	return pos, satellite.ThetaG_JD(jd), nil
}

// PositionAt returns the sub-satellite point and altitude at t.
func (s *Satellite) PositionAt(t time.Time) (visibility.Position, error) {
	pos, gmst, err := s.propagate(t)
	if err != nil {
		return visibility.Position{}, err
	}

	alt, _, ll := satellite.ECIToLLA(pos, gmst)
	return visibility.Position{
		Lat:        ll.Latitude * 180 / math.Pi,
		Lon:        wrap180(ll.Longitude * 180 / math.Pi),
		AltitudeKm: alt,
	}, nil
}

// LookAnglesFrom returns azimuth, elevation and range from an observer.
func (s *Satellite) LookAnglesFrom(observer visibility.Position, t time.Time) (LookAngles, error) {
	pos, _, err := s.propagate(t)
	if err != nil {
		return LookAngles{}, err
	}

	t = t.UTC()
	year, month, day := t.Date()
	hour, min, sec := t.Clock()
	jd := satellite.JDay(year, int(month), day, hour, min, sec)

	obs := satellite.LatLong{
		Latitude:  observer.Lat * math.Pi / 180,
		Longitude: observer.Lon * math.Pi / 180,
	}
	la := satellite.ECIToLookAngles(pos, obs, observer.AltitudeKm, jd)

	return LookAngles{
		AzimuthDeg:   la.Az * 180 / math.Pi,
		ElevationDeg: la.El * 180 / math.Pi,
		RangeKm:      la.Rg,
	}, nil
}

// Track samples the sub-satellite point n times from start.
func (s *Satellite) Track(start time.Time, step time.Duration, n int) ([]visibility.Position, error) {
	out := make([]visibility.Position, 0, n)
	for i := 0; i < n; i++ {
		p, err := s.PositionAt(start.Add(time.Duration(i) * step))
		if err != nil {
			return out, err
		}
		out = append(out, p)
	}
	return out, nil
}

func wrap180(lon float64) float64 {
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}
