package traffic

import "fmt"

// LightColor is the state of a single traffic lamp.
type LightColor uint8

const (
	// Red halts traffic for a direction.
	Red LightColor = iota
	// Yellow is the mandatory clearance state between Green and Red.
	Yellow
	// Green grants right-of-way to a direction.
	Green
)

// Symbol returns the single-byte wire encoding of the color.
func (c LightColor) Symbol() byte {
	switch c {
	case Yellow:
		return 'Y'
	case Green:
		return 'G'
	default:
		return 'R'
	}
}

// String returns a lowercase human-readable name for logs.
func (c LightColor) String() string {
	switch c {
	case Yellow:
		return "yellow"
	case Green:
		return "green"
	default:
		return "red"
	}
}

// ParseLightColor converts a wire byte back into a LightColor.
func ParseLightColor(b byte) (LightColor, error) {
	switch b {
	case 'R':
		return Red, nil
	case 'Y':
		return Yellow, nil
	case 'G':
		return Green, nil
	default:
		return Red, fmt.Errorf("unknown light symbol %q", string(b))
	}
}

// Direction identifies one of the two approaches at the crossing.
type Direction uint8

const (
	// DirectionA is the AI-observed approach (the camera watches it).
	DirectionA Direction = iota
	// DirectionB is the cross traffic approach.
	DirectionB
)

// Opposite returns the other approach.
func (d Direction) Opposite() Direction {
	if d == DirectionA {
		return DirectionB
	}

	return DirectionA
}

// String returns "A" or "B".
func (d Direction) String() string {
	if d == DirectionA {
		return "A"
	}

	return "B"
}

// LightPair is the lamp state of both directions at one instant.
type LightPair struct {
	// A is the lamp facing the AI-observed approach.
	A LightColor
	// B is the lamp facing the cross traffic approach.
	B LightColor
}

// CrossTraffic is the resting state with cross traffic flowing: {Red, Green}.
func CrossTraffic() LightPair {
	return LightPair{A: Red, B: Green}
}

// AiTraffic is the state granting the AI-observed side right-of-way: {Green, Red}.
func AiTraffic() LightPair {
	return LightPair{A: Green, B: Red}
}

// Color returns the lamp state facing the given direction.
func (p LightPair) Color(d Direction) LightColor {
	if d == DirectionA {
		return p.A
	}

	return p.B
}

// Conflicting reports whether the pair grants conflicting right-of-way:
// two greens, or an active (non-red) lamp opposite a green.
func (p LightPair) Conflicting() bool {
	if p.A == Green && p.B != Red {
		return true
	}

	if p.B == Green && p.A != Red {
		return true
	}

	return p.A == Yellow && p.B == Yellow
}

// String returns a compact "A=<color> B=<color>" form for logs.
func (p LightPair) String() string {
	return fmt.Sprintf("A=%s B=%s", p.A, p.B)
}
