package link

import (
	"errors"
	"fmt"

	"github.com/UrUsualKal/ai-traffic-light-system/internal/domain/traffic"
)

// Codec errors.
var (
	// ErrMalformedCommand reports a token that does not follow the
	// A<color>B<color>[H] grammar.
	ErrMalformedCommand = errors.New("malformed command token")
	// ErrAlertDuringClearance reports an alert flag combined with a yellow
	// lamp. Alerts only accompany resting states.
	ErrAlertDuringClearance = errors.New("alert flag during yellow clearance")
)

// Token lengths with and without the alert flag.
const (
	plainTokenLen = 4
	alertTokenLen = 5
)

// EncodeCommand renders a light pair as a wire token, for example "ARBG" or
// "AGBR", with an "H" suffix when alert is set ("ARBGH"). Encoding an alert
// together with a yellow lamp fails: the alert belongs to the resting state
// that follows the clearance.
func EncodeCommand(lights traffic.LightPair, alert bool) (string, error) {
	if alert && (lights.A == traffic.Yellow || lights.B == traffic.Yellow) {
		return "", fmt.Errorf("%w: %s", ErrAlertDuringClearance, lights)
	}

	token := [alertTokenLen]byte{'A', lights.A.Symbol(), 'B', lights.B.Symbol(), 'H'}
	if alert {
		return string(token[:]), nil
	}

	return string(token[:plainTokenLen]), nil
}

// DecodeCommand parses a wire token back into a light pair and alert flag.
func DecodeCommand(token string) (traffic.LightPair, bool, error) {
	if len(token) != plainTokenLen && len(token) != alertTokenLen {
		return traffic.LightPair{}, false, fmt.Errorf("%w: %q", ErrMalformedCommand, token)
	}

	if token[0] != 'A' || token[2] != 'B' {
		return traffic.LightPair{}, false, fmt.Errorf("%w: %q", ErrMalformedCommand, token)
	}

	colorA, err := traffic.ParseLightColor(token[1])
	if err != nil {
		return traffic.LightPair{}, false, fmt.Errorf("%w: %q", ErrMalformedCommand, token)
	}

	colorB, err := traffic.ParseLightColor(token[3])
	if err != nil {
		return traffic.LightPair{}, false, fmt.Errorf("%w: %q", ErrMalformedCommand, token)
	}

	lights := traffic.LightPair{A: colorA, B: colorB}

	alert := len(token) == alertTokenLen
	if alert {
		if token[4] != 'H' {
			return traffic.LightPair{}, false, fmt.Errorf("%w: %q", ErrMalformedCommand, token)
		}

		if lights.A == traffic.Yellow || lights.B == traffic.Yellow {
			return traffic.LightPair{}, false, fmt.Errorf("%w: %q", ErrAlertDuringClearance, token)
		}
	}

	return lights, alert, nil
}
