package registry

import "fmt"

// Confirmation rule: the attribute that must reach Expected for an
// issued RPC to be considered confirmed by the device. Attribute-change
// polling (an external collaborator) evaluates these rules.
type Confirmation struct {
	Attribute DeviceKey
	Expected  any
}

// Motor direction parameters.
const (
	MotorStop    = 0
	MotorForward = 1
	MotorReverse = 2
)

// ResolveConfirmation maps an issued RPC to the attribute state that
// proves it took effect.
//
// Simple relay/auto/timer methods are a static lookup: the mirrored
// attribute must reach the commanded parameter value. Motor status
// methods are computed from the direction parameter; each direction
// implies a distinct pair of mutually exclusive boolean attributes
// (forward/reverse contactors must never both be engaged).
//
// Unknown methods resolve to nil: nothing to confirm.
func ResolveConfirmation(method string, params any) []Confirmation {
	if m := motorStatusRe.FindStringSubmatch(method); m != nil {
		fw := DeviceKey(fmt.Sprintf("motor_%s_fw", m[1]))
		re := DeviceKey(fmt.Sprintf("motor_%s_re", m[1]))
		switch asInt(params) {
		case MotorForward:
			return []Confirmation{{Attribute: fw, Expected: true}, {Attribute: re, Expected: false}}
		case MotorReverse:
			return []Confirmation{{Attribute: fw, Expected: false}, {Attribute: re, Expected: true}}
		default: // MotorStop and anything unrecognized
			return []Confirmation{{Attribute: fw, Expected: false}, {Attribute: re, Expected: false}}
		}
	}

	if c, ok := byMethod[method]; ok {
		return []Confirmation{{Attribute: c.attribute, Expected: params}}
	}

	return nil
}
