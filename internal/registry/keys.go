// Package registry is the single place the abstract greenhouse device
// vocabulary is tied to the upstream platform's wire identifiers:
// telemetry keys (read-only series), attribute keys (device state) and
// RPC method names (commands). Tables are built once at init and never
// mutated, so no synchronization is needed. Every other component
// resolves keys here and must not duplicate these tables.
package registry

import (
	"regexp"
	"strconv"
)

// DeviceKey abstract identifier for a sensor, relay, motor, timer or
// auto-mode. Stable across upstream platform changes.
type DeviceKey string

// control one controllable device facet: the RPC method that commands
// it, the attribute that mirrors the commanded state, and its display
// name.
type control struct {
	method    string
	key       DeviceKey
	attribute DeviceKey
	name      string
}

var controls = []control{
	// relays
	{"set_fan_1_cmd", "fan_1", "fan_1", "Fan 1"},
	{"set_fan_2_cmd", "fan_2", "fan_2", "Fan 2"},
	{"set_pump_1_cmd", "pump_1", "pump_1", "Water Pump 1"},
	{"set_pump_2_cmd", "pump_2", "pump_2", "Water Pump 2"},
	{"set_mister_1_cmd", "mister_1", "mister_1", "Mister 1"},
	{"set_light_1_cmd", "light_1", "light_1", "Grow Light 1"},

	// per-device auto modes
	{"set_fan_1_auto", "fan_1", "fan_1_auto", "Fan 1 Auto"},
	{"set_fan_2_auto", "fan_2", "fan_2_auto", "Fan 2 Auto"},
	{"set_pump_1_auto", "pump_1", "pump_1_auto", "Water Pump 1 Auto"},
	{"set_pump_2_auto", "pump_2", "pump_2_auto", "Water Pump 2 Auto"},
	{"set_mister_1_auto", "mister_1", "mister_1_auto", "Mister 1 Auto"},
	{"set_light_1_auto", "light_1", "light_1_auto", "Grow Light 1 Auto"},

	// sensor-condition and interval automation
	{"set_pump_1_condition_auto", "pump_1", "pump_1_condition_auto", "Water Pump 1 Soil Auto"},
	{"set_pump_2_condition_auto", "pump_2", "pump_2_condition_auto", "Water Pump 2 Soil Auto"},
	{"set_mister_1_interval_auto", "mister_1", "mister_1_interval_auto", "Mister 1 Interval Auto"},
	{"set_fan_1_interval_auto", "fan_1", "fan_1_interval_auto", "Fan 1 Interval Auto"},

	// timers
	{"set_light_1_time", "light_1", "light_1_time", "Grow Light 1 Timer"},
	{"set_pump_1_time", "pump_1", "pump_1_time", "Water Pump 1 Timer"},

	// greenhouse-wide mode
	{"set_global_auto", "global_auto", "global_auto", "Global Auto Mode"},
}

// motorNames display names for the bidirectional curtain motors; their
// confirmation rules are computed from the direction parameter rather
// than looked up.
var motorNames = map[DeviceKey]string{
	"motor_1": "Roof Curtain Motor 1",
	"motor_2": "Side Curtain Motor 2",
}

// telemetryKeys read-only time-series keys reported by a greenhouse.
var telemetryKeys = []DeviceKey{
	"air_temp",
	"air_humidity",
	"light",
	"co2",
	"soil1_moisture",
	"soil2_moisture",
	"soil3_moisture",
	"soil4_moisture",
	"water_temp",
	"water_ec",
	"water_ph",
}

var (
	byMethod     map[string]control
	displayNames map[DeviceKey]string

	motorStatusRe = regexp.MustCompile(`^set_motor_([0-9]+)_status$`)
)

func init() {
	byMethod = make(map[string]control, len(controls))
	displayNames = make(map[DeviceKey]string, len(controls)+len(motorNames))
	for _, c := range controls {
		byMethod[c.method] = c
		if _, ok := displayNames[c.key]; !ok {
			displayNames[c.key] = c.name
		}
	}
	for k, n := range motorNames {
		displayNames[k] = n
	}
}

// KnownMethod reports whether the method is in the registry tables
// (motor status methods count as known when the motor number pattern
// matches).
func KnownMethod(method string) bool {
	if _, ok := byMethod[method]; ok {
		return true
	}
	return motorStatusRe.MatchString(method)
}

// ControlKeyForMethod maps an RPC method to the abstract key of the
// device it controls. Unknown methods fall back to the raw method name
// so history rows stay attributable.
func ControlKeyForMethod(method string) string {
	if c, ok := byMethod[method]; ok {
		return string(c.key)
	}
	if m := motorStatusRe.FindStringSubmatch(method); m != nil {
		return "motor_" + m[1]
	}
	return method
}

// DisplayName best-effort human-readable name for a control key,
// falling back to the raw key.
func DisplayName(key string) string {
	if n, ok := displayNames[DeviceKey(key)]; ok {
		return n
	}
	return key
}

// TelemetryKeys wire-level telemetry keys, as strings for the platform
// client.
func TelemetryKeys() []string {
	out := make([]string, len(telemetryKeys))
	for i, k := range telemetryKeys {
		out[i] = string(k)
	}
	return out
}

// asInt coerces an RPC parameter into an int. JSON decoding hands us
// float64; callers in tests tend to pass int.
func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0
		}
		return i
	default:
		return 0
	}
}
