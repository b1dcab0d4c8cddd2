package dispatch

import "regexp"

// oneWayPatterns methods dispatched fire-and-forget. Their effect is
// observable later through attribute-change polling (see the registry
// confirmation rules), and waiting synchronously on them caused
// upstream gateway timeouts in practice.
var oneWayPatterns = []*regexp.Regexp{
	regexp.MustCompile(`_cmd$`),
	regexp.MustCompile(`_auto$`),
	regexp.MustCompile(`_time$`),
	regexp.MustCompile(`_condition_auto$`),
	regexp.MustCompile(`_interval_auto$`),
	regexp.MustCompile(`^set_global_`),
	regexp.MustCompile(`^set_motor_[0-9]+_status$`),
}

// IsOneWay reports whether the method is dispatched without waiting
// for a device-side acknowledgement, regardless of any caller-supplied
// timeout.
func IsOneWay(method string) bool {
	for _, p := range oneWayPatterns {
		if p.MatchString(method) {
			return true
		}
	}
	return false
}
