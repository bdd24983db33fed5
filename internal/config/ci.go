package config

import "github.com/gkampitakis/ciinfo"

// CIName returns the detected CI provider name, or empty string if not in CI.
func CIName() string {
	if !ciinfo.IsCI {
		return ""
	}
	return ciinfo.Name
}

// ColorEnabled returns whether log output should be colored. "on" and "off"
// force the choice; anything else enables color outside CI.
func ColorEnabled(mode string) bool {
	switch mode {
	case "on":
		return true
	case "off":
		return false
	default:
		return !ciinfo.IsCI
	}
}
