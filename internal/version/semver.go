package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Semver is a parsed three-part semantic version.
// Pre-release and build suffixes are accepted on input but not retained;
// ordering is defined purely on the numeric triple.
type Semver struct {
	// Major is the first version component.
	Major int
	// Minor is the second version component.
	Minor int
	// Patch is the third version component.
	Patch int
}

// errMalformedVersion is returned when a string does not contain a MAJOR.MINOR.PATCH triple.
var errMalformedVersion = errors.New("malformed semantic version")

// ParseSemver parses strings like "1.2.3", "v22.12.0" or "1.2.3-rc.1" into a Semver.
// A leading "v" or "V" is stripped, and anything after the patch digits is ignored.
func ParseSemver(s string) (Semver, error) {
	trimmed := strings.TrimSpace(s)
	if len(trimmed) > 0 && (trimmed[0] == 'v' || trimmed[0] == 'V') {
		trimmed = trimmed[1:]
	}

	parts := strings.SplitN(trimmed, ".", 4)
	if len(parts) < 3 {
		return Semver{}, fmt.Errorf("%w: %q", errMalformedVersion, s)
	}

	major, err := parseComponent(parts[0], false)
	if err != nil {
		return Semver{}, fmt.Errorf("%w: %q", errMalformedVersion, s)
	}

	minor, err := parseComponent(parts[1], false)
	if err != nil {
		return Semver{}, fmt.Errorf("%w: %q", errMalformedVersion, s)
	}

	// The patch component may carry a pre-release or build suffix ("0-rc1", "3+meta").
	patch, err := parseComponent(parts[2], true)
	if err != nil {
		return Semver{}, fmt.Errorf("%w: %q", errMalformedVersion, s)
	}

	return Semver{Major: major, Minor: minor, Patch: patch}, nil
}

// parseComponent converts one dotted component to an integer.
// When trailing is true, a non-digit suffix after at least one digit is allowed.
func parseComponent(s string, trailing bool) (int, error) {
	if s == "" {
		return 0, errMalformedVersion
	}

	digits := s
	if trailing {
		end := 0
		for end < len(s) && s[end] >= '0' && s[end] <= '9' {
			end++
		}

		digits = s[:end]
	}

	value, err := strconv.Atoi(digits)
	if err != nil {
		return 0, errMalformedVersion
	}

	return value, nil
}

// Compare returns -1, 0 or 1 ordering the versions numerically
// by major, then minor, then patch.
func (v Semver) Compare(other Semver) int {
	if v.Major != other.Major {
		return compareInt(v.Major, other.Major)
	}

	if v.Minor != other.Minor {
		return compareInt(v.Minor, other.Minor)
	}

	return compareInt(v.Patch, other.Patch)
}

// AtLeast reports whether the version satisfies the provided minimum.
func (v Semver) AtLeast(minimum Semver) bool {
	return v.Compare(minimum) >= 0
}

// String renders the canonical dotted form.
func (v Semver) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

func compareInt(a, b int) int {
	if a < b {
		return -1
	}

	if a > b {
		return 1
	}

	return 0
}
