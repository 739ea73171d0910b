// Package osgi provides OSGi versions and the jar manifest codec.
package osgi

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is an OSGi version: major.minor.micro.qualifier.
type Version struct {
	Major     int
	Minor     int
	Micro     int
	Qualifier string
}

// ParseVersion parses an OSGi or Maven style version string.
//
// Up to three leading numeric segments become major, minor and micro. Everything
// after them, including a Maven "-SNAPSHOT" style suffix, is folded into the
// qualifier. Characters outside the qualifier alphabet are replaced by '_'.
func ParseVersion(s string) (Version, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Version{}, nil
	}

	base, suffix, hasSuffix := strings.Cut(s, "-")
	segments := strings.Split(base, ".")

	var v Version
	numbers := []*int{&v.Major, &v.Minor, &v.Micro}
	i := 0
	for ; i < len(segments) && i < len(numbers); i++ {
		if !isNumeric(segments[i]) {
			break
		}
		n, err := strconv.Atoi(segments[i])
		if err != nil {
			return Version{}, fmt.Errorf("invalid version %q: %w", s, err)
		}
		*numbers[i] = n
	}

	var rest []string
	for _, seg := range segments[i:] {
		if seg != "" {
			rest = append(rest, seg)
		}
	}
	if hasSuffix && suffix != "" {
		rest = append(rest, suffix)
	}
	v.Qualifier = SanitizeQualifier(strings.Join(rest, "-"))

	return v, nil
}

// MustParseVersion is like ParseVersion but panics on error. Intended for
// constants and tests.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

// WithQualifier returns a copy of v with q applied as qualifier. An existing
// qualifier is kept and joined with q.
func (v Version) WithQualifier(q string) Version {
	q = SanitizeQualifier(q)
	if q == "" {
		return v
	}
	if v.Qualifier == "" {
		v.Qualifier = q
	} else {
		v.Qualifier = v.Qualifier + "-" + q
	}
	return v
}

// Base returns v without its qualifier.
func (v Version) Base() Version {
	v.Qualifier = ""
	return v
}

// String renders the version, omitting an empty qualifier.
func (v Version) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Micro)
	if v.Qualifier != "" {
		s += "." + v.Qualifier
	}
	return s
}

// SanitizeQualifier replaces every character outside [A-Za-z0-9_-] with '_'.
func SanitizeQualifier(q string) string {
	var b strings.Builder
	b.Grow(len(q))
	for _, r := range q {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
