package routing

import (
	"fmt"
	"regexp"
	"strings"
)

var nameRx = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidateName checks a plugin identifier. Names appear as a path segment
// in every fully qualified route, so slashes, dots, spaces and the empty
// string are rejected.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: plugin has no name", ErrInvalidName)
	}

	if !nameRx.MatchString(name) {
		return fmt.Errorf("%w %q: must match %s", ErrInvalidName, name, nameRx)
	}

	return nil
}

// ValidateRoute checks a plugin-local route pattern. A route must begin
// with a slash and may contain at most one wildcard, only as the final
// two characters of the pattern.
func ValidateRoute(route string) error {
	if route == "" {
		return fmt.Errorf("%w: route is empty", ErrInvalidRoute)
	}

	if route[0] != '/' {
		return fmt.Errorf("%w %q: must start with a slash", ErrInvalidRoute, route)
	}

	if n := strings.Count(route, "*"); n > 0 {
		if n > 1 {
			return fmt.Errorf("%w %q: at most one wildcard allowed", ErrInvalidRoute, route)
		}

		if !strings.HasSuffix(route, "/*") {
			return fmt.Errorf("%w %q: wildcard only allowed as a trailing /*", ErrInvalidRoute, route)
		}
	}

	return nil
}
