// Package pathutil provides the path normalization helpers shared by the
// route registry and the request dispatcher: trailing slash cleaning,
// prefix stripping and extraction of the experiment id segment.
package pathutil

import (
	"context"
	"strings"

	"github.com/dimfeld/httppath"
)

const experimentPrefix = "/experiment/"

// Clean strips a single trailing slash from a request path. The root path
// is returned unchanged. Trailing slashes carry no meaning for dispatch,
// so /foo/ and /foo resolve to the same route.
func Clean(path string) string {
	if len(path) > 1 && path[len(path)-1] == '/' {
		return path[:len(path)-1]
	}

	return path
}

// Canonical returns the canonicalized form of a path as used for route
// registration: duplicate slashes collapsed and dot segments resolved.
func Canonical(path string) string {
	return httppath.Clean(path)
}

// StripPrefix removes prefix from the path when the path lies under it.
// The second return value reports whether the path was under the prefix
// at all. A path exactly equal to the prefix is not under it, it has no
// remainder to dispatch on.
func StripPrefix(path, prefix string) (string, bool) {
	if prefix == "" {
		return path, true
	}

	if !strings.HasPrefix(path, prefix+"/") {
		return "", false
	}

	return path[len(prefix):], true
}

// StripExperimentID extracts the id from a leading /experiment/{id}
// segment and returns it together with the remaining path. Paths without
// the segment, or with an empty id, are returned unchanged with an empty
// id.
func StripExperimentID(path string) (id, rest string) {
	if !strings.HasPrefix(path, experimentPrefix) {
		return "", path
	}

	tail := path[len(experimentPrefix):]
	slash := strings.IndexByte(tail, '/')
	if slash == -1 {
		if tail == "" {
			return "", path
		}

		return tail, "/"
	}

	if slash == 0 {
		return "", path
	}

	return tail[:slash], tail[slash:]
}

type experimentIDKey struct{}

// WithExperimentID stores the experiment id of the current request in the
// context.
func WithExperimentID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, experimentIDKey{}, id)
}

// ExperimentIDFrom returns the experiment id stored in the context, or the
// empty string when the request carried no experiment segment.
func ExperimentIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(experimentIDKey{}).(string)
	return id
}
