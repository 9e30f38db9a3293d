package pathutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	for _, test := range []struct {
		path     string
		expected string
	}{
		{"/", "/"},
		{"", ""},
		{"/foo", "/foo"},
		{"/foo/", "/foo"},
		{"/foo/bar/", "/foo/bar"},
		{"/foo//", "/foo/"},
	} {
		assert.Equal(t, test.expected, Clean(test.path), test.path)
	}
}

func TestCleanIdempotent(t *testing.T) {
	for _, path := range []string{"/", "/x", "/x/", "/a/b/c/"} {
		once := Clean(path)
		assert.Equal(t, once, Clean(once), path)
	}
}

func TestStripPrefix(t *testing.T) {
	for _, test := range []struct {
		path   string
		prefix string
		rest   string
		under  bool
	}{
		{"/test/data/x", "/test", "/data/x", true},
		{"/test", "/test", "", false},
		{"/testing/data", "/test", "", false},
		{"/other/data", "/test", "", false},
		{"/data/x", "", "/data/x", true},
	} {
		rest, under := StripPrefix(test.path, test.prefix)
		assert.Equal(t, test.under, under, test.path)
		assert.Equal(t, test.rest, rest, test.path)
	}
}

func TestStripExperimentID(t *testing.T) {
	for _, test := range []struct {
		path string
		id   string
		rest string
	}{
		{"/experiment/123/data/plugin/foo/x", "123", "/data/plugin/foo/x"},
		{"/experiment/123", "123", "/"},
		{"/experiment//data", "", "/experiment//data"},
		{"/experiment/", "", "/experiment/"},
		{"/data/plugin/foo/x", "", "/data/plugin/foo/x"},
		{"/experimental/x", "", "/experimental/x"},
	} {
		id, rest := StripExperimentID(test.path)
		assert.Equal(t, test.id, id, test.path)
		assert.Equal(t, test.rest, rest, test.path)
	}
}

func TestExperimentIDContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "", ExperimentIDFrom(ctx))

	ctx = WithExperimentID(ctx, "exp1")
	assert.Equal(t, "exp1", ExperimentIDFrom(ctx))
}
