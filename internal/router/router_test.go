package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/dustnbones/pkg/types"
)

func TestResolve(t *testing.T) {
	r := Default()
	tests := []struct {
		path       string
		wantName   string
		wantParams map[string]string
	}{
		{"/", ViewSpecies, nil},
		{"", ViewSpecies, nil},
		{"/bones/7", ViewBoneDetails, map[string]string{"id": "7"}},
		{"/bones/7/", ViewBoneDetails, map[string]string{"id": "7"}},
		{"bones/abc", ViewBoneDetails, map[string]string{"id": "abc"}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			m, err := r.Resolve(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, m.Name)
			assert.Equal(t, tt.wantParams, m.Params)
		})
	}
}

func TestResolveKeepsQuery(t *testing.T) {
	m, err := Default().Resolve("/?page=2&search=dog")
	require.NoError(t, err)
	assert.Equal(t, ViewSpecies, m.Name)
	assert.Equal(t, "2", m.Query.Get("page"))
	assert.Equal(t, "dog", m.Query.Get("search"))
}

func TestResolveUnknownPath(t *testing.T) {
	for _, path := range []string{"/bones", "/species/1", "/bones/7/extra", "/nowhere"} {
		_, err := Default().Resolve(path)
		assert.ErrorIs(t, err, types.ErrNoRoute, path)
	}
}

func TestPath(t *testing.T) {
	r := Default()

	p, err := r.Path(ViewBoneDetails, map[string]string{"id": "7"})
	require.NoError(t, err)
	assert.Equal(t, "/bones/7", p)

	p, err = r.Path(ViewSpecies, nil)
	require.NoError(t, err)
	assert.Equal(t, "/", p)

	_, err = r.Path(ViewBoneDetails, nil)
	assert.Error(t, err)

	_, err = r.Path("missing", nil)
	assert.ErrorIs(t, err, types.ErrNoRoute)
}

func TestPathRoundTripsThroughResolve(t *testing.T) {
	r := Default()
	p, err := r.Path(ViewBoneDetails, map[string]string{"id": "a b"})
	require.NoError(t, err)

	m, err := r.Resolve(p)
	require.NoError(t, err)
	assert.Equal(t, "a b", m.Param("id"))
}

func TestNewPanicsOnDuplicates(t *testing.T) {
	assert.Panics(t, func() {
		New(Route{Name: "a", Pattern: "/"}, Route{Name: "a", Pattern: "/x"})
	})
	assert.Panics(t, func() {
		New(Route{Name: "a", Pattern: "/"}, Route{Name: "b", Pattern: "/"})
	})
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{ViewSpecies, ViewBoneDetails}, Default().Names())
}
