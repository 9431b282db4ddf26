package resource

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/dustnbones/internal/httpx"
	"github.com/mesh-intelligence/dustnbones/pkg/types"
)

type captured struct {
	method string
	path   string
	query  url.Values
	body   map[string]any
}

// newBackend serves body with status for every request and records the
// last request it saw.
func newBackend(t *testing.T, status int, body string) (*httpx.Client, *captured) {
	t.Helper()
	seen := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.method = r.Method
		seen.path = r.URL.EscapedPath()
		seen.query = r.URL.Query()
		seen.body = nil
		data, _ := io.ReadAll(r.Body)
		if len(data) > 0 {
			_ = json.Unmarshal(data, &seen.body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	c, err := httpx.NewClient(srv.URL + "/api")
	require.NoError(t, err)
	return c, seen
}

func intPtr(n int) *int { return &n }

func TestNormalizeList(t *testing.T) {
	tests := []struct {
		name      string
		raw       types.RawList[types.Specie]
		wantItems []types.Specie
		wantTotal int
		wantPage  *types.Pagination
	}{
		{
			name:      "count and data present",
			raw:       types.RawList[types.Specie]{Success: true, Data: []types.Specie{{ID: "1", Name: "Dog"}}, Count: intPtr(1)},
			wantItems: []types.Specie{{ID: "1", Name: "Dog"}},
			wantTotal: 1,
		},
		{
			name:      "missing count defaults to zero",
			raw:       types.RawList[types.Specie]{Success: true, Data: []types.Specie{{ID: "1"}}},
			wantItems: []types.Specie{{ID: "1"}},
			wantTotal: 0,
		},
		{
			name:      "missing data becomes empty slice",
			raw:       types.RawList[types.Specie]{Success: true, Count: intPtr(3)},
			wantItems: []types.Specie{},
			wantTotal: 3,
		},
		{
			name:      "pagination passes through",
			raw:       types.RawList[types.Specie]{Success: true, Pagination: &types.Pagination{Page: 2, Limit: 10}},
			wantItems: []types.Specie{},
			wantPage:  &types.Pagination{Page: 2, Limit: 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeList(tt.raw)
			assert.Equal(t, tt.raw.Success, got.Success)
			assert.Equal(t, tt.wantItems, got.Items)
			assert.Equal(t, tt.wantTotal, got.Total)
			assert.Equal(t, tt.wantPage, got.Pagination)
		})
	}
}

func TestSpeciesGetAllNormalizesBody(t *testing.T) {
	c, seen := newBackend(t, http.StatusOK, `{"success":true,"data":[{"id":1,"name":"Dog"}],"count":1}`)
	svc := NewSpecies(c, nil)

	got, err := svc.GetAll(context.Background(), url.Values{"search": {"do"}})
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, seen.method)
	assert.Equal(t, "/api/species", seen.path)
	assert.Equal(t, "do", seen.query.Get("search"))
	assert.True(t, got.Success)
	assert.Equal(t, []types.Specie{{ID: "1", Name: "Dog"}}, got.Items)
	assert.Equal(t, 1, got.Total)
	assert.Nil(t, got.Pagination)
}

func TestSpeciesCreateReturnsBodyUnmodified(t *testing.T) {
	c, seen := newBackend(t, http.StatusCreated, `{"success":true,"data":{"id":2,"name":"Cat"},"message":"created"}`)
	svc := NewSpecies(c, nil)

	got, err := svc.Create(context.Background(), types.SpecieInput{Name: "Cat"})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, seen.method)
	assert.Equal(t, "/api/species", seen.path)
	assert.Equal(t, "Cat", seen.body["name"])
	assert.True(t, got.Success)
	assert.Equal(t, "created", got.Message)
	require.NotNil(t, got.Data)
	assert.Equal(t, types.Specie{ID: "2", Name: "Cat"}, *got.Data)
}

func TestSingleEntityEndpoints(t *testing.T) {
	tests := []struct {
		name       string
		call       func(s *Species) (*types.Envelope[types.Specie], error)
		wantMethod string
	}{
		{
			name:       "getById",
			call:       func(s *Species) (*types.Envelope[types.Specie], error) { return s.GetByID(context.Background(), "5") },
			wantMethod: http.MethodGet,
		},
		{
			name: "update",
			call: func(s *Species) (*types.Envelope[types.Specie], error) {
				return s.Update(context.Background(), "5", types.SpecieInput{Name: "Horse"})
			},
			wantMethod: http.MethodPut,
		},
		{
			name:       "delete",
			call:       func(s *Species) (*types.Envelope[types.Specie], error) { return s.Delete(context.Background(), "5") },
			wantMethod: http.MethodDelete,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, seen := newBackend(t, http.StatusOK, `{"success":true,"data":{"id":5,"name":"Horse"}}`)
			got, err := tt.call(NewSpecies(c, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantMethod, seen.method)
			assert.Equal(t, "/api/species/5", seen.path)
			assert.True(t, got.Success)
		})
	}
}

func TestEmptyIDIsRejectedWithoutRequest(t *testing.T) {
	c, seen := newBackend(t, http.StatusOK, `{}`)
	svc := NewSpecies(c, nil)

	_, err := svc.GetByID(context.Background(), "")
	assert.ErrorIs(t, err, types.ErrInvalidID)
	_, err = svc.Update(context.Background(), "", nil)
	assert.ErrorIs(t, err, types.ErrInvalidID)
	_, err = svc.Delete(context.Background(), "")
	assert.ErrorIs(t, err, types.ErrInvalidID)
	assert.Empty(t, seen.method)
}

func TestBonesGetAllBySpecie(t *testing.T) {
	c, seen := newBackend(t, http.StatusOK, `{"success":true,"data":[{"id":3,"name":"Femur","specieId":1}],"count":1,"pagination":{"page":1,"limit":20,"totalPages":1}}`)
	svc := NewBones(c, nil)

	got, err := svc.GetAllBySpecie(context.Background(), "1", url.Values{"limit": {"20"}})
	require.NoError(t, err)

	assert.Equal(t, "/api/bones/specie/1", seen.path)
	assert.Equal(t, "20", seen.query.Get("limit"))
	require.Len(t, got.Items, 1)
	assert.Equal(t, types.ID("1"), got.Items[0].SpecieID)
	assert.Equal(t, &types.Pagination{Page: 1, Limit: 20, TotalPages: 1}, got.Pagination)

	_, err = svc.GetAllBySpecie(context.Background(), "", nil)
	assert.ErrorIs(t, err, types.ErrInvalidID)
}

func TestBackendRecordsAreKeptWhole(t *testing.T) {
	c, _ := newBackend(t, http.StatusOK, `{"success":true,"data":[{"id":1,"name":"Dog","imageUrl":"/img/dog.png","createdAt":"2024-01-15 10:00:00"}],"count":1,"pagination":{"page":"1","limit":10}}`)
	svc := NewSpecies(c, nil)

	got, err := svc.GetAll(context.Background(), nil)
	require.NoError(t, err)

	require.Len(t, got.Items, 1)
	dog := got.Items[0]
	assert.Equal(t, "Dog", dog.Name)
	require.NotNil(t, dog.CreatedAt)
	assert.True(t, dog.CreatedAt.Equal(time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)))
	assert.JSONEq(t, `"/img/dog.png"`, string(dog.Extra["imageUrl"]))

	data, err := json.Marshal(dog)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"name":"Dog","imageUrl":"/img/dog.png","createdAt":"2024-01-15 10:00:00"}`, string(data))

	require.NotNil(t, got.Pagination)
	assert.Equal(t, 1, got.Pagination.Page)
	assert.Equal(t, 10, got.Pagination.Limit)
}

func TestBoneWithUnexpectedShapeDecodes(t *testing.T) {
	record := `{"id":3,"name":"Skull","region":3,"imageUrl":"/img/skull.png","specie":{"id":1,"name":"Dog"}}`
	c, _ := newBackend(t, http.StatusOK, `{"success":true,"data":`+record+`}`)
	svc := NewBones(c, nil)

	got, err := svc.GetByID(context.Background(), "3")
	require.NoError(t, err)
	require.NotNil(t, got.Data)
	assert.Equal(t, types.ID("3"), got.Data.ID)
	assert.Equal(t, "Skull", got.Data.Name)
	assert.Empty(t, got.Data.Region)

	data, err := json.Marshal(got.Data)
	require.NoError(t, err)
	assert.JSONEq(t, record, string(data))
}

func TestIDsArePathEscaped(t *testing.T) {
	c, seen := newBackend(t, http.StatusOK, `{"success":true}`)
	svc := NewBones(c, nil)

	_, err := svc.GetByID(context.Background(), "a/b")
	require.NoError(t, err)
	assert.Equal(t, "/api/bones/a%2Fb", seen.path)
}

func TestFailuresAreLoggedAndReturnedUnchanged(t *testing.T) {
	c, _ := newBackend(t, http.StatusInternalServerError, `{"success":false,"message":"db down"}`)
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	svc := NewBones(c, logger)

	_, err := svc.Create(context.Background(), types.BoneInput{Name: "Skull"})
	require.Error(t, err)

	var httpErr *httpx.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusInternalServerError, httpErr.StatusCode)
	assert.Contains(t, logs.String(), "error in create bone")
	assert.Contains(t, logs.String(), "resource=bones")
}
