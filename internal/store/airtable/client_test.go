package airtable

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubdir/internal/store"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(Config{APIURL: srv.URL, APIKey: "key", BaseID: "app123", RequestsPerSecond: 1000}, nil)
	require.NoError(t, err)
	return c
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(Config{BaseID: "app"}, nil)
	assert.Error(t, err)
}

func TestQueryParams(t *testing.T) {
	params := QueryParams(store.Query{
		Filter:     store.And(store.Eq("clubId", "x"), store.Eq("requesterUserId", "y")),
		Sort:       []store.Sort{{Field: "createdAt", Desc: true}},
		MaxRecords: 1,
		Fields:     []string{"clubId", "status"},
	})

	assert.Equal(t, `AND({clubId} = "x", {requesterUserId} = "y")`, params.Get("filterByFormula"))
	assert.Equal(t, "1", params.Get("maxRecords"))
	assert.Equal(t, "createdAt", params.Get("sort[0][field]"))
	assert.Equal(t, "desc", params.Get("sort[0][direction]"))
	assert.Equal(t, []string{"clubId", "status"}, params["fields[]"])
}

func TestAllFollowsOffset(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/app123/Clubs", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		assert.Equal(t, `{status} = "approved"`, r.URL.Query().Get("filterByFormula"))

		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("offset") == "" {
			_, _ = io.WriteString(w, `{"records":[{"id":"rec1","fields":{"name":"a"}}],"offset":"next"}`)
			return
		}
		assert.Equal(t, "next", r.URL.Query().Get("offset"))
		_, _ = io.WriteString(w, `{"records":[{"id":"rec2","fields":{"name":"b"}}]}`)
	})

	got, err := c.All(context.Background(), "Clubs", store.Query{Filter: store.Eq("status", "approved")})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "rec2", got[1].ID)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFirstPageCapsPageSize(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("pageSize"))
		_, _ = io.WriteString(w, `{"records":[],"offset":"ignored"}`)
	})

	got, err := c.FirstPage(context.Background(), "Clubs", store.Query{MaxRecords: 1})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUpdateSendsNullToClear(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)

		var body map[string][]map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		fields := body["records"][0]["fields"].(map[string]any)
		v, present := fields["reviewedAt"]
		assert.True(t, present)
		assert.Nil(t, v)
		assert.Equal(t, "recA", body["records"][0]["id"])

		_, _ = io.WriteString(w, `{"records":[{"id":"recA","fields":{"status":"pending"}}]}`)
	})

	rec, err := c.Update(context.Background(), "Clubs", "recA", store.Fields{"status": "pending", "reviewedAt": nil})
	require.NoError(t, err)
	assert.Equal(t, "pending", rec.Fields.String("status"))
}

func TestCreateOmitsNulls(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var body map[string][]map[string]map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.NotContains(t, body["records"][0]["fields"], "reviewedAt")
		_, _ = io.WriteString(w, `{"records":[{"id":"recNew","fields":{"name":"Chess"}}]}`)
	})

	rec, err := c.Create(context.Background(), "Clubs", store.Fields{"name": "Chess", "reviewedAt": nil})
	require.NoError(t, err)
	assert.Equal(t, "recNew", rec.ID)
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantSubstr string
		notFound   bool
	}{
		{"structured error", http.StatusUnprocessableEntity, `{"error":{"type":"INVALID_VALUE_FOR_COLUMN","message":"bad date"}}`, "INVALID_VALUE_FOR_COLUMN: bad date", false},
		{"string error", http.StatusForbidden, `{"error":"NOT_AUTHORIZED"}`, "NOT_AUTHORIZED", false},
		{"plain body", http.StatusBadGateway, `upstream down`, "upstream down", false},
		{"find miss", http.StatusNotFound, `{"error":"NOT_FOUND"}`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := c.Find(context.Background(), "Clubs", "rec1")
			require.Error(t, err)
			if tt.notFound {
				assert.ErrorIs(t, err, store.ErrNotFound)
				return
			}
			var re *store.RemoteError
			require.ErrorAs(t, err, &re)
			assert.Equal(t, tt.status, re.Status)
			assert.Contains(t, err.Error(), tt.wantSubstr)
		})
	}
}

func TestUpdate_MissingRow(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":"NOT_FOUND"}`)
	})

	_, err := c.Update(context.Background(), "Clubs", "recGone", store.Fields{"status": "approved"})
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.False(t, store.IsRemote(err))
}
