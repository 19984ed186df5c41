package docs

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJSONHandler_RendersValidSpec(t *testing.T) {
	rec := httptest.NewRecorder()
	JSONHandler(rec, httptest.NewRequest(http.MethodGet, "/swagger/swagger.json", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var doc struct {
		Info struct {
			Title string `json:"title"`
		} `json:"info"`
		Paths map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	require.Equal(t, "Sync Module API", doc.Info.Title)
	require.Contains(t, doc.Paths, "/sync/health")
	require.Contains(t, doc.Paths, "/proxy/create")
}

func TestAdvertisedHost(t *testing.T) {
	cases := []struct {
		public, listen, port, want string
	}{
		{"", "0.0.0.0", "8080", "localhost:8080"},
		{"", "10.0.0.5", "3000", "10.0.0.5:3000"},
		{"api.example.com", "0.0.0.0", "8080", "api.example.com:8080"},
		{"api.example.com:443", "0.0.0.0", "8080", "api.example.com:443"},
		{"api.example.com", "0.0.0.0", "443", "api.example.com"},
	}
	for _, c := range cases {
		require.Equal(t, c.want, advertisedHost(c.public, c.listen, c.port))
	}
}
