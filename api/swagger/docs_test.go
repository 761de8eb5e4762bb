package swagger

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type swaggerDoc struct {
	Swagger string `json:"swagger"`
	Info    struct {
		Title string `json:"title"`
	} `json:"info"`
	Paths map[string]map[string]operation `json:"paths"`
}

func noop(*gin.Context) {}

func TestOpenAPIPath(t *testing.T) {
	path, params := openAPIPath("/api/invoices/draft/rows/:index/resolve")
	assert.Equal(t, "/api/invoices/draft/rows/{index}/resolve", path)
	require.Len(t, params, 1)
	assert.Equal(t, parameter{Name: "index", In: "path", Required: true, Type: "string"}, params[0])

	path, params = openAPIPath("/health")
	assert.Equal(t, "/health", path)
	assert.Empty(t, params)
}

func TestMount_DescribesRegisteredRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/health", noop)
	router.GET("/api/items/:id", noop)
	router.DELETE("/api/items/:id", noop)
	router.POST("/api/invoices/draft/save", noop)

	doc := NewDoc("POS Ledger API", "1.0")
	Mount(router, doc)

	var got swaggerDoc
	require.NoError(t, json.Unmarshal([]byte(doc.ReadDoc()), &got))
	assert.Equal(t, "2.0", got.Swagger)
	assert.Equal(t, "POS Ledger API", got.Info.Title)
	assert.Len(t, got.Paths, 3, "the UI route itself is not described")

	item := got.Paths["/api/items/{id}"]
	require.Contains(t, item, "get")
	require.Contains(t, item, "delete")
	assert.Equal(t, []string{"items"}, item["get"].Tags)
	assert.Equal(t, []string{"invoices"}, got.Paths["/api/invoices/draft/save"]["post"].Tags)
	assert.Equal(t, []string{"health"}, got.Paths["/health"]["get"].Tags)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/api/items/{id}")
}
