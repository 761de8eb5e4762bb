// Package swagger serves a Swagger 2.0 description of the HTTP API. The
// document is built from the routes gin actually registered, so it never
// drifts from the router.
package swagger

import (
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
)

// Route is the mount point of the Swagger UI.
const Route = "/swagger/*any"

type Doc struct {
	mu      sync.RWMutex
	title   string
	version string
	routes  gin.RoutesInfo
}

func NewDoc(title, version string) *Doc {
	return &Doc{title: title, version: version}
}

// SetRoutes replaces the described routes.
func (d *Doc) SetRoutes(routes gin.RoutesInfo) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.routes = routes
}

type parameter struct {
	Name     string `json:"name"`
	In       string `json:"in"`
	Required bool   `json:"required"`
	Type     string `json:"type"`
}

type operation struct {
	Tags       []string                     `json:"tags"`
	Produces   []string                     `json:"produces"`
	Parameters []parameter                  `json:"parameters,omitempty"`
	Responses  map[string]map[string]string `json:"responses"`
}

// ReadDoc implements swag.Swagger.
func (d *Doc) ReadDoc() string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	paths := make(map[string]map[string]operation)
	for _, r := range d.routes {
		if strings.HasPrefix(r.Path, "/swagger/") {
			continue
		}
		path, params := openAPIPath(r.Path)
		ops, ok := paths[path]
		if !ok {
			ops = make(map[string]operation)
			paths[path] = ops
		}
		ops[strings.ToLower(r.Method)] = operation{
			Tags:       []string{tagFor(r.Path)},
			Produces:   []string{"application/json"},
			Parameters: params,
			Responses:  map[string]map[string]string{"200": {"description": "OK"}},
		}
	}

	doc := map[string]any{
		"swagger":  "2.0",
		"info":     map[string]string{"title": d.title, "version": d.version},
		"basePath": "/",
		"paths":    paths,
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return "{}"
	}
	return string(out)
}

// openAPIPath turns /api/items/:id into /api/items/{id}.
func openAPIPath(path string) (string, []parameter) {
	segments := strings.Split(path, "/")
	var params []parameter
	for i, s := range segments {
		if s == "" || (s[0] != ':' && s[0] != '*') {
			continue
		}
		name := s[1:]
		segments[i] = "{" + name + "}"
		params = append(params, parameter{Name: name, In: "path", Required: true, Type: "string"})
	}
	sort.Slice(params, func(i, j int) bool { return params[i].Name < params[j].Name })
	return strings.Join(segments, "/"), params
}

// tagFor groups a route by its first segment after /api.
func tagFor(path string) string {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(path, "/"), "api/")
	if i := strings.Index(trimmed, "/"); i >= 0 {
		trimmed = trimmed[:i]
	}
	if trimmed == "" {
		return "system"
	}
	return trimmed
}

var registerOnce sync.Once

// Mount serves the Swagger UI on router and describes every route registered
// so far. Only the first doc mounted in a process is registered with swag.
func Mount(router *gin.Engine, doc *Doc) {
	registerOnce.Do(func() { swag.Register(swag.Name, doc) })
	router.GET(Route, ginSwagger.WrapHandler(swaggerFiles.Handler))
	doc.SetRoutes(router.Routes())
}
