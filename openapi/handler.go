package openapi

import (
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/kumohq/kumo/app"
	"github.com/kumohq/kumo/httperror"
)

// DocsUI selects the interactive documentation page served by Mount.
type DocsUI int

const (
	DocsSwaggerUI DocsUI = iota
	DocsRapiDoc
	DocsRedoc
)

// MountConfig configures the routes Mount registers.
type MountConfig struct {
	// UI selects the docs page flavor (default: DocsSwaggerUI).
	UI DocsUI

	// Title overrides the HTML page title (default: the Info title).
	Title string

	// JSONFile is the route for the JSON document, default "schema.json".
	// Relative values are placed under the base path; values starting
	// with "/" are used as-is. "-" disables the route.
	JSONFile string

	// YAMLFile is the route for the YAML document, default "schema.yaml".
	// Placement rules match JSONFile.
	YAMLFile string

	// DisableDocs leaves out the HTML docs page.
	DisableDocs bool
}

func (cfg MountConfig) jsonFile() string {
	if cfg.JSONFile == "" {
		return "schema.json"
	}
	return cfg.JSONFile
}

func (cfg MountConfig) yamlFile() string {
	if cfg.YAMLFile == "" {
		return "schema.yaml"
	}
	return cfg.YAMLFile
}

func resolvePath(basePath, file string) string {
	if strings.HasPrefix(file, "/") {
		return file
	}
	if basePath == "" {
		return "/" + file
	}
	return basePath + "/" + file
}

// Mount registers the document routes on a builder, GET only:
//
//	<basePath> and <basePath>/  - docs page (unless DisableDocs)
//	<basePath>/schema.json      - the document as JSON
//	<basePath>/schema.yaml      - the document as YAML
//
// Pass nil cfg for the defaults. The document is assembled from the running
// application on first request and cached, so annotations registered after
// Mount but before the application is built are still picked up:
//
//	spec.Mount(b, "/docs", nil)
//
// The registered routes are unnamed and carry no annotations, keeping them
// out of the document itself.
func (s *Spec) Mount(b *app.Builder, basePath string, cfg *MountConfig) {
	if cfg == nil {
		cfg = &MountConfig{}
	}
	basePath = strings.TrimRight(basePath, "/")

	var jsonPath, yamlPath string

	if file := cfg.jsonFile(); file != "-" {
		jsonPath = resolvePath(basePath, file)
		b.HandleFunc(jsonPath, s.serveJSON()).Methods(http.MethodGet)
	}

	if file := cfg.yamlFile(); file != "-" {
		yamlPath = resolvePath(basePath, file)
		b.HandleFunc(yamlPath, s.serveYAML()).Methods(http.MethodGet)
	}

	if cfg.DisableDocs {
		return
	}

	// The docs page needs a document route to point at.
	specURL := jsonPath
	if specURL == "" {
		specURL = yamlPath
	}
	if specURL == "" {
		return
	}

	docs := s.serveDocs(cfg, specURL)
	if basePath == "" {
		b.HandleFunc("/", docs).Methods(http.MethodGet)
		return
	}
	b.HandleFunc(basePath, docs).Methods(http.MethodGet)
	b.HandleFunc(basePath+"/", docs).Methods(http.MethodGet)
}

func (s *Spec) serveJSON() func(*app.Context) (app.Output, error) {
	var (
		once sync.Once
		data []byte
		err  error
	)
	return func(c *app.Context) (app.Output, error) {
		once.Do(func() {
			data, err = json.MarshalIndent(s.Build(c.App()), "", "  ")
		})
		if err != nil {
			return app.Output{}, httperror.Internal(err)
		}
		return app.Bytes(http.StatusOK, "application/json", data), nil
	}
}

// serveYAML renders the document as YAML. The document is round-tripped
// through its JSON form first, so the YAML keys match the json struct tags.
func (s *Spec) serveYAML() func(*app.Context) (app.Output, error) {
	var (
		once sync.Once
		data []byte
		err  error
	)
	return func(c *app.Context) (app.Output, error) {
		once.Do(func() {
			var encoded []byte
			if encoded, err = json.Marshal(s.Build(c.App())); err != nil {
				return
			}
			var v any
			if err = json.Unmarshal(encoded, &v); err != nil {
				return
			}
			data, err = yaml.Marshal(v)
		})
		if err != nil {
			return app.Output{}, httperror.Internal(err)
		}
		return app.Bytes(http.StatusOK, "application/x-yaml", data), nil
	}
}

func (s *Spec) serveDocs(cfg *MountConfig, specURL string) func(*app.Context) (app.Output, error) {
	title := cfg.Title
	if title == "" {
		title = s.info.Title
	}

	var page string
	switch cfg.UI {
	case DocsRapiDoc:
		page = rapidocPage(title, specURL)
	case DocsRedoc:
		page = redocPage(title, specURL)
	default:
		page = swaggerUIPage(title, specURL)
	}

	return func(*app.Context) (app.Output, error) {
		return app.HTML(http.StatusOK, page), nil
	}
}

func swaggerUIPage(title, specURL string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>%s</title>
<link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist/swagger-ui.css">
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist/swagger-ui-bundle.js"></script>
<script>
SwaggerUIBundle({url: %q, dom_id: "#swagger-ui"});
</script>
</body>
</html>`, html.EscapeString(title), specURL)
}

func rapidocPage(title, specURL string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>%s</title>
<script type="module" src="https://unpkg.com/rapidoc/dist/rapidoc-min.js"></script>
</head>
<body>
<rapi-doc spec-url=%q></rapi-doc>
</body>
</html>`, html.EscapeString(title), specURL)
}

func redocPage(title, specURL string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>%s</title>
</head>
<body>
<redoc spec-url=%q></redoc>
<script src="https://cdn.redoc.ly/redoc/latest/bundles/redoc.standalone.js"></script>
</body>
</html>`, html.EscapeString(title), specURL)
}
