package docs

import (
	_ "embed"
	"net"
	"net/http"
	"os"

	"github.com/swaggo/swag"
)

//go:embed swagger.json
var swaggerTemplate string

var SwaggerInfo = &swag.Spec{
	Version:          "0.0.1",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "Sync Module API",
	Description:      "Proxy registry and data synchronization",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  swaggerTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

// Configure sets the host advertised in the document. SWAGGER_HOST wins
// over the listen address; an unspecified listen host becomes localhost.
func Configure(listenHost, port string) {
	SwaggerInfo.Host = advertisedHost(os.Getenv("SWAGGER_HOST"), listenHost, port)
}

func advertisedHost(public, listenHost, port string) string {
	host := public
	if host == "" {
		host = listenHost
		if host == "" || host == "0.0.0.0" || host == "::" {
			host = "localhost"
		}
	}
	if _, _, err := net.SplitHostPort(host); err == nil || port == "80" || port == "443" {
		return host
	}
	return net.JoinHostPort(host, port)
}

// JSONHandler serves the rendered swagger document with host and version filled in.
func JSONHandler(w http.ResponseWriter, r *http.Request) {
	doc := SwaggerInfo.ReadDoc()
	if doc == "" {
		http.Error(w, "swagger document not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(doc))
}
