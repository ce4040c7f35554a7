package services

import (
	"archive/zip"
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mrnavastar/modcheck/api"
	"github.com/mrnavastar/modcheck/util/fileutils"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

// fabricJar builds an in-memory jar holding only a fabric.mod.json.
func fabricJar(t *testing.T, modJson string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	entry, err := w.Create("fabric.mod.json")
	require.NoError(t, err)
	_, err = entry.Write([]byte(modJson))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// setup initializes an empty state directory and a fake Modrinth, Fabric and
// Mojang backend. Every "{{url}}" in a route body is replaced with the server
// address.
func setup(t *testing.T, routes map[string]string, files map[string][]byte) string {
	t.Helper()
	keyring.MockInit()
	require.NoError(t, fileutils.Setup(t.TempDir()))

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	defaults := map[string]string{
		"/mojang/manifest.json":   `{"latest": {"release": "1.20.1"}, "versions": [{"id": "1.20.1"}, {"id": "1.19.2"}]}`,
		"/fabric/versions/loader": `[{"version": "0.14.22", "stable": true}]`,
		"/quilt/versions/loader":  `[{"version": "0.20.2"}]`,
	}
	for path, body := range routes {
		defaults[path] = body
	}
	for path, body := range defaults {
		body := strings.ReplaceAll(body, "{{url}}", server.URL)
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(body))
		})
	}
	for path, data := range files {
		data := data
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/java-archive")
			w.Write(data)
		})
	}

	modrinth, curse, fabric, quilt, mojang := api.MODRINTH_API_BASE, api.CURSE_API_BASE, api.FABRIC_META_BASE, api.QUILT_META_BASE, api.MOJANG_MANIFEST
	api.MODRINTH_API_BASE = server.URL + "/modrinth"
	api.CURSE_API_BASE = server.URL + "/curse"
	api.FABRIC_META_BASE = server.URL + "/fabric"
	api.QUILT_META_BASE = server.URL + "/quilt"
	api.MOJANG_MANIFEST = server.URL + "/mojang/manifest.json"
	t.Cleanup(func() {
		api.MODRINTH_API_BASE, api.CURSE_API_BASE, api.FABRIC_META_BASE, api.QUILT_META_BASE, api.MOJANG_MANIFEST = modrinth, curse, fabric, quilt, mojang
	})
	return server.URL
}

func modrinthRoutes() map[string]string {
	return map[string]string{
		"/modrinth/project/sodium": `{"id": "AANobbMI", "slug": "sodium", "title": "Sodium", "categories": ["optimization"]}`,
		"/modrinth/project/sodium/version": `[{
			"id": "s1", "version_number": "0.5.3", "game_versions": ["1.20.1"], "loaders": ["fabric"],
			"files": [{"url": "{{url}}/files/sodium.jar", "filename": "sodium.jar", "primary": true}],
			"dependencies": [{"project_id": "P7dR8mSH", "dependency_type": "required"}]
		}]`,
		"/modrinth/project/fabric-api": `{"id": "P7dR8mSH", "slug": "fabric-api", "title": "Fabric API"}`,
		"/modrinth/project/fabric-api/version": `[{
			"id": "f1", "version_number": "0.90.0", "game_versions": ["1.20.1"], "loaders": ["fabric"],
			"files": [{"url": "{{url}}/files/fabric-api.jar", "filename": "fabric-api.jar"}]
		}]`,
		"/modrinth/project/create": `{"id": "LNytGWDc", "slug": "create", "title": "Create"}`,
		"/modrinth/project/create/version": `[{
			"id": "c1", "version_number": "0.5.1", "game_versions": ["1.20.1"], "loaders": ["forge"],
			"files": [{"url": "{{url}}/files/create.jar", "filename": "create.jar"}]
		}]`,
		"/modrinth/search": `{"hits": [{"slug": "sodium", "categories": ["fabric"]}]}`,
	}
}

func modrinthFiles(t *testing.T) map[string][]byte {
	return map[string][]byte{
		"/files/sodium.jar":     fabricJar(t, `{"id": "sodium", "version": "0.5.3+mc1.20.1", "depends": {"minecraft": "1.20.1"}}`),
		"/files/fabric-api.jar": fabricJar(t, `{"id": "fabric-api", "version": "0.90.0+1.20.1"}`),
		"/files/create.jar":     []byte("not a zip"),
	}
}
