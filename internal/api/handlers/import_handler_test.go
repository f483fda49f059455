package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const importSample = `server {
    listen 80;
    server_name legacy.example.com;
    root /srv/www;

    location /api/ {
        proxy_pass http://127.0.0.1:9000;
    }
}
`

func TestImportHandler_Preview(t *testing.T) {
	f := setupFixture(t)

	w := f.do(t, http.MethodPost, "/import/preview", gin.H{"config": importSample})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Config struct {
			ServerNames []string `json:"server_names"`
		} `json:"config"`
		Preview string   `json:"preview"`
		Errors  []string `json:"errors"`
	}
	decodeJSON(t, w, &resp)
	assert.Equal(t, []string{"legacy.example.com"}, resp.Config.ServerNames)
	assert.Contains(t, resp.Preview, "server_name legacy.example.com;")
	assert.Empty(t, resp.Errors)

	// Preview never persists anything.
	sites, err := f.sites.List()
	require.NoError(t, err)
	assert.Empty(t, sites)
}

func TestImportHandler_Commit(t *testing.T) {
	f := setupFixture(t)

	w := f.do(t, http.MethodPost, "/import", gin.H{"name": "legacy", "config": importSample})
	require.Equal(t, http.StatusCreated, w.Code)

	sites, err := f.sites.List()
	require.NoError(t, err)
	require.Len(t, sites, 1)
	assert.Equal(t, "legacy", sites[0].Name)

	model, err := f.sites.Model(&sites[0])
	require.NoError(t, err)
	assert.Equal(t, []string{"legacy.example.com"}, model.ServerNames)
	require.Len(t, model.Locations, 1)
	assert.Equal(t, "/api/", model.Locations[0].Path)
}

func TestImportHandler_Commit_ParseErrors(t *testing.T) {
	f := setupFixture(t)

	w := f.do(t, http.MethodPost, "/import", gin.H{"name": "broken", "config": "server {\n  listen 80;\n"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "could not be parsed")

	sites, err := f.sites.List()
	require.NoError(t, err)
	assert.Empty(t, sites)
}

func TestImportHandler_MissingBody(t *testing.T) {
	f := setupFixture(t)

	w := f.do(t, http.MethodPost, "/import/preview", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, "/import", gin.H{"name": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
