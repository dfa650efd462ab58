package main

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Pokedex/internal/app"
	"Pokedex/internal/domain"
)

const apiBase = "https://pokeapi.test/api/v2"

func mockTransport(size int) *httpmock.MockTransport {
	mock := httpmock.NewMockTransport()

	results := make([]string, 0, size)
	for i := 1; i <= size; i++ {
		results = append(results, fmt.Sprintf(`{"name": "p%d", "url": "%s/pokemon/%d/"}`, i, apiBase, i))
	}
	mock.RegisterResponder(http.MethodGet, `=~^https://pokeapi\.test/api/v2/pokemon(\?.*)?$`,
		httpmock.NewStringResponder(http.StatusOK,
			fmt.Sprintf(`{"count": %d, "next": null, "results": [%s]}`, size, strings.Join(results, ","))))

	mock.RegisterResponder(http.MethodGet, `=~^https://pokeapi\.test/api/v2/pokemon/\d+/$`,
		func(req *http.Request) (*http.Response, error) {
			id, err := domain.IDFromRef(req.URL.Path)
			if err != nil {
				return nil, err
			}
			return httpmock.NewStringResponse(http.StatusOK, fmt.Sprintf(`{"id": %s, "name": "p%s", "height": 10, "weight": 100,
			  "types": [{"slot": 1, "type": {"name": "grass"}}],
			  "stats": [{"base_stat": 80, "stat": {"name": "hp"}}]}`, id, id)), nil
		})
	return mock
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cfgPath := filepath.Join(t.TempDir(), "pokedex.yaml")
	cfg := fmt.Sprintf("api:\n  baseUrl: %s\nenrichment:\n  requestsPerSecond: 1000\n  burst: 100\n", apiBase)
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o600))

	root := RootCommand(app.WithHTTPClient(&http.Client{Transport: mockTransport(22)}))
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", cfgPath, "--log-level", "error"}, args...))

	err := root.Execute()
	return out.String(), err
}

func TestListCommand(t *testing.T) {
	t.Parallel()

	out, err := run(t, "list", "--page", "2", "--metrics")
	require.NoError(t, err)

	assert.Contains(t, out, "#0021")
	assert.Contains(t, out, "P22")
	assert.Contains(t, out, "grass")
	assert.NotContains(t, out, "#0020")
	assert.Contains(t, out, "page 2 of 2")
	assert.Contains(t, out, "pokedex_catalog_entries 22")
}

func TestListCommandSearch(t *testing.T) {
	t.Parallel()

	out, err := run(t, "list", "--search", "p2")
	require.NoError(t, err)

	assert.Contains(t, out, `page 1 of 1 (search "p2")`)
	assert.Contains(t, out, "#0020")
	assert.NotContains(t, out, "#0013")
}

func TestShowCommand(t *testing.T) {
	t.Parallel()

	out, err := run(t, "show", "5")
	require.NoError(t, err)

	assert.Contains(t, out, "#0005 P5")
	assert.Contains(t, out, "Height: 1.0 m")
	assert.Contains(t, out, "Weight: 10.0 kg")
}

func TestExportCommand(t *testing.T) {
	t.Parallel()

	dest := filepath.Join(t.TempDir(), "page.html")
	out, err := run(t, "export", "--out", dest)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote page 1 of 2")

	f, err := os.Open(dest)
	require.NoError(t, err)
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	require.NoError(t, err)
	assert.Equal(t, 20, doc.Find("li.card").Length())
	assert.Equal(t, 20, doc.Find("li.card .type").Length())
}

func TestExportRequiresOut(t *testing.T) {
	t.Parallel()

	_, err := run(t, "export")
	assert.Error(t, err)
}
