package main

import (
	"bytes"
	"context"
	"flag"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msb418/it-asset-tracker/internal/auth"
	"github.com/msb418/it-asset-tracker/internal/catalog"
	"github.com/msb418/it-asset-tracker/internal/client"
	"github.com/msb418/it-asset-tracker/internal/domain/models"
	"github.com/msb418/it-asset-tracker/internal/handler"
	"github.com/msb418/it-asset-tracker/internal/label"
	"github.com/msb418/it-asset-tracker/internal/listview"
	"github.com/msb418/it-asset-tracker/internal/middleware"
	"github.com/msb418/it-asset-tracker/internal/repository/memory"
	"github.com/msb418/it-asset-tracker/internal/service"
)

func TestParseAssignments(t *testing.T) {
	fields, err := parseAssignments([]string{"location=Desk 4", "type=Monitor", "notes="})
	require.NoError(t, err)
	assert.Equal(t, "Desk 4", fields["location"])
	assert.Equal(t, "Monitor", fields["assetType"])
	v, ok := fields["notes"]
	assert.True(t, ok)
	assert.Nil(t, v, "empty value clears the field")

	_, err = parseAssignments([]string{"location"})
	assert.Error(t, err)

	_, err = parseAssignments([]string{"createdByEmail=x@example.com"})
	assert.ErrorContains(t, err, "unknown field")
}

func TestFilterFlags(t *testing.T) {
	fs := flag.NewFlagSet("t", flag.ContinueOnError)
	state := filterFlags(fs)
	require.NoError(t, fs.Parse([]string{"-q", "mac", "-status", "Repair", "-sort", "name", "-page", "2"}))

	st := state()
	assert.Equal(t, "mac", st.Query)
	assert.Equal(t, models.StatusRepair, st.Status)
	assert.Equal(t, listview.ColumnName, st.Sort)
	assert.Equal(t, 2, st.Page)

	fs = flag.NewFlagSet("t", flag.ContinueOnError)
	state = filterFlags(fs)
	require.NoError(t, fs.Parse(nil))
	assert.Equal(t, listview.DefaultState(), state())
}

func TestTokenStore(t *testing.T) {
	s := tokenStore{path: filepath.Join(t.TempDir(), "nested", "token")}

	_, err := s.load()
	assert.Error(t, err)

	require.NoError(t, s.save("abc.def"))
	tok, err := s.load()
	require.NoError(t, err)
	assert.Equal(t, "abc.def", tok)

	_, err = tokenStore{}.load()
	assert.Error(t, err)
}

func TestPrintAsset(t *testing.T) {
	loc := "HQ"
	var buf bytes.Buffer
	printAsset(&buf, &models.Asset{ID: "a1", Name: "Laptop", Status: models.StatusAssigned, Location: &loc})

	out := buf.String()
	assert.Contains(t, out, "Laptop")
	assert.Contains(t, out, "HQ")
	assert.Contains(t, out, "Serial Number:")
	assert.NotContains(t, out, "Deleted:")
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cat, err := catalog.New()
	require.NoError(t, err)
	renderer, err := label.NewRenderer("https://it.example.com")
	require.NoError(t, err)
	dev, err := auth.NewDevVerifier("assetctl-test-secret", logger)
	require.NoError(t, err)

	svc := service.NewAssetService(memory.NewAssetRepository(logger), cat, logger)
	routes := &handler.Routes{
		Assets:  handler.NewAssetHandler(svc, logger),
		Labels:  handler.NewLabelHandler(svc, renderer, logger),
		Export:  handler.NewExportHandler(svc, logger),
		Catalog: handler.NewCatalogHandler(cat),
		System:  handler.NewSystemHandler("memory", nil, logger),
		DevAuth: handler.NewDevAuthHandler(dev, time.Hour, logger),
	}
	mux := http.NewServeMux()
	routes.Register(mux)

	srv := httptest.NewServer(middleware.AuthMiddleware(dev, logger, "/health", "/auth/dev/token")(mux))
	t.Cleanup(srv.Close)
	return srv
}

func TestApp_EndToEnd(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	dir := t.TempDir()
	tokens := tokenStore{path: filepath.Join(dir, "token")}

	var out bytes.Buffer
	anon := &app{api: client.New(srv.URL, "", srv.Client()), out: &out, tokens: tokens}
	require.NoError(t, anon.run(ctx, "login", []string{"-email", "Dana@Example.com"}))

	tok, err := tokens.load()
	require.NoError(t, err)
	a := &app{api: client.New(srv.URL, tok, srv.Client()), out: &out, tokens: tokens}

	out.Reset()
	require.NoError(t, a.run(ctx, "whoami", nil))
	assert.Equal(t, "dana@example.com\n", out.String())

	out.Reset()
	require.NoError(t, a.run(ctx, "create", []string{"-name", "ThinkPad", "-type", "Laptop", "-location", "HQ"}))
	id := strings.TrimSpace(out.String())
	require.NotEmpty(t, id)

	out.Reset()
	require.NoError(t, a.run(ctx, "update", []string{id, "location=", "status=Repair"}))
	assert.Contains(t, out.String(), "Repair")

	out.Reset()
	require.NoError(t, a.run(ctx, "list", []string{"-q", "think"}))
	assert.Contains(t, out.String(), "ThinkPad")
	assert.Contains(t, out.String(), "Page 1 of 1, 1 assets")

	labels := filepath.Join(dir, "labels.html")
	require.NoError(t, a.run(ctx, "labels", []string{"-o", labels, id}))
	page, err := os.ReadFile(labels)
	require.NoError(t, err)
	assert.Contains(t, string(page), "ThinkPad")

	export := filepath.Join(dir, "assets.csv")
	require.NoError(t, a.run(ctx, "export", []string{"-format", "csv", "-o", export}))
	data, err := os.ReadFile(export)
	require.NoError(t, err)
	assert.Contains(t, string(data), "ThinkPad")

	require.NoError(t, a.run(ctx, "delete", []string{id}))
	err = a.run(ctx, "get", []string{id})
	assert.True(t, client.IsStatus(err, http.StatusNotFound))

	out.Reset()
	require.NoError(t, a.run(ctx, "trash", nil))
	assert.Contains(t, out.String(), "ThinkPad")

	out.Reset()
	require.NoError(t, a.run(ctx, "purge", []string{id}))
	assert.Equal(t, "permanently deleted 1\n", out.String())

	assert.ErrorContains(t, a.run(ctx, "frob", nil), "unknown command")
}

func TestApp_Browse(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	anon := client.New(srv.URL, "", srv.Client())
	tok, err := anon.DevLogin(ctx, "lee@example.com", "")
	require.NoError(t, err)
	api := anon.WithToken(tok.AccessToken)

	for _, name := range []string{"Alpha", "Bravo"} {
		_, err := api.Create(ctx, map[string]interface{}{"name": name})
		require.NoError(t, err)
	}

	var out bytes.Buffer
	a := &app{api: api, out: &out, in: strings.NewReader("sort name\nx 1\nd\nq\n")}
	require.NoError(t, a.run(ctx, "browse", nil))

	assert.Contains(t, out.String(), "delete: 1 affected")

	page, err := api.List(ctx, listview.DefaultState(), true)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Alpha", page.Items[0].Name)
}
