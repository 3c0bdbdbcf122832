// Command assetctl is a terminal client for the asset tracker API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/msb418/it-asset-tracker/internal/client"
)

const usage = `Usage: assetctl [-server URL] [-token TOKEN] <command> [args]

Commands:
  login    -email E [-name N]        obtain a demo token and save it
  whoami                             show the signed-in identity
  list     [filters]                 list active assets
  trash    [filters]                 list trashed assets
  browse   [-trash]                  interactive list with search and selection
  get      ID                        show one asset
  create   -name N [field flags]     create an asset
  update   ID field=value ...        patch fields; field= clears it
  delete   ID                        move to trash
  restore  ID                        restore from trash
  destroy  ID                        permanently delete a trashed asset
  bulk     -action A ID ...          delete, restore or destroy many
  purge    ID ...                    permanently delete trashed assets
  labels   [-o FILE] ID ...          write printable label HTML
  export   [-format xlsx|csv] [-o FILE] [filters]

Filters: -q TEXT -status S -sort created|name|type|status -order asc|desc -page N -size N
`

type app struct {
	api    *client.Client
	out    io.Writer
	in     io.Reader
	tokens tokenStore
}

func main() {
	_ = godotenv.Load()

	fs := flag.NewFlagSet("assetctl", flag.ExitOnError)
	server := fs.String("server", envOr("ASSETCTL_SERVER", "http://localhost:8080"), "API base URL")
	token := fs.String("token", os.Getenv("ASSETCTL_TOKEN"), "bearer token (defaults to the saved login)")
	fs.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	_ = fs.Parse(os.Args[1:])

	args := fs.Args()
	if len(args) == 0 {
		fs.Usage()
		os.Exit(2)
	}

	store := tokenStore{path: defaultTokenPath()}
	if *token == "" {
		*token, _ = store.load()
	}

	a := &app{
		api:    client.New(*server, *token, &http.Client{Timeout: 30 * time.Second}),
		out:    os.Stdout,
		in:     os.Stdin,
		tokens: store,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := a.run(ctx, args[0], args[1:]); err != nil {
		if client.IsStatus(err, http.StatusUnauthorized) {
			fmt.Fprintln(os.Stderr, "not signed in: run 'assetctl login' or pass -token")
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "login":
		return a.login(ctx, args)
	case "whoami":
		return a.whoami(ctx)
	case "list":
		return a.list(ctx, args, false)
	case "trash":
		return a.list(ctx, args, true)
	case "browse":
		return a.browse(ctx, args)
	case "get":
		return a.get(ctx, args)
	case "create":
		return a.create(ctx, args)
	case "update":
		return a.update(ctx, args)
	case "delete", "restore", "destroy":
		return a.mutate(ctx, cmd, args)
	case "bulk":
		return a.bulk(ctx, args)
	case "purge":
		return a.purge(ctx, args)
	case "labels":
		return a.labels(ctx, args)
	case "export":
		return a.export(ctx, args)
	case "help", "-h", "--help":
		fmt.Fprint(a.out, usage)
		return nil
	}
	return fmt.Errorf("unknown command %q", cmd)
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// tokenStore persists the bearer token between invocations.
type tokenStore struct {
	path string
}

func defaultTokenPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "assetctl", "token")
}

func (s tokenStore) load() (string, error) {
	if s.path == "" {
		return "", errors.New("no config directory")
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (s tokenStore) save(token string) error {
	if s.path == "" {
		return errors.New("no config directory")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.path, []byte(token+"\n"), 0o600)
}
