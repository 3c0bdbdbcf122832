package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/msb418/it-asset-tracker/internal/domain/models"
	"github.com/msb418/it-asset-tracker/internal/listview"
)

// writableFields are the wire names update accepts.
var writableFields = map[string]bool{
	"name": true, "assetType": true, "status": true,
	"serialNumber": true, "location": true, "assignedTo": true,
	"description": true, "notes": true,
	"purchaseDate": true, "warrantyExpiry": true,
}

// filterFlags registers the list filters on fs and returns a function that
// builds the resulting State after parsing.
func filterFlags(fs *flag.FlagSet) func() listview.State {
	q := fs.String("q", "", "search text")
	status := fs.String("status", "", "status filter (all, In Stock, Assigned, Repair, Retired)")
	sortCol := fs.String("sort", "", "sort column: created, name, type, status")
	order := fs.String("order", "", "asc or desc")
	page := fs.Int("page", 0, "page number")
	size := fs.Int("size", 0, "page size")

	return func() listview.State {
		v := url.Values{}
		set := func(k, val string) {
			if val != "" {
				v.Set(k, val)
			}
		}
		set("q", *q)
		set("status", *status)
		set("sort", *sortCol)
		set("order", *order)
		if *page > 0 {
			v.Set("page", strconv.Itoa(*page))
		}
		if *size > 0 {
			v.Set("pageSize", strconv.Itoa(*size))
		}
		return listview.FromValues(v)
	}
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "email to sign in as")
	name := fs.String("name", "", "display name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return errors.New("login: -email is required")
	}

	tok, err := a.api.DevLogin(ctx, *email, *name)
	if err != nil {
		return err
	}
	if err := a.tokens.save(tok.AccessToken); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	fmt.Fprintf(a.out, "Signed in as %s (token saved to %s)\n", *email, a.tokens.path)
	return nil
}

func (a *app) whoami(ctx context.Context) error {
	me, err := a.api.Me(ctx)
	if err != nil {
		return err
	}
	if me.Name != "" {
		fmt.Fprintf(a.out, "%s <%s>\n", me.Name, me.Email)
		return nil
	}
	fmt.Fprintln(a.out, me.Email)
	return nil
}

func (a *app) list(ctx context.Context, args []string, trash bool) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	state := filterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	st := state()
	page, err := a.api.List(ctx, st, trash)
	if err != nil {
		return err
	}
	rows := listview.DisplayRows(page.Items, st)
	printAssets(a.out, rows, st, nil)
	printFooter(a.out, st, page.Total, trash)
	return nil
}

func (a *app) get(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: assetctl get ID")
	}
	asset, err := a.api.Get(ctx, args[0])
	if err != nil {
		return err
	}
	printAsset(a.out, asset)
	return nil
}

func (a *app) create(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	flags := map[string]*string{
		"name":           fs.String("name", "", "asset name (required)"),
		"assetType":      fs.String("type", "", "asset type"),
		"status":         fs.String("status", "", "initial status"),
		"serialNumber":   fs.String("serial", "", "serial number"),
		"location":       fs.String("location", "", "location"),
		"assignedTo":     fs.String("assigned", "", "assignee"),
		"purchaseDate":   fs.String("purchase", "", "purchase date (YYYY-MM-DD)"),
		"warrantyExpiry": fs.String("warranty", "", "warranty expiry (YYYY-MM-DD)"),
		"description":    fs.String("description", "", "description"),
		"notes":          fs.String("notes", "", "notes"),
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	fields := make(map[string]interface{})
	for k, v := range flags {
		if *v != "" {
			fields[k] = *v
		}
	}

	id, err := a.api.Create(ctx, fields)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, id)
	return nil
}

func (a *app) update(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: assetctl update ID field=value ...")
	}
	fields, err := parseAssignments(args[1:])
	if err != nil {
		return err
	}
	asset, err := a.api.Update(ctx, args[0], fields)
	if err != nil {
		return err
	}
	printAsset(a.out, asset)
	return nil
}

// parseAssignments turns field=value pairs into a patch body. An empty
// value clears the field.
func parseAssignments(pairs []string) (map[string]interface{}, error) {
	fields := make(map[string]interface{}, len(pairs))
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("expected field=value, got %q", p)
		}
		if key == "type" {
			key = "assetType"
		}
		if !writableFields[key] {
			return nil, fmt.Errorf("unknown field %q (one of %s)", key, strings.Join(fieldNames(), ", "))
		}
		if value == "" {
			fields[key] = nil
			continue
		}
		fields[key] = value
	}
	return fields, nil
}

func fieldNames() []string {
	names := make([]string, 0, len(writableFields))
	for k := range writableFields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (a *app) mutate(ctx context.Context, cmd string, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: assetctl %s ID", cmd)
	}
	id := args[0]

	var err error
	switch cmd {
	case "delete":
		err = a.api.Delete(ctx, id)
	case "restore":
		err = a.api.Restore(ctx, id)
	case "destroy":
		err = a.api.Destroy(ctx, id)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s: %s\n", cmd, id)
	return nil
}

func (a *app) bulk(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("bulk", flag.ContinueOnError)
	action := fs.String("action", string(models.BulkDelete), "delete, restore or destroy")
	if err := fs.Parse(args); err != nil {
		return err
	}

	res, err := a.api.Bulk(ctx, models.BulkAction(*action), fs.Args())
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s: %d affected\n", *action, res.Affected)
	return nil
}

func (a *app) purge(ctx context.Context, args []string) error {
	n, err := a.api.PermanentDelete(ctx, args)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "permanently deleted %d\n", n)
	return nil
}

func (a *app) labels(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("labels", flag.ContinueOnError)
	out := fs.String("o", "labels.html", "output file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	page, err := a.api.Labels(ctx, fs.Args())
	if err != nil {
		return err
	}
	if err := os.WriteFile(*out, page, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "wrote %s\n", *out)
	return nil
}

func (a *app) export(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	format := fs.String("format", "xlsx", "xlsx or csv")
	out := fs.String("o", "", "output file (defaults to the server's file name)")
	state := filterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	data, filename, err := a.api.Export(ctx, state(), *format)
	if err != nil {
		return err
	}
	if *out != "" {
		filename = *out
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "wrote %s (%d bytes)\n", filename, len(data))
	return nil
}
