package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/msb418/it-asset-tracker/internal/domain/models"
	"github.com/msb418/it-asset-tracker/internal/listview"
)

const browseHelp = `Commands:
  /TEXT         search (applied after typing pauses)
  status S      filter by status, "all" clears
  sort COL      sort by created, name, type or status; again flips direction
  n, p, page N  next, previous or a specific page
  x N...        toggle selection of rows by number
  a             toggle all rows on the page
  d             move selected to trash (active list)
  r, D          restore or permanently delete selected (trash)
  l [FILE]      write labels for selected rows
  ?             this help
  q             quit
`

type listAPI interface {
	List(ctx context.Context, st listview.State, trash bool) (*models.AssetPage, error)
	Bulk(ctx context.Context, action models.BulkAction, ids []string) (*models.MutationResult, error)
	Labels(ctx context.Context, ids []string) ([]byte, error)
}

// browser is a line-driven version of the asset table. Search input is
// debounced; every other change reloads immediately.
type browser struct {
	api      listAPI
	out      io.Writer
	trash    bool
	debounce *listview.Debouncer

	mu    sync.Mutex
	ctx   context.Context
	state listview.State
	rows  []models.Asset
	total int64
	sel   *listview.Selection
}

func newBrowser(ctx context.Context, api listAPI, out io.Writer, trash bool, delay time.Duration) *browser {
	return &browser{
		api:      api,
		out:      out,
		trash:    trash,
		debounce: listview.NewDebouncer(delay),
		ctx:      ctx,
		state:    listview.DefaultState(),
		sel:      listview.NewSelection(),
	}
}

func (a *app) browse(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("browse", flag.ContinueOnError)
	trash := fs.Bool("trash", false, "browse the trash")
	if err := fs.Parse(args); err != nil {
		return err
	}

	b := newBrowser(ctx, a.api, a.out, *trash, listview.DefaultDebounce)
	defer b.debounce.Stop()

	if err := b.reload(); err != nil {
		return err
	}
	fmt.Fprint(a.out, "Type ? for help.\n> ")

	scanner := bufio.NewScanner(a.in)
	for scanner.Scan() {
		quit, err := b.handle(scanner.Text())
		if err != nil {
			fmt.Fprintln(a.out, "error:", err)
		}
		if quit {
			return nil
		}
		fmt.Fprint(a.out, "> ")
	}
	return scanner.Err()
}

// handle applies one command line and reports whether to quit.
func (b *browser) handle(line string) (bool, error) {
	if strings.HasPrefix(line, "/") {
		b.search(line[1:])
		return false, nil
	}

	fields := strings.Fields(line)
	if len(fields) == 0 {
		b.render()
		return false, nil
	}
	cmd, rest := fields[0], fields[1:]

	switch cmd {
	case "q", "quit":
		return true, nil
	case "?", "help":
		fmt.Fprint(b.out, browseHelp)
		return false, nil
	case "status":
		value := strings.Join(rest, " ")
		return false, b.change(func(st *listview.State) bool { return st.SetStatus(value) })
	case "sort":
		if len(rest) != 1 {
			return false, errors.New("usage: sort created|name|type|status")
		}
		col := listview.Column(rest[0])
		switch col {
		case listview.ColumnCreated, listview.ColumnName, listview.ColumnType, listview.ColumnStatus:
		default:
			return false, fmt.Errorf("cannot sort by %q", rest[0])
		}
		return false, b.change(func(st *listview.State) bool { st.ToggleSort(col); return true })
	case "n", "p", "page":
		return false, b.page(cmd, rest)
	case "x":
		return false, b.toggleRows(rest)
	case "a":
		b.mu.Lock()
		b.sel.ToggleAll(b.rows)
		b.mu.Unlock()
		b.render()
		return false, nil
	case "d":
		return false, b.bulk(models.BulkDelete, false)
	case "r":
		return false, b.bulk(models.BulkRestore, true)
	case "D":
		return false, b.bulk(models.BulkDestroy, true)
	case "l":
		out := "labels.html"
		if len(rest) > 0 {
			out = rest[0]
		}
		return false, b.labels(out)
	}
	return false, fmt.Errorf("unknown command %q (? for help)", cmd)
}

// search waits for typing to pause before querying.
func (b *browser) search(q string) {
	q = strings.TrimSpace(q)
	b.debounce.Trigger(func() {
		if err := b.change(func(st *listview.State) bool { return st.SetSearch(q) }); err != nil {
			fmt.Fprintln(b.out, "error:", err)
		}
	})
}

// change mutates the state and reloads when it reports a change.
func (b *browser) change(fn func(st *listview.State) bool) error {
	b.mu.Lock()
	changed := fn(&b.state)
	b.mu.Unlock()
	if !changed {
		return nil
	}
	return b.reload()
}

func (b *browser) page(cmd string, rest []string) error {
	b.mu.Lock()
	target := b.state.Page
	total := b.total
	b.mu.Unlock()

	switch cmd {
	case "n":
		target++
	case "p":
		target--
	default:
		if len(rest) != 1 {
			return errors.New("usage: page N")
		}
		n, err := strconv.Atoi(rest[0])
		if err != nil {
			return fmt.Errorf("invalid page %q", rest[0])
		}
		target = n
	}
	return b.change(func(st *listview.State) bool { return st.GoPage(target, total) })
}

func (b *browser) toggleRows(nums []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, s := range nums {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > len(b.rows) {
			return fmt.Errorf("no row %q", s)
		}
		b.sel.Toggle(b.rows[n-1].ID)
	}
	b.renderLocked()
	return nil
}

func (b *browser) bulk(action models.BulkAction, trashOnly bool) error {
	if trashOnly != b.trash {
		return fmt.Errorf("%s is not available in this list", action)
	}

	b.mu.Lock()
	ids := b.sel.IDs(b.rows)
	b.mu.Unlock()
	if len(ids) == 0 {
		return errors.New("nothing selected")
	}

	res, err := b.api.Bulk(b.ctx, action, ids)
	if err != nil {
		return err
	}
	fmt.Fprintf(b.out, "%s: %d affected\n", action, res.Affected)

	b.mu.Lock()
	b.sel.Clear()
	b.mu.Unlock()
	return b.reload()
}

func (b *browser) labels(path string) error {
	b.mu.Lock()
	ids := b.sel.IDs(b.rows)
	b.mu.Unlock()
	if len(ids) == 0 {
		return errors.New("nothing selected")
	}

	page, err := b.api.Labels(b.ctx, ids)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, page, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(b.out, "wrote %d labels to %s\n", len(ids), path)
	return nil
}

// reload fetches the current page and redraws it.
func (b *browser) reload() error {
	b.mu.Lock()
	st := b.state
	b.mu.Unlock()

	page, err := b.api.List(b.ctx, st, b.trash)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.rows = listview.DisplayRows(page.Items, st)
	b.total = page.Total
	b.renderLocked()
	return nil
}

func (b *browser) render() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.renderLocked()
}

func (b *browser) renderLocked() {
	printAssets(b.out, b.rows, b.state, b.sel)
	printFooter(b.out, b.state, b.total, b.trash)
}
