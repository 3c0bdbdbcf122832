package label

import (
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"io"

	"github.com/msb418/it-asset-tracker/internal/domain/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// labelQRSize is the pixel size embedded in printed labels; the page
// scales it down to 80px.
const labelQRSize = 160

// Renderer produces printable label pages whose QR codes link back to the
// asset under baseURL.
type Renderer struct {
	baseURL string
	tmpl    *template.Template
}

type labelView struct {
	ID     string
	Name   string
	Type   string
	Serial string
	Tag    string
	QR     template.URL
}

type pageView struct {
	Title  string
	Labels []labelView
}

func NewRenderer(baseURL string) (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/labels.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse label template: %w", err)
	}
	return &Renderer{baseURL: baseURL, tmpl: tmpl}, nil
}

// BaseURL is the origin QR codes point at.
func (r *Renderer) BaseURL() string {
	return r.baseURL
}

// Render writes one label per page for assets, in order.
func (r *Renderer) Render(w io.Writer, assets []models.Asset) error {
	page := pageView{Title: "Print Labels", Labels: make([]labelView, 0, len(assets))}
	if len(assets) == 1 {
		page.Title = "Print Label - " + assets[0].Name
	}

	for _, a := range assets {
		png, err := QRCode(AssetURL(r.baseURL, a.ID), labelQRSize)
		if err != nil {
			return err
		}
		page.Labels = append(page.Labels, labelView{
			ID:     a.ID,
			Name:   a.Name,
			Type:   a.AssetType,
			Serial: deref(a.SerialNumber),
			Tag:    a.AssetTag,
			QR:     template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png)),
		})
	}

	return r.tmpl.Execute(w, page)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
