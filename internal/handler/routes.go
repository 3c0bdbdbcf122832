package handler

import "net/http"

// Routes groups the handlers mounted on the API mux. DevAuth is optional.
type Routes struct {
	Assets  *AssetHandler
	Labels  *LabelHandler
	Export  *ExportHandler
	Catalog *CatalogHandler
	System  *SystemHandler
	DevAuth *DevAuthHandler
}

// Register mounts every route (Go 1.22+ method and wildcard patterns).
func (rt *Routes) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", rt.System.HealthCheck)
	mux.HandleFunc("GET /api/me", rt.System.Me)
	mux.HandleFunc("GET /api/asset-types", rt.Catalog.ListTypes)

	// Fixed segments win over {id}, so these need no ordering care
	mux.HandleFunc("GET /api/assets", rt.Assets.ListAssets)
	mux.HandleFunc("POST /api/assets", rt.Assets.CreateAsset)
	mux.HandleFunc("GET /api/assets/trash", rt.Assets.ListTrash)
	mux.HandleFunc("GET /api/assets/export", rt.Export.Export)
	mux.HandleFunc("POST /api/assets/permanent", rt.Assets.PermanentDelete)
	mux.HandleFunc("POST /api/assets/bulk", rt.Assets.BulkAction)
	mux.HandleFunc("DELETE /api/assets/bulk", rt.Assets.BulkAction)
	mux.HandleFunc("POST /api/assets/labels", rt.Labels.Labels)

	mux.HandleFunc("GET /api/assets/{id}", rt.Assets.GetAsset)
	mux.HandleFunc("PATCH /api/assets/{id}", rt.Assets.UpdateAsset)
	mux.HandleFunc("DELETE /api/assets/{id}", rt.Assets.DeleteAsset)
	mux.HandleFunc("POST /api/assets/{id}/restore", rt.Assets.RestoreAsset)
	mux.HandleFunc("DELETE /api/assets/{id}/permanent", rt.Assets.DestroyAsset)
	mux.HandleFunc("GET /api/assets/{id}/qr.png", rt.Labels.QRCode)
	mux.HandleFunc("GET /api/assets/{id}/label", rt.Labels.Label)

	if rt.DevAuth != nil {
		mux.HandleFunc("POST /auth/dev/token", rt.DevAuth.IssueToken)
	}
}
