package main

import (
	"context"
	_ "embed"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/msb418/it-asset-tracker/internal/catalog"
	"github.com/msb418/it-asset-tracker/internal/config"
	"github.com/msb418/it-asset-tracker/internal/domain/services"
	"github.com/msb418/it-asset-tracker/internal/service"
	"github.com/msb418/it-asset-tracker/internal/store"
)

//go:embed assets.yaml
var seedAssets []byte

func main() {
	drop := flag.Bool("drop", false, "Drop the asset table or collection before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema and indexes, don't seed assets")
	clearData := flag.Bool("clear-data", false, "Clear the owner's assets (keep schema)")
	owner := flag.String("owner", "demo@example.com", "Email that owns the seeded assets")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// SAFETY: Prevent destructive operations in production
	if cfg.IsProduction() && (*drop || *clearData) {
		log.Fatalf("🚫 BLOCKED: Cannot run destructive operations (--drop or --clear-data) in production environment")
	}
	if cfg.StoreBackend == config.BackendMemory {
		log.Fatalf("Seeding the in-memory store has no effect; set STORE_BACKEND to mongo or postgres")
	}

	logger, logCloser, err := cfg.NewLogger("seed")
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logCloser.Close()

	email := strings.ToLower(strings.TrimSpace(*owner))

	switch {
	case *clearData:
		log.Printf("🧹 Clearing data only (store: %s, prefix: %s, owner: %s)", cfg.StoreBackend, cfg.TablePrefix, email)
	case *schemaOnly:
		log.Printf("🏗️  Setting up schema only (store: %s, prefix: %s)", cfg.StoreBackend, cfg.TablePrefix)
	default:
		log.Printf("🌱 Seeding assets (store: %s, prefix: %s, owner: %s)", cfg.StoreBackend, cfg.TablePrefix, email)
	}

	ctx := context.Background()
	st, err := store.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer st.Close()

	if *drop {
		log.Println("🗑️  Dropping asset storage...")
		if err := st.Drop(ctx); err != nil {
			log.Fatalf("Failed to drop: %v", err)
		}
		log.Println("✅ Dropped")
	}

	log.Println("📋 Ensuring schema is up to date...")
	if err := st.EnsureSchema(ctx); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}
	log.Println("✅ Schema ready")

	if *schemaOnly {
		log.Println("✅ Schema setup complete (schema-only mode)")
		return
	}

	if *clearData {
		n, err := st.ClearOwner(ctx, email)
		if err != nil {
			log.Fatalf("Failed to clear data: %v", err)
		}
		log.Printf("✅ Removed %d assets", n)
		return
	}

	requests, err := loadSeedAssets(seedAssets, email)
	if err != nil {
		log.Fatalf("Failed to read seed data: %v", err)
	}

	cat, err := catalog.New()
	if err != nil {
		log.Fatalf("Failed to load asset type catalog: %v", err)
	}
	assetService := service.NewAssetService(st.Assets, cat, logger)

	// Replace the owner's inventory in one transaction where the store has them
	err = st.Tx.ExecTx(ctx, func(ctx context.Context) error {
		if n, err := st.ClearOwner(ctx, email); err != nil {
			return fmt.Errorf("clear existing assets: %w", err)
		} else if n > 0 {
			log.Printf("⚠️  Removed %d existing assets", n)
		}

		log.Println("📝 Seeding assets...")
		for i, req := range requests {
			asset, err := assetService.CreateAsset(ctx, req)
			if err != nil {
				return fmt.Errorf("create %q: %w", req.Name, err)
			}
			log.Printf("✅ Created asset %d/%d: %s (%s, tag %s)", i+1, len(requests), asset.Name, asset.Status, asset.AssetTag)
		}
		return nil
	})
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("🎉 Seeding complete!")
}

type seedAsset struct {
	Name           string `yaml:"name"`
	AssetType      string `yaml:"assetType"`
	Status         string `yaml:"status"`
	SerialNumber   string `yaml:"serialNumber"`
	Location       string `yaml:"location"`
	AssignedTo     string `yaml:"assignedTo"`
	Description    string `yaml:"description"`
	Notes          string `yaml:"notes"`
	PurchaseDate   string `yaml:"purchaseDate"`
	WarrantyExpiry string `yaml:"warrantyExpiry"`
}

// loadSeedAssets parses the embedded inventory into create requests owned by owner.
func loadSeedAssets(data []byte, owner string) ([]*services.CreateAssetRequest, error) {
	var items []seedAsset
	if err := yaml.Unmarshal(data, &items); err != nil {
		return nil, err
	}

	requests := make([]*services.CreateAssetRequest, 0, len(items))
	for _, it := range items {
		requests = append(requests, &services.CreateAssetRequest{
			Owner:          owner,
			Name:           it.Name,
			AssetType:      it.AssetType,
			Status:         it.Status,
			SerialNumber:   it.SerialNumber,
			Location:       it.Location,
			AssignedTo:     it.AssignedTo,
			Description:    it.Description,
			Notes:          it.Notes,
			PurchaseDate:   it.PurchaseDate,
			WarrantyExpiry: it.WarrantyExpiry,
		})
	}
	return requests, nil
}
