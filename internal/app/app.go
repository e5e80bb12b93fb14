package app

import (
	"net/http"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/bazarsur/panel/internal/adapters/httpserver"
	"github.com/bazarsur/panel/internal/adapters/repo/postgres"
	"github.com/bazarsur/panel/internal/adapters/storefront"
	"github.com/bazarsur/panel/internal/domain"
	"github.com/bazarsur/panel/internal/usecase"
)

type App struct {
	DB          *gorm.DB
	ProductUC   *usecase.ProductUC
	SaleUC      *usecase.SaleUC
	IngestUC    *usecase.IngestUC
	DashboardUC *usecase.DashboardUC

	syncSecret string
}

func NewApp(db *gorm.DB) (*App, error) {
	prodRepo := postgres.NewProductRepo(db)
	saleRepo := postgres.NewSaleRepo(db)

	syncSecret := os.Getenv("SYNC_SECRET")
	if syncSecret == "" {
		log.Warn().Msg("SYNC_SECRET vacío: la ingesta remota queda deshabilitada")
	}

	publisher := storefront.NewPublisher(parseEndpoints(os.Getenv("SYNC_ENDPOINTS")), syncSecret)

	ledger := &usecase.LedgerUC{Products: prodRepo}

	app := &App{DB: db, syncSecret: syncSecret}
	app.ProductUC = &usecase.ProductUC{Products: prodRepo, Publisher: publisher}
	app.SaleUC = &usecase.SaleUC{Sales: saleRepo, Products: prodRepo, Ledger: ledger}
	app.IngestUC = &usecase.IngestUC{Sales: saleRepo, Ledger: ledger}
	app.DashboardUC = &usecase.DashboardUC{Sales: saleRepo, Products: prodRepo}
	return app, nil
}

// parseEndpoints interpreta SYNC_ENDPOINTS con formato
// "nombre=url=tipo,nombre=url=tipo". El tipo puede omitirse; un endpoint sin
// tipo recibe todo el catálogo.
func parseEndpoints(raw string) []storefront.Endpoint {
	var eps []storefront.Endpoint
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 3)
		if len(parts) < 2 || parts[1] == "" {
			log.Warn().Str("entry", entry).Msg("endpoint de sincronización mal formado, se ignora")
			continue
		}
		ep := storefront.Endpoint{Name: parts[0], BaseURL: parts[1]}
		if len(parts) == 3 {
			ep.Type = strings.ToLower(strings.TrimSpace(parts[2]))
		}
		eps = append(eps, ep)
	}
	return eps
}

func (a *App) HTTPHandler() http.Handler {
	return httpserver.New(a.ProductUC, a.SaleUC, a.IngestUC, a.DashboardUC, a.syncSecret)
}

func (a *App) Migrate() error {
	if err := a.DB.AutoMigrate(
		&domain.Product{}, &domain.Sale{}, &domain.SaleItem{},
	); err != nil {
		return err
	}

	_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_sales_date ON sales(date)").Error
	_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_sales_payment_method ON sales(payment_method)").Error
	_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_sales_channel ON sales(channel)").Error
	_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_sale_items_product_id ON sale_items(product_id)").Error
	_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_sale_items_sale_id ON sale_items(sale_id)").Error

	// El stock nunca debería quedar negativo; el CHECK es la última línea por
	// si algún camino escribe sin pasar por las operaciones condicionales.
	_ = a.DB.Exec("ALTER TABLE products DROP CONSTRAINT IF EXISTS chk_products_stock_non_negative").Error
	_ = a.DB.Exec("ALTER TABLE products ADD CONSTRAINT chk_products_stock_non_negative CHECK (stock >= 0)").Error

	return nil
}
