package httpserver

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/bazarsur/panel/internal/domain"
	"github.com/bazarsur/panel/internal/usecase"
)

type Server struct {
	mux       *http.ServeMux
	products  *usecase.ProductUC
	sales     *usecase.SaleUC
	ingest    *usecase.IngestUC
	dashboard *usecase.DashboardUC

	syncSecret string
	validate   *validator.Validate
}

func New(p *usecase.ProductUC, s *usecase.SaleUC, i *usecase.IngestUC, d *usecase.DashboardUC, syncSecret string) http.Handler {
	srv := &Server{
		mux:        http.NewServeMux(),
		products:   p,
		sales:      s,
		ingest:     i,
		dashboard:  d,
		syncSecret: syncSecret,
		validate:   validator.New(),
	}
	srv.routes()
	return Chain(srv.mux,
		RateLimit(120),
		RequestID,
		Recovery,
		Logging,
	)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/products", s.apiProducts)
	s.mux.HandleFunc("/api/products/", s.apiProductByID)

	s.mux.HandleFunc("/api/sales", s.apiSales)
	s.mux.HandleFunc("/api/sales/by-product", s.apiSalesByProduct)
	s.mux.HandleFunc("/api/sales/export", s.apiSalesExport)
	s.mux.HandleFunc("/api/sales/", s.apiSaleByID)

	s.mux.HandleFunc("/api/dashboard", s.apiDashboard)

	s.mux.HandleFunc("/api/sync/sales", s.apiSyncSales)

	s.mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, map[string]string{"status": "ok"})
	})
}

// ---------- productos ----------

type createProductReq struct {
	SKU         string             `json:"sku" validate:"required"`
	Name        string             `json:"name" validate:"required"`
	Category    string             `json:"category"`
	Distributor string             `json:"distributor"`
	Image       string             `json:"image"`
	CostPrice   float64            `json:"costPrice" validate:"gte=0"`
	PublicPrice float64            `json:"publicPrice" validate:"gte=0"`
	Stock       int                `json:"stock" validate:"gte=0"`
	MinStock    *int               `json:"minStock"`
	Type        string             `json:"type"`
	Sizes       []domain.SizeStock `json:"sizes"`
}

func (s *Server) apiProducts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		f := domain.ProductFilter{
			Category: r.URL.Query().Get("category"),
			Status:   domain.ProductStatus(r.URL.Query().Get("status")),
			Type:     r.URL.Query().Get("type"),
			Query:    r.URL.Query().Get("q"),
		}
		list, err := s.products.List(r.Context(), f)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, list)
	case http.MethodPost:
		var req createProductReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "json", 400)
			return
		}
		if err := s.validate.Struct(req); err != nil {
			writeJSON(w, 400, map[string]string{"error": err.Error()})
			return
		}
		p, err := s.products.Create(r.Context(), usecase.CreateProductInput{
			SKU:         req.SKU,
			Name:        req.Name,
			Category:    req.Category,
			Distributor: req.Distributor,
			Image:       req.Image,
			CostPrice:   req.CostPrice,
			PublicPrice: req.PublicPrice,
			Stock:       req.Stock,
			MinStock:    req.MinStock,
			Type:        req.Type,
			Sizes:       req.Sizes,
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 201, p)
	default:
		http.Error(w, "method", 405)
	}
}

func (s *Server) apiProductByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(strings.TrimPrefix(r.URL.Path, "/api/products/"))
	if err != nil {
		http.Error(w, "id", 400)
		return
	}
	switch r.Method {
	case http.MethodGet:
		p, err := s.products.Get(r.Context(), id)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, p)
	case http.MethodPut:
		var req struct {
			Name        *string               `json:"name"`
			Category    *string               `json:"category"`
			Distributor *string               `json:"distributor"`
			Image       *string               `json:"image"`
			CostPrice   *float64              `json:"costPrice"`
			PublicPrice *float64              `json:"publicPrice"`
			Stock       *int                  `json:"stock"`
			MinStock    *int                  `json:"minStock"`
			Status      *domain.ProductStatus `json:"status"`
			Type        *string               `json:"type"`
			Sizes       []domain.SizeStock    `json:"sizes"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "json", 400)
			return
		}
		p, err := s.products.Update(r.Context(), id, usecase.UpdateProductInput{
			Name:        req.Name,
			Category:    req.Category,
			Distributor: req.Distributor,
			Image:       req.Image,
			CostPrice:   req.CostPrice,
			PublicPrice: req.PublicPrice,
			Stock:       req.Stock,
			MinStock:    req.MinStock,
			Status:      req.Status,
			Type:        req.Type,
			Sizes:       req.Sizes,
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, p)
	case http.MethodDelete:
		if err := s.products.Delete(r.Context(), id); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, map[string]string{"status": "ok"})
	default:
		http.Error(w, "method", 405)
	}
}

// ---------- ventas ----------

// saleLineRef tolera las dos formas históricas del campo product: el ID pelado
// como string, o un objeto con id/_id adentro. Se normaliza acá, en el borde,
// para que el resto del sistema vea siempre un UUID.
type saleLineRef struct {
	ID uuid.UUID
}

func (ref *saleLineRef) UnmarshalJSON(b []byte) error {
	var asString string
	if err := json.Unmarshal(b, &asString); err == nil {
		id, err := uuid.Parse(asString)
		if err != nil {
			return fmt.Errorf("product: %w", err)
		}
		ref.ID = id
		return nil
	}
	var asObject struct {
		ID    string `json:"id"`
		AltID string `json:"_id"`
	}
	if err := json.Unmarshal(b, &asObject); err != nil {
		return err
	}
	raw := asObject.ID
	if raw == "" {
		raw = asObject.AltID
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return fmt.Errorf("product: %w", err)
	}
	ref.ID = id
	return nil
}

type saleLineReq struct {
	Product   saleLineRef `json:"product"`
	Quantity  int         `json:"quantity" validate:"gte=1"`
	UnitPrice float64     `json:"unitPrice" validate:"gte=0"`
}

type createSaleReq struct {
	Items         []saleLineReq `json:"items" validate:"required,min=1,dive"`
	PaymentMethod string        `json:"paymentMethod"`
	Channel       string        `json:"channel"`
	Customer      *struct {
		Name    string `json:"name"`
		Contact string `json:"contact"`
	} `json:"customer"`
	CreatedBy string `json:"createdBy"`
}

func toSaleLines(items []saleLineReq) []usecase.SaleLine {
	lines := make([]usecase.SaleLine, 0, len(items))
	for _, it := range items {
		lines = append(lines, usecase.SaleLine{
			ProductID: it.Product.ID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	return lines
}

func (s *Server) apiSales(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		f, err := saleFilterFromQuery(r)
		if err != nil {
			http.Error(w, err.Error(), 400)
			return
		}
		list, err := s.sales.List(r.Context(), f)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, list)
	case http.MethodPost:
		var req createSaleReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "json", 400)
			return
		}
		if err := s.validate.Struct(req); err != nil {
			writeJSON(w, 400, map[string]string{"error": err.Error()})
			return
		}
		in := usecase.CreateSaleInput{
			Items:         toSaleLines(req.Items),
			PaymentMethod: req.PaymentMethod,
			Channel:       req.Channel,
			CreatedBy:     req.CreatedBy,
		}
		if req.Customer != nil {
			in.Customer = &usecase.CustomerInput{Name: req.Customer.Name, Contact: req.Customer.Contact}
		}
		sale, err := s.sales.Create(r.Context(), in)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 201, sale)
	default:
		http.Error(w, "method", 405)
	}
}

func (s *Server) apiSaleByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(strings.TrimPrefix(r.URL.Path, "/api/sales/"))
	if err != nil {
		http.Error(w, "id", 400)
		return
	}
	switch r.Method {
	case http.MethodGet:
		sale, err := s.sales.Get(r.Context(), id)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, sale)
	case http.MethodPut:
		var req struct {
			Items         []saleLineReq `json:"items"`
			PaymentMethod *string       `json:"paymentMethod"`
			Channel       *string       `json:"channel"`
			Customer      *struct {
				Name    string `json:"name"`
				Contact string `json:"contact"`
			} `json:"customer"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "json", 400)
			return
		}
		in := usecase.UpdateSaleInput{
			PaymentMethod: req.PaymentMethod,
			Channel:       req.Channel,
		}
		if req.Items != nil {
			in.Items = toSaleLines(req.Items)
		}
		if req.Customer != nil {
			in.Customer = &usecase.CustomerInput{Name: req.Customer.Name, Contact: req.Customer.Contact}
		}
		sale, err := s.sales.Update(r.Context(), id, in)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, sale)
	case http.MethodDelete:
		if err := s.sales.Void(r.Context(), id); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, map[string]string{"status": "ok"})
	default:
		http.Error(w, "method", 405)
	}
}

func (s *Server) apiSalesByProduct(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method", 405)
		return
	}
	f, err := saleFilterFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	rows, err := s.sales.ByProduct(r.Context(), f.From, f.To)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, 200, rows)
}

// apiSalesExport arma el XLSX en memoria, un renglón de venta por fila.
func (s *Server) apiSalesExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method", 405)
		return
	}
	f, err := saleFilterFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	sales, err := s.sales.List(r.Context(), f)
	if err != nil {
		writeErr(w, err)
		return
	}

	file := excelize.NewFile()
	defer file.Close()
	sheet := "Ventas"
	file.SetSheetName("Sheet1", sheet)
	header := []any{"Fecha", "Producto", "SKU", "Cantidad", "Precio Unit.", "Subtotal", "Pago", "Canal", "Cliente", "Total Venta", "Ganancia"}
	_ = file.SetSheetRow(sheet, "A1", &header)

	row := 2
	for _, sale := range sales {
		for _, it := range sale.Items {
			cell, _ := excelize.CoordinatesToCellName(1, row)
			_ = file.SetSheetRow(sheet, cell, &[]any{
				sale.Date.Format("2006-01-02 15:04"),
				it.ProductName,
				it.ProductSKU,
				it.Quantity,
				it.UnitPrice,
				it.Subtotal,
				sale.PaymentMethod,
				sale.Channel,
				sale.CustomerName,
				sale.TotalAmount,
				sale.TotalProfit,
			})
			row++
		}
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=ventas_%s.xlsx", time.Now().Format("2006-01-02")))
	if err := file.Write(w); err != nil {
		log.Error().Err(err).Msg("fallo la escritura del export de ventas")
	}
}

// ---------- dashboard ----------

func (s *Server) apiDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method", 405)
		return
	}
	typeFacet := strings.ToLower(r.URL.Query().Get("type"))
	if typeFacet != "" && !domain.KnownType(typeFacet) {
		http.Error(w, "type", 400)
		return
	}
	sum, err := s.dashboard.Summary(r.Context(), typeFacet)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, 200, sum)
}

// ---------- ingesta remota ----------

type webSaleReq struct {
	OrderID string `json:"orderId"`
	Items   []struct {
		SKU      string  `json:"sku" validate:"required"`
		Quantity int     `json:"quantity" validate:"gte=1"`
		Price    float64 `json:"price" validate:"gte=0"`
	} `json:"items" validate:"required,min=1,dive"`
	TotalAmount   float64 `json:"totalAmount"`
	PaymentMethod string  `json:"paymentMethod"`
	CustomerName  string  `json:"customerName"`
	CustomerEmail string  `json:"customerEmail"`
	Origin        string  `json:"origin"`
}

func (s *Server) apiSyncSales(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	// La comparación corre antes de leer el body: un secreto inválido no debe
	// tocar absolutamente nada.
	got := r.Header.Get("x-sync-secret")
	if s.syncSecret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(s.syncSecret)) != 1 {
		writeJSON(w, 401, map[string]string{"error": "no autorizado"})
		return
	}
	var req webSaleReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "json", 400)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeJSON(w, 400, map[string]string{"error": err.Error()})
		return
	}
	in := usecase.WebSaleInput{
		OrderID:       req.OrderID,
		TotalAmount:   req.TotalAmount,
		PaymentMethod: req.PaymentMethod,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		Origin:        req.Origin,
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, usecase.WebSaleItem{SKU: it.SKU, Quantity: it.Quantity, Price: it.Price})
	}
	sale, skipped, err := s.ingest.Ingest(r.Context(), in)
	if err != nil {
		writeErr(w, err)
		return
	}
	resp := map[string]any{"status": "ok", "saleId": sale.ID}
	if len(skipped) > 0 {
		resp["skippedSkus"] = skipped
	}
	writeJSON(w, 201, resp)
}

// ---------- helpers ----------

func saleFilterFromQuery(r *http.Request) (domain.SaleFilter, error) {
	f := domain.SaleFilter{
		PaymentMethod: r.URL.Query().Get("paymentMethod"),
		Channel:       r.URL.Query().Get("channel"),
	}
	if raw := firstQuery(r, "startDate", "from"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return f, fmt.Errorf("startDate: formato esperado 2006-01-02")
		}
		f.From = &t
	}
	if raw := firstQuery(r, "endDate", "to"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return f, fmt.Errorf("endDate: formato esperado 2006-01-02")
		}
		f.To = &t
	}
	if raw := r.URL.Query().Get("productId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return f, fmt.Errorf("productId inválido")
		}
		f.ProductID = &id
	}
	return f, nil
}

func firstQuery(r *http.Request, keys ...string) string {
	for _, k := range keys {
		if v := r.URL.Query().Get(k); v != "" {
			return v
		}
	}
	return ""
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, err error) {
	var valErr *domain.ValidationError
	var stockErr *domain.InsufficientStockError
	switch {
	case errors.As(err, &valErr), errors.As(err, &stockErr):
		writeJSON(w, 400, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, 404, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		writeJSON(w, 401, map[string]string{"error": err.Error()})
	default:
		log.Error().Err(err).Msg("error no mapeado en handler")
		writeJSON(w, 500, map[string]string{"error": "error interno"})
	}
}
