package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bazarsur/panel/internal/domain"
)

// Endpoint es una tienda destino de la sincronización de catálogo. Type acota
// qué productos recibe; vacío significa que recibe todo.
type Endpoint struct {
	Name    string
	BaseURL string
	Type    string
}

type Publisher struct {
	endpoints  []Endpoint
	secret     string
	httpClient *http.Client
}

func NewPublisher(endpoints []Endpoint, secret string) *Publisher {
	return &Publisher{
		endpoints:  endpoints,
		secret:     secret,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type syncProduct struct {
	SKU      string  `json:"sku"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Stock    int     `json:"stock"`
	Category string  `json:"category"`
	Type     string  `json:"type"`
	Image    string  `json:"image,omitempty"`
	Status   string  `json:"status"`
}

// Publish empuja el snapshot a cada tienda que corresponda por tipo. Si el
// tipo del producto no matchea ningún endpoint tipado, va a todos: mejor un
// catálogo de más que un producto invisible. Cada entrega es best-effort e
// independiente; una tienda caída no frena a las demás ni al panel.
func (p *Publisher) Publish(ctx context.Context, prod *domain.Product) {
	if len(p.endpoints) == 0 {
		return
	}
	for _, ep := range p.route(prod.Type) {
		go func(ep Endpoint) {
			payload := snapshot(prod, ep.BaseURL)
			if err := p.push(ctx, ep, payload); err != nil {
				log.Error().Err(err).
					Str("endpoint", ep.Name).
					Str("sku", payload.SKU).
					Msg("fallo el push de catálogo")
				return
			}
			log.Info().Str("endpoint", ep.Name).Str("sku", payload.SKU).Msg("producto sincronizado")
		}(ep)
	}
}

func (p *Publisher) route(productType string) []Endpoint {
	if domain.KnownType(productType) {
		var matched []Endpoint
		for _, ep := range p.endpoints {
			if ep.Type == productType {
				matched = append(matched, ep)
			}
		}
		if len(matched) > 0 {
			return matched
		}
	}
	return p.endpoints
}

// snapshot arma el payload para una tienda puntual: precio web con recargo del
// 3% redondeado hacia arriba, y la imagen relativa resuelta contra la base de
// ese endpoint. Cada tienda sirve sus propios assets, por eso la URL absoluta
// se deriva por destino y no una sola vez.
func snapshot(prod *domain.Product, baseURL string) syncProduct {
	img := prod.Image
	if img != "" && !strings.HasPrefix(img, "http://") && !strings.HasPrefix(img, "https://") {
		img = strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(img, "/")
	}
	return syncProduct{
		SKU:      prod.SKU,
		Name:     prod.Name,
		Price:    math.Ceil(prod.PublicPrice * 1.03),
		Stock:    prod.Stock,
		Category: prod.Category,
		Type:     prod.Type,
		Image:    img,
		Status:   string(prod.Status),
	}
}

func (p *Publisher) push(ctx context.Context, ep Endpoint, payload syncProduct) error {
	buf, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	url := strings.TrimRight(ep.BaseURL, "/") + "/sync/products"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-sync-secret", p.secret)

	res, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("sync status %d: %s", res.StatusCode, string(body))
	}
	return nil
}
