package supplier

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	domain "github.com/ComunidadDecidida/mayoristas/internal/domain/supplier"
)

// TecnosinergiaAPIBaseURL is the production API endpoint
const TecnosinergiaAPIBaseURL = "https://ws.tecnosinergia.com/api/v2"

// Errors for TECNOSINERGIA configuration
var ErrTecnosinergiaConfigMissingBaseURL = errors.New("tecnosinergia: base url is required")

// TecnosinergiaConfig holds the TECNOSINERGIA API settings
type TecnosinergiaConfig struct {
	BaseURL  string
	APIToken string
	Timeout  time.Duration
	// PageSize is how many items the feed returns per page
	PageSize int
}

// NewTecnosinergiaConfig creates a configuration with production defaults
func NewTecnosinergiaConfig(apiToken string) *TecnosinergiaConfig {
	return &TecnosinergiaConfig{
		BaseURL:  TecnosinergiaAPIBaseURL,
		APIToken: apiToken,
		Timeout:  30 * time.Second,
		PageSize: 100,
	}
}

// Validate checks the TECNOSINERGIA configuration
func (c *TecnosinergiaConfig) Validate() error {
	if c.BaseURL == "" {
		return ErrTecnosinergiaConfigMissingBaseURL
	}
	if c.APIToken == "" {
		return ErrMissingAPIKey
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.PageSize <= 0 {
		c.PageSize = 100
	}
	return nil
}

// tecnoCategory is one entry of the TECNOSINERGIA family list
type tecnoCategory struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
	Padre  string `json:"padre"`
}

// tecnoProductList is the product feed payload. The feed is a flat item
// list with a total; pages are cut client-side from the offset counters.
type tecnoProductList struct {
	Total     int            `json:"total"`
	Productos []tecnoProduct `json:"productos"`
}

type tecnoProduct struct {
	Clave        string   `json:"clave"`
	Modelo       string   `json:"modelo"`
	Nombre       string   `json:"nombre"`
	Descripcion  string   `json:"descripcion"`
	Marca        string   `json:"marca"`
	Precio       float64  `json:"precio"`
	PrecioOferta float64  `json:"precio_oferta"`
	Existencia   int      `json:"existencia"`
	Imagen       string   `json:"imagen"`
	Galeria      []string `json:"galeria"`
	FamiliaID    string   `json:"familia_id"`
	Familia      string   `json:"familia"`
}

// TecnosinergiaAdapter implements supplier.Gateway against the
// TECNOSINERGIA feed API
type TecnosinergiaAdapter struct {
	config *TecnosinergiaConfig
	client *apiClient
	logger *zap.Logger
}

// NewTecnosinergiaAdapter creates a TECNOSINERGIA gateway
func NewTecnosinergiaAdapter(config *TecnosinergiaConfig, creds domain.CredentialProvider, limiter *RateLimiter, logger *zap.Logger) (*TecnosinergiaAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	httpClient := &http.Client{Timeout: config.Timeout}
	auth := func(req *http.Request, token string) {
		req.Header.Set("X-Api-Token", token)
	}
	return &TecnosinergiaAdapter{
		config: config,
		client: newAPIClient(httpClient, limiter, creds, auth, logger),
		logger: logger,
	}, nil
}

// Supplier returns the gateway's supplier code
func (a *TecnosinergiaAdapter) Supplier() domain.Code {
	return domain.CodeTecnosinergia
}

// FetchCategories retrieves the family list
func (a *TecnosinergiaAdapter) FetchCategories(ctx context.Context) ([]domain.RawCategory, error) {
	var payload []tecnoCategory
	if err := a.client.getJSON(ctx, a.config.BaseURL+"/familias", &payload); err != nil {
		return nil, err
	}

	categories := make([]domain.RawCategory, 0, len(payload))
	for _, c := range payload {
		if c.ID == "" {
			continue
		}
		level := 0
		if c.Padre != "" {
			level = 1
		}
		categories = append(categories, domain.RawCategory{
			ExternalID: c.ID,
			Name:       c.Nombre,
			Level:      level,
		})
	}
	a.logger.Debug("tecnosinergia families fetched", zap.Int("count", len(categories)))
	return categories, nil
}

// FetchProductsPage retrieves one page of a family listing
func (a *TecnosinergiaAdapter) FetchProductsPage(ctx context.Context, categoryID string, page int) (domain.ProductPage, error) {
	offset := (page - 1) * a.config.PageSize
	url := fmt.Sprintf("%s/productos?familia=%s&limite=%d&desde=%d",
		a.config.BaseURL, categoryID, a.config.PageSize, offset)

	var payload tecnoProductList
	if err := a.client.getJSON(ctx, url, &payload); err != nil {
		return domain.ProductPage{}, err
	}

	products := make([]domain.RawProduct, 0, len(payload.Productos))
	for _, p := range payload.Productos {
		products = append(products, mapTecnoProduct(p))
	}
	return domain.ProductPage{
		Products: products,
		HasNext:  offset+len(payload.Productos) < payload.Total && len(payload.Productos) > 0,
	}, nil
}

// mapTecnoProduct converts a feed item into the neutral raw record
func mapTecnoProduct(p tecnoProduct) domain.RawProduct {
	sku := p.Modelo
	if strings.TrimSpace(sku) == "" {
		sku = p.Clave
	}

	var categories []domain.RawProductCategory
	if p.FamiliaID != "" {
		categories = append(categories, domain.RawProductCategory{
			ID:   p.FamiliaID,
			Name: p.Familia,
		})
	}

	return domain.RawProduct{
		Source:       domain.CodeTecnosinergia,
		ExternalID:   p.Clave,
		SKU:          sku,
		Title:        p.Nombre,
		Description:  p.Descripcion,
		Brand:        p.Marca,
		ListPrice:    p.Precio,
		SpecialPrice: p.PrecioOferta,
		Stock:        p.Existencia,
		CoverImage:   p.Imagen,
		Images:       p.Galeria,
		Categories:   categories,
	}
}
