package supplier

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	domain "github.com/ComunidadDecidida/mayoristas/internal/domain/supplier"
)

// SYSCOM API endpoints
const (
	SyscomAPIBaseURL = "https://developers.syscom.mx/api/v1"
	SyscomTokenURL   = "https://developers.syscom.mx/oauth/token"
)

// Errors for SYSCOM configuration
var ErrSyscomConfigMissingBaseURL = errors.New("syscom: base url is required")

// SyscomConfig holds the SYSCOM API settings
type SyscomConfig struct {
	BaseURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
}

// NewSyscomConfig creates a SYSCOM configuration with production defaults
func NewSyscomConfig(clientID, clientSecret string) *SyscomConfig {
	return &SyscomConfig{
		BaseURL:      SyscomAPIBaseURL,
		TokenURL:     SyscomTokenURL,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Timeout:      30 * time.Second,
	}
}

// Validate checks the SYSCOM configuration
func (c *SyscomConfig) Validate() error {
	if c.BaseURL == "" {
		return ErrSyscomConfigMissingBaseURL
	}
	if c.ClientID == "" {
		return ErrMissingClientID
	}
	if c.ClientSecret == "" {
		return ErrMissingClientSecret
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	return nil
}

// syscomCategory is the SYSCOM category list payload
type syscomCategory struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
	Nivel  int    `json:"nivel"`
}

// syscomProductPage is one page of the SYSCOM product listing
type syscomProductPage struct {
	Paginas   int             `json:"paginas"`
	Pagina    int             `json:"pagina"`
	Productos []syscomProduct `json:"productos"`
}

type syscomProduct struct {
	ProductoID  int64            `json:"producto_id"`
	Modelo      string           `json:"modelo"`
	Titulo      string           `json:"titulo"`
	Descripcion string           `json:"descripcion"`
	Marca       string           `json:"marca"`
	Precios     syscomPrices     `json:"precios"`
	TotalExist  float64          `json:"total_existencia"`
	ImgPortada  string           `json:"img_portada"`
	Imagenes    []syscomImage    `json:"imagenes"`
	Categorias  []syscomCategory `json:"categorias"`
}

type syscomPrices struct {
	PrecioLista    float64 `json:"precio_lista"`
	PrecioEspecial float64 `json:"precio_especial"`
	PrecioDescto   float64 `json:"precio_descuento"`
}

type syscomImage struct {
	Imagen string `json:"imagen"`
}

// SyscomAdapter implements supplier.Gateway against the SYSCOM REST API
type SyscomAdapter struct {
	config *SyscomConfig
	client *apiClient
	logger *zap.Logger
}

// NewSyscomAdapter creates a SYSCOM gateway. The credential provider is
// injected so tests can bypass the OAuth exchange.
func NewSyscomAdapter(config *SyscomConfig, creds domain.CredentialProvider, limiter *RateLimiter, logger *zap.Logger) (*SyscomAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	httpClient := &http.Client{Timeout: config.Timeout}
	auth := func(req *http.Request, token string) {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return &SyscomAdapter{
		config: config,
		client: newAPIClient(httpClient, limiter, creds, auth, logger),
		logger: logger,
	}, nil
}

// Supplier returns the gateway's supplier code
func (a *SyscomAdapter) Supplier() domain.Code {
	return domain.CodeSyscom
}

// FetchCategories retrieves the full SYSCOM category tree
func (a *SyscomAdapter) FetchCategories(ctx context.Context) ([]domain.RawCategory, error) {
	var payload []syscomCategory
	if err := a.client.getJSON(ctx, a.config.BaseURL+"/categorias", &payload); err != nil {
		return nil, err
	}

	categories := make([]domain.RawCategory, 0, len(payload))
	for _, c := range payload {
		if c.ID == "" {
			continue
		}
		categories = append(categories, domain.RawCategory{
			ExternalID: c.ID,
			Name:       c.Nombre,
			Level:      c.Nivel,
		})
	}
	a.logger.Debug("syscom categories fetched", zap.Int("count", len(categories)))
	return categories, nil
}

// FetchProductsPage retrieves one page of a category listing. HasNext is
// derived from the page counters SYSCOM returns.
func (a *SyscomAdapter) FetchProductsPage(ctx context.Context, categoryID string, page int) (domain.ProductPage, error) {
	url := fmt.Sprintf("%s/productos?categoria=%s&pagina=%d&stock=true", a.config.BaseURL, categoryID, page)

	var payload syscomProductPage
	if err := a.client.getJSON(ctx, url, &payload); err != nil {
		return domain.ProductPage{}, err
	}

	products := make([]domain.RawProduct, 0, len(payload.Productos))
	for _, p := range payload.Productos {
		products = append(products, mapSyscomProduct(p))
	}
	return domain.ProductPage{
		Products: products,
		HasNext:  payload.Pagina < payload.Paginas && len(payload.Productos) > 0,
	}, nil
}

// mapSyscomProduct converts a SYSCOM payload item into the neutral raw
// record the normalizer consumes
func mapSyscomProduct(p syscomProduct) domain.RawProduct {
	special := p.Precios.PrecioEspecial
	if special <= 0 {
		special = p.Precios.PrecioDescto
	}

	images := make([]string, 0, len(p.Imagenes))
	for _, img := range p.Imagenes {
		images = append(images, img.Imagen)
	}

	categories := make([]domain.RawProductCategory, 0, len(p.Categorias))
	for _, c := range p.Categorias {
		categories = append(categories, domain.RawProductCategory{
			ID:    c.ID,
			Name:  c.Nombre,
			Level: c.Nivel,
		})
	}

	externalID := ""
	if p.ProductoID > 0 {
		externalID = fmt.Sprintf("%d", p.ProductoID)
	}

	return domain.RawProduct{
		Source:       domain.CodeSyscom,
		ExternalID:   externalID,
		SKU:          p.Modelo,
		Title:        p.Titulo,
		Description:  p.Descripcion,
		Brand:        p.Marca,
		ListPrice:    p.Precios.PrecioLista,
		SpecialPrice: special,
		Stock:        int(p.TotalExist),
		CoverImage:   p.ImgPortada,
		Images:       images,
		Categories:   categories,
	}
}
