package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ComunidadDecidida/mayoristas/internal/domain/settings"
	"github.com/ComunidadDecidida/mayoristas/internal/domain/shared"
	"github.com/ComunidadDecidida/mayoristas/internal/domain/supplier"
	"github.com/shopspring/decimal"
)

// Defaults applied when a key has never been set
var (
	defaultMarkupPercent = decimal.NewFromInt(20)
	defaultIVARate       = decimal.NewFromInt(16)
)

// Service exposes typed access to the system configuration store. The
// admin panel writes through it and the sync pipeline reads through it.
type Service struct {
	repo settings.Repository
}

// NewService creates a settings service
func NewService(repo settings.Repository) *Service {
	return &Service{repo: repo}
}

// MarkupMode returns the configured pricing mode, defaulting to global
func (s *Service) MarkupMode(ctx context.Context) (settings.MarkupMode, error) {
	value, err := s.get(ctx, settings.KeyMarkupMode)
	if err != nil {
		return "", err
	}
	if value == "" {
		return settings.MarkupGlobal, nil
	}
	mode := settings.MarkupMode(value)
	if !mode.IsValid() {
		return settings.MarkupGlobal, nil
	}
	return mode, nil
}

// SetMarkupMode stores the pricing mode
func (s *Service) SetMarkupMode(ctx context.Context, mode settings.MarkupMode) error {
	if !mode.IsValid() {
		return shared.NewDomainError("INVALID_MARKUP_MODE", "Markup mode must be global or personalized")
	}
	return s.repo.Set(ctx, settings.KeyMarkupMode, string(mode))
}

// GlobalMarkupPercent returns the flat markup percentage
func (s *Service) GlobalMarkupPercent(ctx context.Context) (decimal.Decimal, error) {
	return s.getDecimal(ctx, settings.KeyGlobalMarkupPercent, defaultMarkupPercent)
}

// SetGlobalMarkupPercent stores the flat markup percentage
func (s *Service) SetGlobalMarkupPercent(ctx context.Context, pct decimal.Decimal) error {
	if pct.IsNegative() {
		return shared.NewDomainError("INVALID_MARKUP", "Markup percentage cannot be negative")
	}
	return s.repo.Set(ctx, settings.KeyGlobalMarkupPercent, pct.String())
}

// ExchangeRate returns the configured MXN per USD rate
func (s *Service) ExchangeRate(ctx context.Context) (decimal.Decimal, error) {
	return s.getDecimal(ctx, settings.KeyExchangeRateMXNUSD, decimal.Zero)
}

// SetExchangeRate stores the MXN per USD rate
func (s *Service) SetExchangeRate(ctx context.Context, rate decimal.Decimal) error {
	if !rate.IsPositive() {
		return shared.NewDomainError("INVALID_RATE", "Exchange rate must be positive")
	}
	return s.repo.Set(ctx, settings.KeyExchangeRateMXNUSD, rate.String())
}

// IVARate returns the configured tax rate percentage
func (s *Service) IVARate(ctx context.Context) (decimal.Decimal, error) {
	return s.getDecimal(ctx, settings.KeyIVARate, defaultIVARate)
}

// SetIVARate stores the tax rate percentage
func (s *Service) SetIVARate(ctx context.Context, rate decimal.Decimal) error {
	if rate.IsNegative() {
		return shared.NewDomainError("INVALID_RATE", "Tax rate cannot be negative")
	}
	return s.repo.Set(ctx, settings.KeyIVARate, rate.String())
}

// CategorySelection returns the configured selection for one supplier,
// defaulting to "all"
func (s *Service) CategorySelection(ctx context.Context, code supplier.Code) (supplier.CategorySelection, error) {
	if !code.IsValid() {
		return supplier.CategorySelection{}, supplier.ErrUnknownSupplier
	}

	selection := supplier.CategorySelection{Mode: supplier.SelectionAll}

	modeValue, err := s.get(ctx, settings.SupplierKey(settings.KeyCategorySelectionMode, code.String()))
	if err != nil {
		return supplier.CategorySelection{}, err
	}
	if modeValue == string(supplier.SelectionSelected) {
		selection.Mode = supplier.SelectionSelected
	}

	idsValue, err := s.get(ctx, settings.SupplierKey(settings.KeySelectedCategories, code.String()))
	if err != nil {
		return supplier.CategorySelection{}, err
	}
	if idsValue != "" {
		if err := json.Unmarshal([]byte(idsValue), &selection.IDs); err != nil {
			return supplier.CategorySelection{}, fmt.Errorf("settings: corrupt category selection for %s: %w", code, err)
		}
	}
	return selection, nil
}

// SetCategorySelection stores the selection for one supplier
func (s *Service) SetCategorySelection(ctx context.Context, code supplier.Code, selection supplier.CategorySelection) error {
	if !code.IsValid() {
		return supplier.ErrUnknownSupplier
	}
	if selection.Mode != supplier.SelectionAll && selection.Mode != supplier.SelectionSelected {
		return shared.NewDomainError("INVALID_SELECTION_MODE", "Selection mode must be all or selected")
	}
	if selection.Mode == supplier.SelectionSelected && len(selection.IDs) == 0 {
		return shared.NewDomainError("EMPTY_SELECTION", "Selected mode requires at least one category")
	}

	ids, err := json.Marshal(selection.IDs)
	if err != nil {
		return err
	}
	if err := s.repo.Set(ctx, settings.SupplierKey(settings.KeyCategorySelectionMode, code.String()), string(selection.Mode)); err != nil {
		return err
	}
	return s.repo.Set(ctx, settings.SupplierKey(settings.KeySelectedCategories, code.String()), string(ids))
}

// All returns every stored setting, for the admin config screen
func (s *Service) All(ctx context.Context) ([]settings.Setting, error) {
	return s.repo.GetAll(ctx)
}

// Set writes an arbitrary key. Known keys go through the typed setters;
// this exists for forward-compatible admin tooling.
func (s *Service) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return shared.NewDomainError("MISSING_KEY", "Setting key is required")
	}
	return s.repo.Set(ctx, key, value)
}

// get reads a key, mapping not-found to the empty string
func (s *Service) get(ctx context.Context, key string) (string, error) {
	setting, err := s.repo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return setting.Value, nil
}

func (s *Service) getDecimal(ctx context.Context, key string, fallback decimal.Decimal) (decimal.Decimal, error) {
	value, err := s.get(ctx, key)
	if err != nil {
		return decimal.Zero, err
	}
	if value == "" {
		return fallback, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return fallback, nil
	}
	return d, nil
}
