package supplier

import (
	domain "github.com/ComunidadDecidida/mayoristas/internal/domain/supplier"
)

// Registry maps supplier codes to their gateway implementations
type Registry struct {
	gateways map[domain.Code]domain.Gateway
}

// NewRegistry creates a registry from the given gateways
func NewRegistry(gateways ...domain.Gateway) *Registry {
	byCode := make(map[domain.Code]domain.Gateway, len(gateways))
	for _, g := range gateways {
		byCode[g.Supplier()] = g
	}
	return &Registry{gateways: byCode}
}

// Get returns the gateway for a code
func (r *Registry) Get(code domain.Code) (domain.Gateway, error) {
	gateway, ok := r.gateways[code]
	if !ok {
		return nil, domain.ErrUnknownSupplier
	}
	return gateway, nil
}

// Gateways returns the full code to gateway map, for the orchestrator
func (r *Registry) Gateways() map[domain.Code]domain.Gateway {
	return r.gateways
}
