package pricelist

import (
	"context"
	"errors"

	"github.com/harings-be/commerce-pricelist/internal/domain"
	"gorm.io/gorm"
)

// CatalogEntry is the resolved target of an item's purchased entity reference.
type CatalogEntry struct {
	ID    int64  `json:"id,string"`
	Type  string `json:"type"`
	Label string `json:"label"`
}

// PurchasedEntityResolver resolves purchased entity references for one bundle.
// The reference target type is fixed per bundle and bound at registration time,
// not looked up dynamically per call.
type PurchasedEntityResolver interface {
	Resolve(ctx context.Context, id int64) (*CatalogEntry, error)
}

// ResolverRegistry holds the purchased-entity resolver for each known bundle.
type ResolverRegistry struct {
	byBundle map[string]PurchasedEntityResolver
}

// NewResolverRegistry creates an empty registry.
func NewResolverRegistry() *ResolverRegistry {
	return &ResolverRegistry{byBundle: make(map[string]PurchasedEntityResolver)}
}

// Register binds a resolver to a bundle type. Called once at startup per bundle.
func (r *ResolverRegistry) Register(bundle string, resolver PurchasedEntityResolver) {
	r.byBundle[bundle] = resolver
}

// ResolverFor returns the resolver registered for the bundle, or ErrUnknownBundle.
func (r *ResolverRegistry) ResolverFor(bundle string) (PurchasedEntityResolver, error) {
	resolver, ok := r.byBundle[bundle]
	if !ok {
		return nil, ErrUnknownBundle
	}
	return resolver, nil
}

// HasBundle reports whether a resolver is registered for the bundle.
func (r *ResolverRegistry) HasBundle(bundle string) bool {
	_, ok := r.byBundle[bundle]
	return ok
}

// ProductResolver resolves "product" bundle references against the catalog table.
type ProductResolver struct {
	db *gorm.DB
}

// NewProductResolver creates a resolver over the product catalog.
func NewProductResolver(db *gorm.DB) *ProductResolver {
	return &ProductResolver{db: db}
}

func (r *ProductResolver) Resolve(ctx context.Context, id int64) (*CatalogEntry, error) {
	var product domain.Product
	err := r.db.WithContext(ctx).First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPurchasedEntityNotFound
	}
	if err != nil {
		return nil, err
	}
	return &CatalogEntry{ID: product.ID, Type: "product", Label: product.Name}, nil
}

// DefaultResolverRegistry returns a registry with the built-in bundles bound.
func DefaultResolverRegistry(db *gorm.DB) *ResolverRegistry {
	registry := NewResolverRegistry()
	registry.Register("product", NewProductResolver(db))
	return registry
}
