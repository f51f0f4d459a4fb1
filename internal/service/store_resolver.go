package service

import (
	"github.com/mansoorceksport/retailermedia/internal/domain"
)

// StoreResolver maps store codes to their media base URL
type StoreResolver struct {
	stores      map[string]string
	defaultCode string
}

// NewStoreResolver creates a resolver; an empty code resolves to defaultCode
func NewStoreResolver(stores map[string]string, defaultCode string) *StoreResolver {
	return &StoreResolver{
		stores:      stores,
		defaultCode: defaultCode,
	}
}

// Resolve returns the store context for code
func (r *StoreResolver) Resolve(code string) (domain.StoreContext, error) {
	if code == "" {
		code = r.defaultCode
	}
	baseURL, ok := r.stores[code]
	if !ok || baseURL == "" {
		return domain.StoreContext{}, domain.NewConfigurationError("Store %q is not configured.", code)
	}
	return domain.StoreContext{Code: code, MediaBaseURL: baseURL}, nil
}
