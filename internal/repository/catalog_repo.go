package repository

import (
	"sync"

	"github.com/atiapp/inviteboard/internal/model"
)

// CatalogMemoryRepo is the client-side person cache. Replace swaps in a fully
// built map, so readers never observe a half-updated catalog.
type CatalogMemoryRepo struct {
	mx    sync.RWMutex
	byID  map[uint]*model.Person
	items []*model.Person
}

func NewCatalogMemoryRepo() *CatalogMemoryRepo {
	return &CatalogMemoryRepo{
		byID: make(map[uint]*model.Person),
	}
}

func (r *CatalogMemoryRepo) Replace(items []*model.Person) {
	byID := make(map[uint]*model.Person, len(items))

	for _, p := range items {
		if p != nil {
			byID[p.ID] = p
		}
	}

	r.mx.Lock()
	defer r.mx.Unlock()

	r.byID = byID
	r.items = items
}

func (r *CatalogMemoryRepo) Lookup(id uint) *model.Person {
	r.mx.RLock()
	defer r.mx.RUnlock()

	return r.byID[id]
}

func (r *CatalogMemoryRepo) List() []*model.Person {
	r.mx.RLock()
	defer r.mx.RUnlock()

	return r.items
}

func (r *CatalogMemoryRepo) Len() int {
	r.mx.RLock()
	defer r.mx.RUnlock()

	return len(r.byID)
}

func (r *CatalogMemoryRepo) ForEach(f func(p *model.Person) bool) {
	for _, p := range r.List() {
		if !f(p) {
			return
		}
	}
}
