package hclmodel

import (
	"context"
	"sync"

	"github.com/Omri-Jukin/Portfolio-sub003/core/types"
	"github.com/Omri-Jukin/Portfolio-sub003/internal/errors"
)

// FileSource serves a pricing file that is decoded again on every LoadModel.
// Discount lookups and redemptions go to the most recently loaded bundle; a
// failed reload leaves the previous bundle in place.
type FileSource struct {
	loader *Loader
	path   string

	mu     sync.RWMutex
	bundle *Bundle
}

// NewFileSource creates a source for path. Nothing is read until LoadModel.
func NewFileSource(loader *Loader, path string) *FileSource {
	return &FileSource{loader: loader, path: path}
}

// Path returns the pricing file path
func (s *FileSource) Path() string {
	return s.path
}

// LoadModel implements pricing.ModelSource by decoding the file again.
// Redemptions recorded in memory since the previous load are carried over.
func (s *FileSource) LoadModel(ctx context.Context) (*types.PricingModel, error) {
	next, err := s.loader.LoadFile(s.path)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bundle != nil {
		next.carryRedemptions(s.bundle)
	}
	s.bundle = next
	return next.Model(), nil
}

// FindDiscount implements pricing.DiscountRepository
func (s *FileSource) FindDiscount(ctx context.Context, code string) (*types.Discount, error) {
	b, err := s.current()
	if err != nil {
		return nil, err
	}
	return b.FindDiscount(ctx, code)
}

// RecordRedemption implements pricing.Redeemer
func (s *FileSource) RecordRedemption(ctx context.Context, code string) error {
	b, err := s.current()
	if err != nil {
		return err
	}
	return b.RecordRedemption(ctx, code)
}

func (s *FileSource) current() (*Bundle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.bundle == nil {
		return nil, errors.Config("pricing file has not been loaded").WithContext("path", s.path)
	}
	return s.bundle, nil
}
