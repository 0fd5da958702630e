// Package mocks provides generated mocks for testing the workflow bridge.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for
// the core repository interfaces. Regenerate after interface changes with:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	repo := mocks.NewMockCacheRepository(ctrl)
//	repo.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
package mocks

// Generate mock for CacheRepository from internal/core:
// Set, Get, GetDelete, Delete, Health
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=cache_repository_mock.go github.com/leadgrid/workflow-bridge/internal/core CacheRepository
