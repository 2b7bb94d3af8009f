package service

import (
	"AssetCarePlatform/internal/domain"
	"AssetCarePlatform/pkg/errors"
)

// FirstAvailableAllocator выбирает первого доступного исполнителя.
// Базовая стратегия без балансировки нагрузки.
type FirstAvailableAllocator struct{}

// NewFirstAvailableAllocator создает новый FirstAvailableAllocator
func NewFirstAvailableAllocator() *FirstAvailableAllocator {
	return &FirstAvailableAllocator{}
}

// SelectTechnician возвращает первого доступного кандидата
func (a *FirstAvailableAllocator) SelectTechnician(candidates []*domain.Technician) (string, error) {
	for _, candidate := range candidates {
		if candidate != nil && candidate.Available {
			return candidate.ID, nil
		}
	}

	return "", errors.New(errors.ErrNotFound, "no available technician for the required role")
}
