package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AssetCarePlatform/internal/domain"
	"AssetCarePlatform/pkg/errors"
)

func TestFirstAvailableAllocator(t *testing.T) {
	allocator := NewFirstAvailableAllocator()

	t.Run("picks the first available candidate", func(t *testing.T) {
		id, err := allocator.SelectTechnician([]*domain.Technician{
			{ID: "tech-1", Available: false},
			{ID: "tech-2", Available: true},
			{ID: "tech-3", Available: true},
		})

		require.NoError(t, err)
		assert.Equal(t, "tech-2", id)
	})

	t.Run("no available candidates", func(t *testing.T) {
		_, err := allocator.SelectTechnician([]*domain.Technician{
			{ID: "tech-1", Available: false},
		})

		assert.Equal(t, errors.ErrNotFound, errors.CodeOf(err))
	})

	t.Run("empty candidate list", func(t *testing.T) {
		_, err := allocator.SelectTechnician(nil)

		assert.Equal(t, errors.ErrNotFound, errors.CodeOf(err))
	})

	t.Run("nil entries are skipped", func(t *testing.T) {
		id, err := allocator.SelectTechnician([]*domain.Technician{
			nil,
			{ID: "tech-9", Available: true},
		})

		require.NoError(t, err)
		assert.Equal(t, "tech-9", id)
	})
}
