package roster_test

import (
	"testing"

	"github.com/dalemusser/pastoralhub/internal/app/features/shared/roster"
	"github.com/dalemusser/pastoralhub/internal/domain/models"
	"github.com/stretchr/testify/assert"
)

func TestResolve_DropsDangling(t *testing.T) {
	idx := roster.NewIndex([]models.Member{
		{ID: "a", Name: "Ana"},
		{ID: "b", Name: "Bia"},
	})

	got := idx.Resolve([]string{"b", "gone", "a"})

	assert.Equal(t, []roster.Participant{{ID: "b", Name: "Bia"}, {ID: "a", Name: "Ana"}}, got)
	assert.Equal(t, []string{"gone"}, idx.Unknown([]string{"b", "gone", "a"}))
}

func TestResolve_Empty(t *testing.T) {
	got := roster.NewIndex(nil).Resolve(nil)

	assert.NotNil(t, got)
	assert.Empty(t, got)
}
