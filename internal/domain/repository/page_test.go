package repository_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/pos-api/internal/domain/repository"
)

func TestNewPage_Acota(t *testing.T) {
	cases := []struct {
		number, limit         int
		wantNumber, wantLimit int
	}{
		{0, 0, 1, 25},
		{-3, -5, 1, 1},
		{2, 500, 2, 100},
		{4, 10, 4, 10},
	}
	for _, tc := range cases {
		p := repository.NewPage(tc.number, tc.limit)
		assert.Equal(t, tc.wantNumber, p.Number)
		assert.Equal(t, tc.wantLimit, p.Limit)
	}
}

func TestPage_SegundaPaginaDeTreinta(t *testing.T) {
	p := repository.NewPage(2, 25)
	assert.Equal(t, 25, p.Offset())
	assert.Equal(t, 2, p.Pages(30))
	assert.Equal(t, 5, 30-p.Offset(), "la segunda página contiene las 5 filas restantes")
}

func TestPage_PagesSinFilas(t *testing.T) {
	assert.Equal(t, 0, repository.NewPage(1, 25).Pages(0))
	assert.Equal(t, 1, repository.NewPage(1, 25).Pages(25))
	assert.Equal(t, 2, repository.NewPage(1, 25).Pages(26))
}

func TestPage_NumeroEnormeNoDesborda(t *testing.T) {
	p := repository.NewPage(100000000000000000, 100)
	assert.GreaterOrEqual(t, p.Offset(), 0)
	assert.Equal(t, math.MaxInt/100, p.Number)

	p = repository.NewPage(math.MaxInt, 0)
	assert.GreaterOrEqual(t, p.Offset(), 0)
}
