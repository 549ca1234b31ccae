package money

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	s := Format(decimal.RequireFromString("1234567.5"))
	assert.True(t, strings.HasPrefix(s, "$ "), s)
	assert.True(t, strings.HasSuffix(s, ",50"), s)
	assert.NotContains(t, s, "1234567")
}

func TestFormat_Rounds(t *testing.T) {
	s := Format(decimal.RequireFromString("10.005"))
	assert.True(t, strings.HasSuffix(s, ",01"), s)
}
