package usecase

import (
	"strings"

	"github.com/shopspring/decimal"
)

// parseActive interpreta ?active=: "true", "false" o "all". Vacío o desconocido toma def (nil = todos).
func parseActive(s string, def *bool) *bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		v := true
		return &v
	case "false":
		v := false
		return &v
	case "all":
		return nil
	}
	return def
}

func boolPtr(b bool) *bool {
	return &b
}

func parseDecimal(s string) *decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	return &d
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
