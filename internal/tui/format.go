package tui

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jask/contratos/internal/api"
)

// formatMoney renders v the Brazilian way: "R$ 1.234,56".
func formatMoney(symbol string, v float64) string {
	s := decimal.NewFromFloat(v).StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	out := strings.TrimSpace(symbol + " " + b.String() + "," + frac)
	if neg {
		out = "-" + out
	}
	return out
}

func formatPercent(v float64) string {
	return strings.Replace(decimal.NewFromFloat(v).StringFixed(2), ".", ",", 1) + "%"
}

func formatDate(d api.Date, layout string) string {
	if d.IsZero() {
		return "-"
	}
	if layout == "" {
		layout = "2006-01-02"
	}
	return d.Format(layout)
}
