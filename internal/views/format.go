package views

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Count renders n with thousands separators.
func Count(n int) string { return printer.Sprintf("%d", n) }

// Money renders an order amount with separators and two decimals.
func Money(amount float64) string { return printer.Sprintf("$%.2f", amount) }

// Rating renders an average rating with one decimal.
func Rating(r float64) string { return printer.Sprintf("%.1f", r) }

// Funcs are the helpers registered on the template engine.
func Funcs() map[string]any {
	return map[string]any{
		"count":  Count,
		"money":  Money,
		"rating": Rating,
		"add":    func(a, b int) int { return a + b },
		"stars": func(r float64) []bool {
			out := make([]bool, 5)
			for i := range out {
				out[i] = float64(i)+0.5 <= r
			}
			return out
		},
	}
}
