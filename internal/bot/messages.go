package bot

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"sjsage522/divulgador/internal/product"
)

const (
	msgWelcome = "👋 Olá! Sou o bot Divulgador. Posso ajudar você a:\n\n" +
		"🔍 Buscar produtos na Shopee\n" +
		"📦 Ver os detalhes de um produto a partir do link\n\n" +
		"Use /help para ver todos os comandos disponíveis!"

	msgHelp = "📌 Comandos disponíveis:\n\n" +
		"/buscar [termo] - Busca produtos na Shopee\n" +
		"/produto [link] - Mostra os detalhes de um produto\n\n" +
		"Você também pode enviar o link de um produto diretamente."

	msgAskTerm        = "Por favor, forneça um termo para busca!"
	msgAskLink        = "Por favor, envie o link de um produto da Shopee!"
	msgNotFound       = "Nenhum produto encontrado!"
	msgSearchError    = "Erro ao buscar produtos. Tente novamente!"
	msgLinkNotValid   = "Não reconheci esse link. Envie um link de produto da Shopee!"
	msgUnknownCommand = "Comando desconhecido. Use /help para ver os comandos disponíveis."
)

// formatPrice renders a price as Brazilian reais, e.g. "R$ 1.299,90"
func formatPrice(d decimal.Decimal) string {
	fixed := d.StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	negative := strings.HasPrefix(intPart, "-")
	intPart = strings.TrimPrefix(intPart, "-")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}

	sign := ""
	if negative {
		sign = "-"
	}
	return fmt.Sprintf("R$ %s%s,%s", sign, b.String(), frac)
}

// renderProduct is the detail reply for one product
func renderProduct(p *product.Product) string {
	var b strings.Builder

	fmt.Fprintf(&b, "📦 %s\n", p.Name)
	fmt.Fprintf(&b, "💰 %s", formatPrice(p.Price))
	if p.OriginalPrice.GreaterThan(p.Price) {
		fmt.Fprintf(&b, " (de %s, -%d%%)", formatPrice(p.OriginalPrice), p.DiscountPercent)
	}
	b.WriteString("\n")

	if p.Rating > 0 {
		fmt.Fprintf(&b, "⭐ %.1f (%d avaliações)\n", p.Rating, p.RatingCount)
	}
	if p.SalesCount > 0 {
		fmt.Fprintf(&b, "🛒 %d vendidos\n", p.SalesCount)
	}
	if p.ShopName != "" {
		fmt.Fprintf(&b, "🏪 %s\n", p.ShopName)
	}
	fmt.Fprintf(&b, "🔗 %s", p.Link)

	return b.String()
}

// renderSearch is the reply for a search result list
func renderSearch(results []product.Summary) string {
	var b strings.Builder

	b.WriteString("🔍 Resultados encontrados:\n\n")
	for _, s := range results {
		fmt.Fprintf(&b, "📦 %s\n", s.Name)
		fmt.Fprintf(&b, "💰 %s\n", formatPrice(s.Price))
		fmt.Fprintf(&b, "🔗 %s\n\n", s.Link)
	}

	return strings.TrimRight(b.String(), "\n")
}
