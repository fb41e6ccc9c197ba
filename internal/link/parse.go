// Package link turns user supplied text into a product reference.
package link

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"sjsage522/divulgador/internal/product"
	apperrors "sjsage522/divulgador/pkg/errors"
)

const source = "link"

// trailingPunct is stripped from the end of a candidate link
const trailingPunct = ".,;:!?)]}>\"'"

// marketplaceHost marks a token as a marketplace link even without a scheme
const marketplaceHost = "shopee."

// pattern is one positional link format. Patterns are tried in order and the
// first match whose captures parse as ids wins.
type pattern struct {
	name string
	re   *regexp.Regexp
}

var patterns = []pattern{
	{name: "dotted-i", re: regexp.MustCompile(`(?:^|/)i\.([^./?#]+)\.([^./?#]+)`)},
	{name: "slash-product", re: regexp.MustCompile(`/product/([^/?#]+)/([^/?#]+)`)},
	{name: "hyphen-i", re: regexp.MustCompile(`-i\.([^./?#]+)\.([^./?#]+)`)},
	{name: "trailing-dotted", re: regexp.MustCompile(`\.([^./?#]+)\.([^./?#]+)/?$`)},
	// also accepts a bare "<shop>-<item>" pair sent without a link
	{name: "trailing-ints", re: regexp.MustCompile(`(\d+)\D+(\d+)/?$`)},
}

// query parameter names consulted when no positional pattern matches
var queryKeys = [][2]string{
	{"shop_id", "item_id"},
	{"shopid", "itemid"},
}

// Parse extracts the product reference from a single link without any
// network access.
func Parse(raw string) (product.Ref, error) {
	candidate := strings.TrimRight(strings.TrimSpace(raw), trailingPunct)
	if candidate == "" {
		return product.Ref{}, apperrors.NewNormalization(source, "empty link", nil)
	}

	path, query := splitQuery(candidate)
	path = decodePath(stripHost(path))

	for _, p := range patterns {
		m := p.re.FindStringSubmatch(path)
		if m == nil {
			continue
		}
		if ref, ok := refFrom(m[1], m[2]); ok {
			return ref, nil
		}
	}

	if ref, ok := refFromQuery(query); ok {
		return ref, nil
	}

	return product.Ref{}, apperrors.NewNormalization(source, "no product ids in link "+candidate, nil)
}

// Candidate picks the link out of free text. The first token with a scheme
// or a known host wins; a lone token is returned as is. hosts lists extra
// host names (the short link domains) recognized without a scheme.
func Candidate(text string, hosts []string) string {
	fields := strings.Fields(text)
	for _, field := range fields {
		token := strings.TrimRight(field, trailingPunct)
		if strings.Contains(token, "://") {
			return token
		}
		if hasKnownHost(token, hosts) {
			return "https://" + token
		}
	}

	if len(fields) == 1 {
		return strings.TrimRight(fields[0], trailingPunct)
	}
	return ""
}

// HasLink reports whether text contains a token that looks like a link.
func HasLink(text string, hosts []string) bool {
	for _, field := range strings.Fields(text) {
		if strings.Contains(field, "://") || hasKnownHost(field, hosts) {
			return true
		}
	}
	return false
}

func hasKnownHost(token string, hosts []string) bool {
	lower := strings.ToLower(token)
	if strings.Contains(lower, marketplaceHost) {
		return true
	}
	for _, host := range hosts {
		if strings.HasPrefix(lower, host+"/") || lower == host || strings.HasPrefix(lower, "www."+host) {
			return true
		}
	}
	return false
}

// splitQuery separates the path part from the query, dropping any fragment
func splitQuery(s string) (string, string) {
	if i := strings.IndexByte(s, '#'); i >= 0 {
		s = s[:i]
	}
	if i := strings.IndexByte(s, '?'); i >= 0 {
		return s[:i], s[i+1:]
	}
	return s, ""
}

// stripHost drops "scheme://host" so host names never feed the patterns
func stripHost(s string) string {
	i := strings.Index(s, "://")
	if i < 0 {
		return s
	}
	rest := s[i+3:]
	if j := strings.IndexByte(rest, '/'); j >= 0 {
		return rest[j:]
	}
	return ""
}

// decodePath unescapes at most twice so double encoded links match
func decodePath(p string) string {
	for i := 0; i < 2; i++ {
		decoded, err := url.PathUnescape(p)
		if err != nil || decoded == p {
			break
		}
		p = decoded
	}
	return p
}

func refFromQuery(query string) (product.Ref, bool) {
	if query == "" {
		return product.Ref{}, false
	}
	// ParseQuery keeps the well formed pairs when it reports an error
	values, _ := url.ParseQuery(query)
	for _, keys := range queryKeys {
		if ref, ok := refFrom(values.Get(keys[0]), values.Get(keys[1])); ok {
			return ref, true
		}
	}
	return product.Ref{}, false
}

func refFrom(shop, item string) (product.Ref, bool) {
	shopID, ok := parseID(shop)
	if !ok {
		return product.Ref{}, false
	}
	itemID, ok := parseID(item)
	if !ok {
		return product.Ref{}, false
	}
	ref, err := product.NewRef(shopID, itemID)
	return ref, err == nil
}

// parseID accepts plain decimal digits that fit in an int64
func parseID(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseUint(s, 10, 63)
	if err != nil {
		return 0, false
	}
	return int64(v), true
}
