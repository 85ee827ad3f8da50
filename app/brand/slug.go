package brand

import "strings"

// Romanize rewrites known brand, product, place and golf terms to their slug
// forms. Rules are applied in document order so longer phrases win.
func (d *Data) Romanize(text string) string {
	for _, r := range d.SlugRules {
		text = strings.ReplaceAll(text, r.From, r.To)
	}
	return text
}
