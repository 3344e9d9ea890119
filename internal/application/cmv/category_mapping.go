package cmv

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Cubetas de costo del registro semanal.
const (
	BucketFood     = "food"
	BucketBeverage = "beverage"
	BucketDrinks   = "drinks"
	BucketOther    = "other"
)

// CategoryMapping tabla nombre de categoría del proveedor → cubeta de costo.
// La comparación ignora mayúsculas, acentos y espacios repetidos.
type CategoryMapping struct {
	buckets map[string]string
}

// NewCategoryMapping construye la tabla desde las listas de nombres por cubeta.
func NewCategoryMapping(food, beverage, drinks []string) *CategoryMapping {
	m := &CategoryMapping{buckets: make(map[string]string)}
	for bucket, names := range map[string][]string{
		BucketFood:     food,
		BucketBeverage: beverage,
		BucketDrinks:   drinks,
	} {
		for _, n := range names {
			if key := NormalizeCategory(n); key != "" {
				m.buckets[key] = bucket
			}
		}
	}
	return m
}

// Bucket devuelve la cubeta del nombre; BucketOther si no está mapeado.
func (m *CategoryMapping) Bucket(categoryName string) string {
	if b, ok := m.buckets[NormalizeCategory(categoryName)]; ok {
		return b
	}
	return BucketOther
}

// NormalizeCategory: minúsculas, sin diacríticos, espacios colapsados.
// "Alimentação  Funcionários" → "alimentacao funcionarios".
func NormalizeCategory(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, name)
	if err != nil {
		out = name
	}
	return strings.ToLower(strings.Join(strings.Fields(out), " "))
}
