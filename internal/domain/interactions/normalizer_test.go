package interactions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCaseAndWhitespace(t *testing.T) {
	assert.Equal(t, "warfarin", Normalize("  Warfarin "))
	assert.Equal(t, "warfarin", Normalize("WARFARIN"))
	assert.Equal(t, Normalize("  Warfarin "), Normalize("WARFARIN"))
}

func TestNormalizeBrands(t *testing.T) {
	cases := map[string]string{
		"Coumadin":    "warfarin",
		"Advil":       "ibuprofen",
		" motrin ":    "ibuprofen",
		"Tylenol":     "acetaminophen",
		"paracetamol": "acetaminophen",
		"Plavix":      "clopidogrel",
	}
	for in, want := range cases {
		assert.Equal(t, want, Normalize(in), in)
	}
}

func TestNormalizeTrailingRepeatTypo(t *testing.T) {
	assert.Equal(t, "ibuprofen", Normalize("ibuprofenn"))
	assert.Equal(t, "ibuprofen", Normalize("Ibuprofenn "))
	assert.Equal(t, "warfarin", Normalize("warfarinn"))
	assert.Equal(t, "ibuprofen", Normalize("advill"))

	// solo se corrige si el resultado es conocido
	assert.Equal(t, "vitamin cc", Normalize("Vitamin CC"))
	assert.Equal(t, "foo", Normalize("foo"))
	// una sola letra extra, no varias
	assert.Equal(t, "ibuprofennn", Normalize("ibuprofennn"))
}

func TestNormalizeDiacritics(t *testing.T) {
	assert.Equal(t, "acetaminophen", Normalize("Paracétamol"))
	assert.Equal(t, "ibuprofen", Normalize("ibuprofén"))
	// desconocidos conservan sus acentos
	assert.Equal(t, "crème", Normalize("Crème"))
}

func TestNormalizeUnknownPassesThrough(t *testing.T) {
	assert.Equal(t, "zzz-unknown 5mg", Normalize(" ZZZ-Unknown 5mg "))
	assert.Equal(t, "", Normalize("   "))
	assert.Equal(t, "", Normalize(""))
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"", " ", "Warfarin", "COUMADIN", "ibuprofenn", "advill", "Paracétamol",
		"Crème", "unknown drug", "aa", "ZZ", "İstanbul", "ß", "ibuprofennn",
		"lisinopril 10mg", "\tAdvil\n", "ññ", "metforminn",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestRecognitionAndCategory(t *testing.T) {
	assert.True(t, IsRecognized("warfarin"))
	assert.Equal(t, "Anticoagulant", Category("warfarin"))
	assert.Equal(t, "NSAID", Category(Normalize("Advil")))

	assert.False(t, IsRecognized("coumadin"), "brands are not canonical ids")
	assert.False(t, IsRecognized("unknown"))
	assert.Equal(t, CategoryUnknown, Category("unknown"))
}

func TestCatalogIsSortedCopy(t *testing.T) {
	c := Catalog()
	for i := 1; i < len(c); i++ {
		assert.Less(t, c[i-1].Name, c[i].Name)
	}

	c[0].Brands[0] = "mutated"
	assert.NotEqual(t, "mutated", Catalog()[0].Brands[0])
}
