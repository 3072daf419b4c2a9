package interactions

import "sort"

const CategoryUnknown = "Unknown"

// DrugInfo describe un genérico del catálogo canónico y sus marcas conocidas.
type DrugInfo struct {
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Brands   []string `json:"brands"`
}

// Catálogo canónico (genéricos en minúscula). Las marcas también en minúscula.
var catalog = []DrugInfo{
	{Name: "warfarin", Category: "Anticoagulant", Brands: []string{"coumadin", "jantoven"}},
	{Name: "ibuprofen", Category: "NSAID", Brands: []string{"advil", "motrin", "nurofen"}},
	{Name: "aspirin", Category: "NSAID", Brands: []string{"bayer", "ecotrin", "disprin"}},
	{Name: "naproxen", Category: "NSAID", Brands: []string{"aleve", "naprosyn"}},
	{Name: "acetaminophen", Category: "Analgesic", Brands: []string{"tylenol", "panadol", "paracetamol", "calpol"}},
	{Name: "metformin", Category: "Antidiabetic", Brands: []string{"glucophage"}},
	{Name: "lisinopril", Category: "ACE Inhibitor", Brands: []string{"zestril", "prinivil"}},
	{Name: "spironolactone", Category: "Potassium-Sparing Diuretic", Brands: []string{"aldactone"}},
	{Name: "simvastatin", Category: "Statin", Brands: []string{"zocor"}},
	{Name: "atorvastatin", Category: "Statin", Brands: []string{"lipitor"}},
	{Name: "clarithromycin", Category: "Macrolide Antibiotic", Brands: []string{"biaxin"}},
	{Name: "ciprofloxacin", Category: "Fluoroquinolone Antibiotic", Brands: []string{"cipro"}},
	{Name: "sertraline", Category: "SSRI", Brands: []string{"zoloft"}},
	{Name: "fluoxetine", Category: "SSRI", Brands: []string{"prozac"}},
	{Name: "phenelzine", Category: "MAOI", Brands: []string{"nardil"}},
	{Name: "tramadol", Category: "Opioid Analgesic", Brands: []string{"ultram"}},
	{Name: "sildenafil", Category: "PDE5 Inhibitor", Brands: []string{"viagra", "revatio"}},
	{Name: "nitroglycerin", Category: "Nitrate", Brands: []string{"nitrostat"}},
	{Name: "clopidogrel", Category: "Antiplatelet", Brands: []string{"plavix"}},
	{Name: "omeprazole", Category: "Proton Pump Inhibitor", Brands: []string{"prilosec", "losec"}},
	{Name: "digoxin", Category: "Cardiac Glycoside", Brands: []string{"lanoxin"}},
	{Name: "amiodarone", Category: "Antiarrhythmic", Brands: []string{"cordarone", "pacerone"}},
	{Name: "levothyroxine", Category: "Thyroid Hormone", Brands: []string{"synthroid", "levoxyl", "eltroxin"}},
	{Name: "amoxicillin", Category: "Penicillin Antibiotic", Brands: []string{"amoxil"}},
}

// Índices de solo lectura; se construyen una vez y nunca se mutan.
var (
	canonical  = map[string]DrugInfo{}
	brandIndex = map[string]string{}
)

func init() {
	for _, d := range catalog {
		canonical[d.Name] = d
		for _, b := range d.Brands {
			brandIndex[b] = d.Name
		}
	}
}

// IsRecognized indica si el nombre (ya normalizado) está en el catálogo canónico.
func IsRecognized(normalized string) bool {
	_, ok := canonical[normalized]
	return ok
}

// Category devuelve la clase terapéutica o "Unknown".
func Category(normalized string) string {
	if d, ok := canonical[normalized]; ok {
		return d.Category
	}
	return CategoryUnknown
}

// Catalog devuelve una copia ordenada por nombre.
func Catalog() []DrugInfo {
	out := make([]DrugInfo, 0, len(catalog))
	for _, d := range catalog {
		brands := append([]string(nil), d.Brands...)
		out = append(out, DrugInfo{Name: d.Name, Category: d.Category, Brands: brands})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
