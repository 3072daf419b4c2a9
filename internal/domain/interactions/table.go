package interactions

// InteractionInfo es lo que la tabla estática sabe de un par.
type InteractionInfo struct {
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
	Advice      string   `json:"advice"`
}

// Rule es una entrada curada de la tabla.
type Rule struct {
	Drug1 string `json:"drug1"`
	Drug2 string `json:"drug2"`
	InteractionInfo
}

// Table es inmutable después de NewTable; lecturas concurrentes sin lock.
type Table struct {
	rules []Rule
	pairs map[[2]string]InteractionInfo
}

// NewTable guarda cada par en el orden en que viene la regla. Si el mismo par aparece
// dos veces (en cualquier orden) gana la primera.
func NewTable(rules []Rule) *Table {
	t := &Table{
		rules: make([]Rule, 0, len(rules)),
		pairs: make(map[[2]string]InteractionInfo, len(rules)),
	}
	for _, r := range rules {
		a, b := Normalize(r.Drug1), Normalize(r.Drug2)
		if a == "" || b == "" || a == b {
			continue
		}
		if _, ok := t.lookup(a, b); ok {
			continue
		}
		t.pairs[[2]string{a, b}] = r.InteractionInfo
		t.rules = append(t.rules, Rule{Drug1: a, Drug2: b, InteractionInfo: r.InteractionInfo})
	}
	return t
}

// Lookup es simétrico: prueba (a,b) y (b,a).
func (t *Table) Lookup(a, b string) (InteractionInfo, bool) {
	if t == nil {
		return InteractionInfo{}, false
	}
	return t.lookup(a, b)
}

func (t *Table) lookup(a, b string) (InteractionInfo, bool) {
	if info, ok := t.pairs[[2]string{a, b}]; ok {
		return info, true
	}
	info, ok := t.pairs[[2]string{b, a}]
	return info, ok
}

// Rules devuelve una copia en orden de construcción.
func (t *Table) Rules() []Rule {
	return append([]Rule(nil), t.rules...)
}

func (t *Table) Len() int {
	return len(t.rules)
}

// DefaultTable es el set curado de pares de alto valor.
func DefaultTable() *Table {
	return NewTable(defaultRules)
}

var defaultRules = []Rule{
	{Drug1: "warfarin", Drug2: "ibuprofen", InteractionInfo: InteractionInfo{
		Severity:    SeverityHigh,
		Description: "NSAID-induced displacement of warfarin and anti-platelet effect.",
		Advice:      "Taking Warfarin and Ibuprofen together creates a major risk of internal bleeding.",
	}},
	{Drug1: "warfarin", Drug2: "aspirin", InteractionInfo: InteractionInfo{
		Severity:    SeverityHigh,
		Description: "Additive anticoagulant and antiplatelet effect with gastric mucosal injury.",
		Advice:      "Avoid combining unless prescribed together; watch for bleeding or black stools.",
	}},
	{Drug1: "warfarin", Drug2: "naproxen", InteractionInfo: InteractionInfo{
		Severity:    SeverityHigh,
		Description: "NSAID platelet inhibition and GI erosion on top of anticoagulation.",
		Advice:      "Serious bleeding risk; use acetaminophen for pain instead and ask your doctor.",
	}},
	{Drug1: "warfarin", Drug2: "ciprofloxacin", InteractionInfo: InteractionInfo{
		Severity:    SeverityModerate,
		Description: "CYP1A2 inhibition reduces warfarin clearance and raises INR.",
		Advice:      "Your INR should be checked more often while on this antibiotic.",
	}},
	{Drug1: "warfarin", Drug2: "amiodarone", InteractionInfo: InteractionInfo{
		Severity:    SeverityHigh,
		Description: "CYP2C9 inhibition markedly potentiates warfarin anticoagulation.",
		Advice:      "Warfarin dose usually needs to be lowered; monitor INR closely.",
	}},
	{Drug1: "simvastatin", Drug2: "clarithromycin", InteractionInfo: InteractionInfo{
		Severity:    SeverityHigh,
		Description: "Strong CYP3A4 inhibition raises simvastatin exposure; rhabdomyolysis risk.",
		Advice:      "Do not take together; the statin is normally paused during the antibiotic course.",
	}},
	{Drug1: "atorvastatin", Drug2: "clarithromycin", InteractionInfo: InteractionInfo{
		Severity:    SeverityModerate,
		Description: "CYP3A4 inhibition increases atorvastatin levels and myopathy risk.",
		Advice:      "Report unexplained muscle pain or weakness.",
	}},
	{Drug1: "sertraline", Drug2: "tramadol", InteractionInfo: InteractionInfo{
		Severity:    SeverityHigh,
		Description: "Combined serotonergic activity; tramadol also lowers seizure threshold.",
		Advice:      "Risk of serotonin syndrome; seek care for agitation, fever or tremor.",
	}},
	{Drug1: "fluoxetine", Drug2: "phenelzine", InteractionInfo: InteractionInfo{
		Severity:    SeverityHigh,
		Description: "SSRI with MAO inhibition causes serotonin accumulation.",
		Advice:      "Never combine; a washout period is required between these medicines.",
	}},
	{Drug1: "sildenafil", Drug2: "nitroglycerin", InteractionInfo: InteractionInfo{
		Severity:    SeverityHigh,
		Description: "Synergistic cGMP-mediated vasodilation causing profound hypotension.",
		Advice:      "Never take within 24 hours of each other.",
	}},
	{Drug1: "lisinopril", Drug2: "spironolactone", InteractionInfo: InteractionInfo{
		Severity:    SeverityModerate,
		Description: "Reduced aldosterone plus potassium retention leads to hyperkalemia.",
		Advice:      "Potassium levels should be checked regularly.",
	}},
	{Drug1: "lisinopril", Drug2: "ibuprofen", InteractionInfo: InteractionInfo{
		Severity:    SeverityModerate,
		Description: "Prostaglandin inhibition blunts ACE inhibitor effect and reduces renal perfusion.",
		Advice:      "Occasional use is usually fine; regular use needs blood pressure and kidney checks.",
	}},
	{Drug1: "clopidogrel", Drug2: "omeprazole", InteractionInfo: InteractionInfo{
		Severity:    SeverityModerate,
		Description: "CYP2C19 inhibition reduces conversion of clopidogrel to its active metabolite.",
		Advice:      "Ask about switching to pantoprazole if stomach protection is needed.",
	}},
	{Drug1: "digoxin", Drug2: "amiodarone", InteractionInfo: InteractionInfo{
		Severity:    SeverityModerate,
		Description: "P-glycoprotein inhibition raises serum digoxin concentration.",
		Advice:      "Digoxin dose is often halved; report nausea or vision changes.",
	}},
	{Drug1: "aspirin", Drug2: "ibuprofen", InteractionInfo: InteractionInfo{
		Severity:    SeverityLow,
		Description: "Ibuprofen competes for COX-1 binding and can blunt low-dose aspirin cardioprotection.",
		Advice:      "Take aspirin at least 30 minutes before ibuprofen.",
	}},
	{Drug1: "levothyroxine", Drug2: "omeprazole", InteractionInfo: InteractionInfo{
		Severity:    SeverityLow,
		Description: "Reduced gastric acidity lowers levothyroxine absorption.",
		Advice:      "Thyroid levels may need rechecking after starting the acid reducer.",
	}},
}
