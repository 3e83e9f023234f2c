package core

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// RulesFile is the YAML shape for rule overrides. Every section is
// optional; entries are merged on top of the built-in tables, so a file
// only needs to list what it adds or remaps.
type RulesFile struct {
	// Synonyms maps normalized column names to canonical tokens.
	Synonyms map[string]string `yaml:"synonyms,omitempty"`

	// Membership lists per category, matched against canonical names.
	DocumentIDNames      []string `yaml:"document_id_names,omitempty"`
	ContactNames         []string `yaml:"contact_names,omitempty"`
	IdentityNames        []string `yaml:"identity_names,omitempty"`
	SensitiveNames       []string `yaml:"sensitive_names,omitempty"`
	QuasiIdentifierNames []string `yaml:"quasi_identifier_names,omitempty"`

	// PIIKeywords are substrings matched against lowercased raw column
	// names by the coarse boolean detector.
	PIIKeywords []string `yaml:"pii_keywords,omitempty"`

	// SuggestedStrategies maps a category name to a default strategy spec.
	SuggestedStrategies map[string]string `yaml:"suggested_strategies,omitempty"`
}

// Rules holds the immutable classification tables: the synonym map, the
// per-category membership sets, the keyword list for the boolean detector
// and the suggested strategy per category. Built once at process start
// and never mutated afterwards.
type Rules struct {
	synonyms    map[string]string
	documentIDs map[string]bool
	contact     map[string]bool
	identity    map[string]bool
	sensitive   map[string]bool
	quasi       map[string]bool
	piiKeywords []string
	suggested   map[Category]string
}

// DefaultRules returns the built-in rule tables.
func DefaultRules() *Rules {
	r := &Rules{
		synonyms: map[string]string{
			// Identity
			"full_name":   "name",
			"nombres":     "nombre",
			"apellidos":   "apellido",
			"persona":     "name",
			"productor":   "name",
			"responsable": "name",
			"encargado":   "name",
			"autor":       "name",
			// Documents
			"doc":                 "documento",
			"documento_identidad": "documento",
			// Contact
			"e_mail": "email",
			"correo": "email",
			"tlf":    "telefono",
			"telf":   "telefono",
			"movil":  "telefono",
			"movil1": "telefono",
			// Location
			"direccion":     "address",
			"domicilio":     "address",
			"ubicacion":     "location",
			"ubicacion_gps": "location",
			"barrio":        "zona",
			// Dates
			"fecha_nacimiento": "dob",
			"nacimiento":       "dob",
			"fec_nac":          "dob",
			"f_nac":            "dob",
			"fch":              "fecha",
			// Geo
			"coordenada":  "coordenadas",
			"coordenadas": "coordenadas",
			// Economic
			"importe": "monto",
			"ingreso": "monto",
			// Sensitive attributes
			"sexo":                   "gender",
			"genero":                 "gender",
			"race_ethnicity":         "race_ethnicity",
			"nivel_educativo_padres": "parental_level_of_education",
		},
		documentIDs: toSet([]string{
			"dni", "documento", "ruc", "pasaporte", "passport", "cedula", "ssn", "nif", "nie",
		}),
		contact: toSet([]string{
			"telefono", "phone", "celular", "email", "e_mail",
		}),
		identity: toSet([]string{
			"nombre", "name", "apellido", "apellidos",
		}),
		sensitive: toSet([]string{
			"gender", "sexo", "genero",
			"race", "ethnicity", "race_ethnicity",
			"religion", "orientacion_sexual", "discapacidad",
			"parental_level_of_education",
		}),
		quasi: toSet([]string{
			"dob", "birthday", "fecha",
			"departamento", "provincia", "distrito", "ubigeo",
			"latitud", "longitud", "location", "coordenadas",
			"zona", "barrio", "address",
			"valor", "monto", "salario", "precio", "costo",
			"age", "edad", "ocupacion", "profesion",
		}),
		piiKeywords: []string{
			// Identity
			"nombre", "name", "apellido", "apellidos",
			// Document and identifying numbers
			"dni", "documento", "ruc", "pasaporte", "passport", "cedula", "ssn", "nif", "nie",
			// Contact
			"telefono", "phone", "celular", "email", "e_mail",
			// Home address
			"address", "domicilio", "direccion",
		},
		suggested: map[Category]string{
			CategoryPIIStrict:       "mask",
			CategoryPIIContact:      "mask",
			CategoryDocumentID:      "hash",
			CategoryQuasiIdentifier: "generalize_geo",
			CategorySensitive:       "drop",
			CategoryGeneric:         "mask",
		},
	}
	return r
}

// LoadRules builds the rule tables from the defaults merged with the
// overrides found in the YAML file at path.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	var file RulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse rules file: %w", err)
	}

	rules := DefaultRules()
	rules.merge(&file)
	return rules, nil
}

// merge layers a RulesFile on top of the current tables. Synonym and
// suggestion entries replace same-key defaults; membership and keyword
// lists are additive.
func (r *Rules) merge(file *RulesFile) {
	for k, v := range file.Synonyms {
		r.synonyms[NormalizeColumn(k)] = NormalizeColumn(v)
	}
	addAll(r.documentIDs, file.DocumentIDNames)
	addAll(r.contact, file.ContactNames)
	addAll(r.identity, file.IdentityNames)
	addAll(r.sensitive, file.SensitiveNames)
	addAll(r.quasi, file.QuasiIdentifierNames)
	for _, kw := range file.PIIKeywords {
		r.piiKeywords = append(r.piiKeywords, NormalizeColumn(kw))
	}
	for cat, strat := range file.SuggestedStrategies {
		r.suggested[Category(cat)] = strat
	}
}

// SuggestedStrategy returns the default strategy spec string for a
// category ("mask" when the category is unknown).
func (r *Rules) SuggestedStrategy(cat Category) string {
	if s, ok := r.suggested[cat]; ok {
		return s
	}
	return "mask"
}

// PIIKeywords returns the keyword list used by the boolean detector,
// sorted for deterministic iteration.
func (r *Rules) PIIKeywords() []string {
	out := make([]string, len(r.piiKeywords))
	copy(out, r.piiKeywords)
	sort.Strings(out)
	return out
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}

func addAll(set map[string]bool, items []string) {
	for _, item := range items {
		set[NormalizeColumn(item)] = true
	}
}
