package domain

import "strings"

// Category identifies a railway document classification category.
// The set is closed: every category carries a fixed keyword rule and weight
// so that scoring stays deterministic and exhaustively testable.
type Category string

// The full category set for railway operations documents.
const (
	CategorySafetyManual           Category = "safety_manual"
	CategoryTechnicalDocumentation Category = "technical_documentation"
	CategoryOperationalProcedures  Category = "operational_procedures"
	CategoryScheduleTimetable      Category = "schedule_timetable"
	CategoryComplianceRegulatory   Category = "compliance_regulatory"
	CategoryTrainingManual         Category = "training_manual"
	CategoryInfrastructure         Category = "infrastructure"
	CategoryRollingStock           Category = "rolling_stock"
	CategoryPassengerServices      Category = "passenger_services"
	CategoryFreightOperations      Category = "freight_operations"
	CategorySignalingCommunication Category = "signaling_communication"
	CategoryElectricalSystems      Category = "electrical_systems"
)

// Categories returns every category in a stable order.
// The order matters for deterministic iteration during scoring.
func Categories() []Category {
	return []Category{
		CategorySafetyManual,
		CategoryTechnicalDocumentation,
		CategoryOperationalProcedures,
		CategoryScheduleTimetable,
		CategoryComplianceRegulatory,
		CategoryTrainingManual,
		CategoryInfrastructure,
		CategoryRollingStock,
		CategoryPassengerServices,
		CategoryFreightOperations,
		CategorySignalingCommunication,
		CategoryElectricalSystems,
	}
}

// IsValid returns true if the category is part of the closed set.
func (c Category) IsValid() bool {
	_, ok := categoryRules[c]
	return ok
}

// String returns the string representation.
func (c Category) String() string {
	return string(c)
}

// acronyms that must keep their casing in display names.
var displayReplacements = map[string]string{
	"Sop":  "SOP",
	"Ppe":  "PPE",
	"Emu":  "EMU",
	"Dmu":  "DMU",
	"25Kv": "25kV",
}

// Display returns the human-readable category name.
func (c Category) Display() string {
	words := strings.Split(string(c), "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	name := strings.Join(words, " ")
	for old, repl := range displayReplacements {
		name = strings.ReplaceAll(name, old, repl)
	}
	return name
}

// CategoryRule is the evidence-extraction rule for one category: the keyword
// list matched against chunk text and the weight applied to the raw signal.
type CategoryRule struct {
	Keywords []string
	Weight   float64
}

// Rule returns the scoring rule for the category.
// The zero rule is returned for unknown categories.
func (c Category) Rule() CategoryRule {
	return categoryRules[c]
}

var categoryRules = map[Category]CategoryRule{
	CategorySafetyManual: {
		Keywords: []string{
			"safety", "hazard", "risk", "emergency", "accident", "incident",
			"emergency response", "safety protocol", "hazard identification",
			"risk assessment", "safety training", "accident prevention",
			"occupational safety", "personal protective equipment", "ppe",
			"emergency evacuation", "fire safety", "first aid",
		},
		// Safety-critical content is weighted above everything else.
		Weight: 1.2,
	},
	CategoryTechnicalDocumentation: {
		Keywords: []string{
			"specifications", "technical", "engineering", "maintenance", "repair",
			"technical specifications", "engineering drawings", "maintenance manual",
			"repair procedures", "technical standards", "system specifications",
			"component specifications", "installation guide", "troubleshooting",
			"calibration", "testing procedures", "quality control",
		},
		Weight: 1.0,
	},
	CategoryOperationalProcedures: {
		Keywords: []string{
			"operation", "procedure", "protocol", "guideline", "instruction",
			"operating procedures", "standard operating procedure", "sop",
			"operational guidelines", "work instructions", "process flow",
			"operational manual", "duty instructions", "shift procedures",
			"operational safety", "control procedures",
		},
		Weight: 1.1,
	},
	CategoryScheduleTimetable: {
		Keywords: []string{
			"schedule", "timetable", "departure", "arrival", "route",
			"train schedule", "service timetable", "departure time",
			"arrival time", "route map", "frequency", "service interval",
			"peak hours", "off-peak", "holiday schedule", "special service",
		},
		Weight: 0.9,
	},
	CategoryComplianceRegulatory: {
		Keywords: []string{
			"compliance", "regulation", "standard", "requirement", "audit",
			"regulatory compliance", "safety standards", "industry standards",
			"compliance audit", "regulatory requirements", "certification",
			"inspection", "quality assurance", "standard procedures",
			"legal requirements", "regulatory framework",
		},
		Weight: 1.1,
	},
	CategoryTrainingManual: {
		Keywords: []string{
			"training", "education", "course", "certification", "qualification",
			"training manual", "training program", "educational material",
			"certification course", "qualification requirements", "skill development",
			"competency", "learning objectives", "training schedule",
			"assessment", "examination", "practical training",
		},
		Weight: 0.8,
	},
	CategoryInfrastructure: {
		Keywords: []string{
			"track", "signal", "station", "platform", "bridge", "tunnel",
			"railway track", "signaling system", "station infrastructure",
			"platform design", "bridge construction", "tunnel engineering",
			"overhead lines", "power supply", "track maintenance",
			"signal maintenance", "infrastructure development",
			"civil engineering", "structural design",
		},
		Weight: 1.0,
	},
	CategoryRollingStock: {
		Keywords: []string{
			"locomotive", "coach", "wagon", "train", "vehicle",
			"rolling stock", "train composition", "locomotive maintenance",
			"coach design", "passenger coach", "freight wagon",
			"multiple unit", "emu", "dmu", "electric multiple unit",
			"diesel multiple unit", "bogies", "traction system",
		},
		Weight: 1.0,
	},
	CategoryPassengerServices: {
		Keywords: []string{
			"passenger", "ticket", "booking", "service", "customer",
			"passenger services", "ticketing system", "reservation",
			"customer service", "passenger amenities", "accessibility",
			"passenger information", "announcements", "passenger safety",
			"boarding", "alighting", "passenger comfort",
		},
		Weight: 0.7,
	},
	CategoryFreightOperations: {
		Keywords: []string{
			"freight", "cargo", "goods", "loading", "unloading",
			"freight operations", "cargo handling", "goods transportation",
			"loading procedures", "unloading procedures", "freight yard",
			"cargo terminal", "container handling", "bulk cargo",
			"freight scheduling", "goods wagon",
		},
		Weight: 0.8,
	},
	CategorySignalingCommunication: {
		Keywords: []string{
			"signaling", "communication", "control", "interlocking", "block",
			"signal control", "communication system", "train control",
			"automatic block signaling", "centralized traffic control",
			"radio communication", "data communication", "control room",
			"dispatching", "train detection", "level crossing",
		},
		Weight: 1.1,
	},
	CategoryElectricalSystems: {
		Keywords: []string{
			"electrical", "power", "traction", "substation", "overhead",
			"electrical system", "power supply", "traction power",
			"electrical substation", "overhead equipment", "pantograph",
			"electrical maintenance", "power distribution", "25kv",
			"electrical safety", "earthing", "insulation",
		},
		Weight: 1.0,
	},
}

// MetroKeywords are terms indicating metro-operator specific content.
// A document mentioning enough of these gets a relevance boost during
// classification.
var MetroKeywords = []string{
	"kmrl", "kochi metro", "kerala", "metro rail", "rapid transit",
	"kochi", "ernakulam", "aluva", "maharajas college", "palarivattom",
	"edappally", "kalamassery", "cochin", "metro station",
}
