package iotesting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aurora-skin/skinsafety/internal/iokb"
	"github.com/aurora-skin/skinsafety/pkg/kb"
	"github.com/gnames/gnfmt"
)

// FixtureVersion is the kb_version declared by the fixture tables.
const FixtureVersion = "v0.1.0"

// FixtureTables holds the JSON text of the five fixture tables keyed by
// file name. Tests may copy and edit it before calling WriteKBFiles.
func FixtureTables() map[string]string {
	return map[string]string{
		kb.ConceptDictionaryFile:  conceptsJSON,
		kb.IngredientOntologyFile: ingredientsJSON,
		kb.SafetyRulesFile:        rulesJSON,
		kb.InteractionRulesFile:   interactionsJSON,
		kb.ClimateNormalsFile:     climateJSON,
	}
}

// WriteKB writes the fixture tables and a matching manifest to a new
// temporary directory and returns its path.
func WriteKB(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	WriteKBFiles(t, dir, FixtureTables())
	WriteManifest(t, dir)
	return dir
}

// WriteKBFiles writes the given files into dir.
func WriteKBFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("cannot write %s: %v", path, err)
		}
	}
}

// WriteManifest generates kb_v0_manifest.json for the tables in dir.
func WriteManifest(t *testing.T, dir string) kb.Manifest {
	t.Helper()
	m, err := iokb.WriteManifest(dir, FixtureVersion)
	if err != nil {
		t.Fatalf("cannot write manifest in %s: %v", dir, err)
	}
	return m
}

// LoadKB compiles the fixture tables in memory, bypassing the loader.
// It is meant for matcher and engine tests.
func LoadKB(t *testing.T) *kb.KB {
	t.Helper()
	var tables kb.Tables
	for name, content := range FixtureTables() {
		raw := decode(t, content)
		switch name {
		case kb.ConceptDictionaryFile:
			tables.Concepts = kb.ParseConceptDictionary(raw)
		case kb.IngredientOntologyFile:
			tables.Ingredients = kb.ParseIngredientOntology(raw)
		case kb.SafetyRulesFile:
			tables.Rules = kb.ParseSafetyRules(raw)
		case kb.InteractionRulesFile:
			tables.Interactions = kb.ParseInteractionRules(raw)
		case kb.ClimateNormalsFile:
			tables.Climate = kb.ParseClimateNormals(raw)
		}
	}
	return kb.Assemble(tables)
}

func decode(t *testing.T, content string) any {
	t.Helper()
	var res any
	enc := gnfmt.GNjson{}
	if err := enc.Decode([]byte(content), &res); err != nil {
		t.Fatalf("cannot decode fixture: %v", err)
	}
	return res
}

const conceptsJSON = `{
  "kb_version": "v0.1.0",
  "concepts": [
    {
      "concept_id": "RETINOID",
      "labels": {"en": "Retinoid", "zh": "维A类"},
      "synonyms_en": ["retinoid", "adapalene", "tretinoin"],
      "synonyms_zh": ["维A", "阿达帕林"],
      "regex_hints": {"en": ["retin(ol|al|oid)s?"], "zh": []}
    },
    {
      "concept_id": "retinoid",
      "synonyms_en": ["retinol", "Retinoid"],
      "notes": "merged from the ingredient sheet"
    },
    {
      "concept_id": "BENZOYL_PEROXIDE",
      "labels": {"en": "Benzoyl peroxide", "zh": "过氧化苯甲酰"},
      "synonyms_en": ["benzoyl peroxide", "bpo"],
      "synonyms_zh": ["过氧化苯甲酰"]
    },
    {
      "concept_id": "AHA",
      "labels": {"en": "AHA", "zh": "果酸"},
      "synonyms_en": ["glycolic acid", "lactic acid", "aha"],
      "synonyms_zh": ["果酸"]
    },
    {
      "concept_id": "BHA",
      "labels": {"en": "BHA", "zh": "水杨酸"},
      "synonyms_en": ["salicylic acid", "bha"],
      "synonyms_zh": ["水杨酸"]
    },
    {
      "concept_id": "HYDROQUINONE",
      "labels": {"en": "Hydroquinone", "zh": "氢醌"},
      "synonyms_en": ["hydroquinone"],
      "synonyms_zh": ["氢醌"]
    },
    {
      "concept_id": "BARRIER_COMPROMISED",
      "labels": {"en": "Compromised barrier", "zh": "屏障受损"},
      "synonyms_en": ["compromised barrier", "damaged barrier"],
      "synonyms_zh": ["屏障受损"],
      "regex_hints": {"en": ["barrier\\s+(is\\s+)?(damaged|broken)"], "zh": ["屏障(受损|破坏)"]}
    },
    {
      "concept_id": "SENSITIVE_SKIN",
      "labels": {"en": "Sensitive skin", "zh": "敏感肌"},
      "synonyms_en": ["sensitive skin"],
      "synonyms_zh": ["敏感肌"]
    },
    {
      "concept_id": "NIACINAMIDE",
      "labels": {"en": "Niacinamide", "zh": "烟酰胺"},
      "synonyms_en": ["niacinamide"],
      "synonyms_zh": ["烟酰胺"]
    },
    {
      "concept_id": "AZELAIC_ACID",
      "labels": {"en": "Azelaic acid", "zh": "壬二酸"},
      "synonyms_en": ["azelaic acid"],
      "synonyms_zh": ["壬二酸"]
    },
    {
      "concept_id": "VITAMIN_C",
      "labels": {"en": "Vitamin C", "zh": "维C"},
      "synonyms_en": ["vitamin c", "ascorbic acid"],
      "synonyms_zh": ["维C"],
      "inci_aliases": ["Ascorbic Acid"]
    },
    {
      "labels": {"en": "row without id is dropped"}
    }
  ]
}`

const ingredientsJSON = `{
  "kb_version": "v0.1.0",
  "ingredients": [
    {
      "ingredient_id": "retinol",
      "inci": "Retinol",
      "common_names": {"en": ["retinol", "vitamin a"], "zh": ["视黄醇", "A醇"]},
      "classes": ["retinoid"],
      "contraindication_tags": ["pregnancy_avoid", "isotretinoin_avoid"],
      "evidence_level": "high"
    },
    {
      "ingredient_id": "hydroquinone",
      "inci": "Hydroquinone",
      "common_names": {"en": ["hydroquinone"], "zh": ["氢醌"]},
      "classes": ["HYDROQUINONE"],
      "contraindication_tags": ["pregnancy_avoid"],
      "evidence_level": "moderate"
    },
    {
      "ingredient_id": "glycolic_acid",
      "inci": "Glycolic Acid",
      "common_names": {"en": ["glycolic acid"], "zh": ["甘醇酸"]},
      "classes": ["AHA"],
      "contraindication_tags": ["irritant", "isotretinoin_avoid"],
      "evidence_level": "high"
    },
    {
      "ingredient_id": "niacinamide",
      "inci": "Niacinamide",
      "common_names": {"en": ["niacinamide"], "zh": ["烟酰胺"]},
      "classes": ["NIACINAMIDE"],
      "evidence_level": "high"
    },
    {
      "ingredient_id": "tea_tree_oil",
      "inci": "Melaleuca Alternifolia Leaf Oil",
      "common_names": {"en": ["tea tree oil"], "zh": ["茶树精油"]},
      "classes": ["ESSENTIAL_OIL"],
      "contraindication_tags": ["pregnancy_caution", "irritant"]
    }
  ]
}`

const rulesJSON = `{
  "kb_version": "v0.1.0",
  "rules": [
    {
      "rule_id": "KB_PREG_RETINOID_BLOCK",
      "category": "pregnancy",
      "trigger": {
        "life_stage": {"pregnancy_status": ["pregnant", "trying"]},
        "concepts_any": ["RETINOID"]
      },
      "decision": {
        "block_level": "BLOCK",
        "blocked_concepts": ["RETINOID"],
        "safe_alternatives_concepts": ["AZELAIC_ACID", "NIACINAMIDE"],
        "template_id": "tmpl_preg_retinoid"
      },
      "rationale": "Retinoids are avoided in pregnancy as a precaution."
    },
    {
      "rule_id": "KB_PREG_UNKNOWN_RETINOID",
      "category": "pregnancy",
      "trigger": {
        "life_stage": {"pregnancy_status": ["unknown"]},
        "concepts_any": ["RETINOID"],
        "required_context_missing": ["pregnancy_status"]
      },
      "decision": {
        "block_level": "REQUIRE_INFO",
        "required_fields": ["pregnancy_status"],
        "template_id": "tmpl_ask_pregnancy"
      }
    },
    {
      "rule_id": "KB_BARRIER_ACIDS",
      "category": "irritation",
      "trigger": {
        "concepts_any": ["BARRIER_COMPROMISED", "AHA", "BHA"]
      },
      "decision": {
        "block_level": "WARN",
        "blocked_concepts": ["AHA", "BHA"],
        "safe_alternatives_concepts": ["NIACINAMIDE"]
      }
    },
    {
      "rule_id": "KB_ISO_ACIDS",
      "category": "medication",
      "trigger": {
        "life_stage": {"medications_any": ["isotretinoin"]},
        "concepts_any": ["AHA", "BHA"]
      },
      "decision": {
        "block_level": "WARN",
        "blocked_concepts": ["AHA", "BHA"]
      }
    },
    {
      "rule_id": "KB_BPO_RETINOID",
      "category": "interaction",
      "trigger": {
        "concepts_any": ["BENZOYL_PEROXIDE"],
        "concepts_any_2": ["RETINOID", "PEEL_AGGRESSIVE"]
      },
      "decision": {
        "block_level": "WARN",
        "safe_alternatives_concepts": ["AZELAIC_ACID"]
      }
    },
    {
      "rule_id": "KB_EMPTY_TRIGGER",
      "category": "unknown",
      "trigger": {},
      "decision": {"block_level": "BLOCK"}
    }
  ],
  "templates": [
    {
      "template_id": "tmpl_preg_retinoid",
      "text_en": "Retinoids are not recommended during pregnancy or while trying to conceive.",
      "text_zh": "孕期或备孕期间不建议使用维A类。"
    },
    {
      "template_id": "tmpl_ask_pregnancy",
      "text_en": "Are you currently pregnant or trying to conceive?",
      "text_zh": "你当前是否怀孕或备孕？"
    }
  ]
}`

const interactionsJSON = `{
  "kb_version": "v0.1.0",
  "interactions": [
    {
      "interaction_id": "INT_RETINOID_BPO",
      "concept_a": "RETINOID",
      "concept_b": "BENZOYL_PEROXIDE",
      "risk_level": "high",
      "recommended_action": "separate_am_pm"
    },
    {
      "interaction_id": "INT_AHA_PEEL",
      "concept_a": "AHA",
      "concept_b": "PEEL_AGGRESSIVE"
    }
  ]
}`

const climateJSON = `{
  "kb_version": "v0.1.0",
  "regions": [
    {
      "region_id": "cn_south_humid",
      "labels": {"en": "South China", "zh": "华南"},
      "hemisphere": "north",
      "archetype": "humid_subtropical",
      "month_profiles": [
        {"month": 1, "uv_level": "medium", "humidity": "humid"},
        {"month": 7, "uv_level": "very_high", "humidity": "humid", "temp_swing": "low"}
      ]
    }
  ]
}`
