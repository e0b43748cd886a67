package harness

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultOwner is used when a scenario names no owner.
const DefaultOwner = "shop-1"

// Scenario is one scripted conversation with its expected end state.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Owner is the default actor for every step.
	Owner string `yaml:"owner,omitempty"`

	// Locale is passed to Stage and Resolve. Empty means English.
	Locale string `yaml:"locale,omitempty"`

	// TTL overrides the pending store's default TTL.
	TTL time.Duration `yaml:"ttl,omitempty"`

	// Catalog seeds the owner's items before the first step.
	Catalog []CatalogItem `yaml:"catalog,omitempty"`

	// Replies maps input text to the raw classifier reply for it.
	// Unlisted text classifies as "not an action".
	Replies map[string]string `yaml:"replies,omitempty"`

	Steps      []Step      `yaml:"steps"`
	Assertions []Assertion `yaml:"assertions"`
}

// CatalogItem seeds one ledger item. Numbers are decimal strings or YAML numbers.
type CatalogItem struct {
	Name      string `yaml:"name"`
	Quantity  string `yaml:"quantity,omitempty"`
	CostPrice string `yaml:"cost_price,omitempty"`
	Price     string `yaml:"price,omitempty"`
	Category  string `yaml:"category,omitempty"`
}

// Step is a single turn of the conversation. Exactly one of Stage,
// Confirm, Cancel, Advance or Sweep is set.
type Step struct {
	Stage   string        `yaml:"stage,omitempty"`
	As      string        `yaml:"as,omitempty"`
	Confirm string        `yaml:"confirm,omitempty"`
	Cancel  string        `yaml:"cancel,omitempty"`
	Advance time.Duration `yaml:"advance,omitempty"`
	Sweep   bool          `yaml:"sweep,omitempty"`

	// Owner overrides Scenario.Owner for this step.
	Owner string `yaml:"owner,omitempty"`

	Expect *Expect `yaml:"expect,omitempty"`
}

// Step kinds as they appear in traces.
const (
	StepStage   = "stage"
	StepConfirm = "confirm"
	StepCancel  = "cancel"
	StepAdvance = "advance"
	StepSweep   = "sweep"
)

// Kind returns which kind of step s is, or "" if none or several are set.
func (s Step) Kind() string {
	var kinds []string
	if s.Stage != "" {
		kinds = append(kinds, StepStage)
	}
	if s.Confirm != "" {
		kinds = append(kinds, StepConfirm)
	}
	if s.Cancel != "" {
		kinds = append(kinds, StepCancel)
	}
	if s.Advance != 0 {
		kinds = append(kinds, StepAdvance)
	}
	if s.Sweep {
		kinds = append(kinds, StepSweep)
	}
	if len(kinds) != 1 {
		return ""
	}
	return kinds[0]
}

// Expect is a subset match against a step's result. Unset fields are not checked.
type Expect struct {
	Staged   *bool    `yaml:"staged,omitempty"`
	Kind     string   `yaml:"kind,omitempty"`
	Reason   string   `yaml:"reason,omitempty"`
	Outcome  string   `yaml:"outcome,omitempty"`
	Code     string   `yaml:"code,omitempty"`
	Contains []string `yaml:"contains,omitempty"`
	Removed  *int     `yaml:"removed,omitempty"`
}

// Assertion validates the final state.
type Assertion struct {
	Type     string `yaml:"type"`
	Item     string `yaml:"item,omitempty"`
	Quantity string `yaml:"quantity,omitempty"`
	Count    *int   `yaml:"count,omitempty"`
	Absent   bool   `yaml:"absent,omitempty"`
	Outcome  string `yaml:"outcome,omitempty"`
}

// Assertion type constants.
const (
	AssertStock         = "stock"
	AssertSalesCount    = "sales_count"
	AssertExpensesCount = "expenses_count"
	AssertPendingCount  = "pending_count"
	AssertItemExists    = "item_exists"
	AssertJournalCount  = "journal_count"
)

// OutcomeUnresolved selects journal entries with no recorded resolution.
const OutcomeUnresolved = "unresolved"

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML already in memory.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // catches "assertion:" vs "assertions:"
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	if scenario.Owner == "" {
		scenario.Owner = DefaultOwner
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	if s.TTL < 0 {
		return fmt.Errorf("ttl must not be negative")
	}

	for i, item := range s.Catalog {
		if item.Name == "" {
			return fmt.Errorf("catalog[%d]: name is required", i)
		}
	}

	names := make(map[string]bool)
	for i, step := range s.Steps {
		kind := step.Kind()
		if kind == "" {
			return fmt.Errorf("steps[%d]: exactly one of stage, confirm, cancel, advance, sweep is required", i)
		}
		if step.As != "" {
			if kind != StepStage {
				return fmt.Errorf("steps[%d]: as is only valid on a stage step", i)
			}
			if names[step.As] {
				return fmt.Errorf("steps[%d]: name %q already used", i, step.As)
			}
			names[step.As] = true
		}
		if step.Advance < 0 {
			return fmt.Errorf("steps[%d]: advance must not be negative", i)
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertStock:
		if a.Item == "" || a.Quantity == "" {
			return fmt.Errorf("assertions[%d]: item and quantity are required for stock", index)
		}
	case AssertSalesCount, AssertExpensesCount, AssertPendingCount, AssertJournalCount:
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: a non-negative count is required for %s", index, a.Type)
		}
	case AssertItemExists:
		if a.Item == "" {
			return fmt.Errorf("assertions[%d]: item is required for item_exists", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
