package action

import "fmt"

// Kind identifies which of the four supported ledger mutations an action performs.
type Kind int

const (
	// KindUnknown is the zero value and never valid for a staged action.
	KindUnknown Kind = iota
	// AddSale records a sale and deducts stock for every line.
	AddSale
	// AddExpense records an expense.
	AddExpense
	// UpdateInventory adjusts on-hand quantity and/or price of an existing item.
	UpdateInventory
	// AddInventory creates a new catalog item.
	AddInventory
)

var kindNames = map[Kind]string{
	AddSale:         "add_sale",
	AddExpense:      "add_expense",
	UpdateInventory: "update_inventory",
	AddInventory:    "add_inventory",
}

// Kinds lists every valid kind in declaration order.
func Kinds() []Kind {
	return []Kind{AddSale, AddExpense, UpdateInventory, AddInventory}
}

// String returns the wire name of the kind ("add_sale", ...).
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Valid reports whether k is one of the four supported kinds.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// ParseKind converts a wire name into a Kind.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return KindUnknown, fmt.Errorf("unknown action kind %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid action kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
