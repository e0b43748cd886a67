package action

import (
	"encoding/json"
	"fmt"
	"time"
)

// Staged is a validated action waiting for the operator's decision.
// It is never modified after staging; resolution only removes it.
type Staged struct {
	ID         string
	Owner      string
	Payload    Payload
	Locale     string
	IssuedAt   time.Time
	SourceText string
	Confidence float64
}

// Kind returns the kind carried by the payload.
func (s Staged) Kind() Kind {
	return KindOf(s.Payload)
}

// ExpiresAt returns the moment the action becomes unresolvable under ttl.
func (s Staged) ExpiresAt(ttl time.Duration) time.Time {
	return s.IssuedAt.Add(ttl)
}

// Expired reports whether the action is at least ttl old at now.
func (s Staged) Expired(now time.Time, ttl time.Duration) bool {
	return !now.Before(s.ExpiresAt(ttl))
}

// Envelope is the serialisable form of Staged. Exactly one payload
// pointer is set, matching Kind.
type Envelope struct {
	ID         string                  `json:"id" cbor:"id"`
	Owner      string                  `json:"owner" cbor:"owner"`
	Kind       string                  `json:"kind" cbor:"kind"`
	Locale     string                  `json:"locale,omitempty" cbor:"locale,omitempty"`
	IssuedAt   time.Time               `json:"issued_at" cbor:"issued_at"`
	SourceText string                  `json:"source_text,omitempty" cbor:"source_text,omitempty"`
	Confidence float64                 `json:"confidence,omitempty" cbor:"confidence,omitempty"`
	Sale       *SalePayload            `json:"sale,omitempty" cbor:"sale,omitempty"`
	Expense    *ExpensePayload         `json:"expense,omitempty" cbor:"expense,omitempty"`
	Update     *InventoryUpdatePayload `json:"update,omitempty" cbor:"update,omitempty"`
	Add        *InventoryAddPayload    `json:"add,omitempty" cbor:"add,omitempty"`
}

// Envelope converts s into its serialisable form.
func (s Staged) Envelope() Envelope {
	env := Envelope{
		ID:         s.ID,
		Owner:      s.Owner,
		Kind:       s.Kind().String(),
		Locale:     s.Locale,
		IssuedAt:   s.IssuedAt,
		SourceText: s.SourceText,
		Confidence: s.Confidence,
	}
	switch p := s.Payload.(type) {
	case SalePayload:
		env.Sale = &p
	case ExpensePayload:
		env.Expense = &p
	case InventoryUpdatePayload:
		env.Update = &p
	case InventoryAddPayload:
		env.Add = &p
	}
	return env
}

// Staged converts the envelope back, checking that the payload matches Kind.
func (e Envelope) Staged() (Staged, error) {
	kind, err := ParseKind(e.Kind)
	if err != nil {
		return Staged{}, err
	}

	var payload Payload
	switch {
	case kind == AddSale && e.Sale != nil:
		payload = *e.Sale
	case kind == AddExpense && e.Expense != nil:
		payload = *e.Expense
	case kind == UpdateInventory && e.Update != nil:
		payload = *e.Update
	case kind == AddInventory && e.Add != nil:
		payload = *e.Add
	default:
		return Staged{}, fmt.Errorf("envelope %s: missing %s payload", e.ID, kind)
	}

	return Staged{
		ID:         e.ID,
		Owner:      e.Owner,
		Payload:    payload,
		Locale:     e.Locale,
		IssuedAt:   e.IssuedAt,
		SourceText: e.SourceText,
		Confidence: e.Confidence,
	}, nil
}

// MarshalJSON encodes s through its Envelope.
func (s Staged) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Envelope())
}

// UnmarshalJSON decodes an Envelope into s.
func (s *Staged) UnmarshalJSON(data []byte) error {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	staged, err := env.Staged()
	if err != nil {
		return err
	}
	*s = staged
	return nil
}
