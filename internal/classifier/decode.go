package classifier

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/shopspring/decimal"

	"github.com/roach88/tally/internal/action"
)

//go:embed schema.cue
var schemaSource string

// Decoder checks raw classifier output against the schema and builds an
// Intent. It is safe for concurrent use.
type Decoder struct {
	mu     sync.Mutex
	ctx    *cue.Context
	schema cue.Value
}

// NewDecoder compiles the embedded schema.
func NewDecoder() (*Decoder, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile classifier schema: %w", err)
	}
	return &Decoder{ctx: ctx, schema: schema}, nil
}

var payloadDefs = map[action.Kind]string{
	action.AddSale:         "#AddSale",
	action.AddExpense:      "#AddExpense",
	action.UpdateInventory: "#UpdateInventory",
	action.AddInventory:    "#AddInventory",
}

// Decode parses one classifier reply. Surrounding prose or a Markdown
// code fence around the JSON object is tolerated. Shape problems are
// returned as *ClassificationError.
func (d *Decoder) Decode(raw []byte) (Intent, error) {
	body, ok := extractObject(raw)
	if !ok {
		return Intent{}, &ClassificationError{Reason: "no JSON object in reply"}
	}
	if err := d.check(body); err != nil {
		return Intent{}, err
	}

	var w wireIntent
	if err := json.Unmarshal(body, &w); err != nil {
		return Intent{}, &ClassificationError{Reason: "decode intent", Err: err}
	}

	intent := Intent{
		IsAction:   w.IsAction,
		Confidence: clamp01(deref(w.Confidence)),
		Reason:     strings.TrimSpace(derefString(w.Reason)),
	}
	if !w.IsAction {
		return intent, nil
	}

	kind, _ := action.ParseKind(derefString(w.Kind))
	payload, err := buildPayload(kind, w.Payload)
	if err != nil {
		return Intent{}, err
	}
	intent.Payload = payload
	return intent, nil
}

// check unifies the reply with #Intent and, for actions, the payload
// with its kind's definition.
func (d *Decoder) check(body []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	data := d.ctx.CompileBytes(body, cue.Filename("reply.json"))
	if err := data.Err(); err != nil {
		return &ClassificationError{Reason: "reply is not valid JSON", Err: err}
	}

	intent := d.schema.LookupPath(cue.ParsePath("#Intent")).Unify(data)
	if err := intent.Validate(cue.Concrete(true)); err != nil {
		return &ClassificationError{Reason: "reply does not match intent shape", Err: err}
	}

	isAction, _ := data.LookupPath(cue.ParsePath("is_action")).Bool()
	if !isAction {
		return nil
	}

	kindStr, err := data.LookupPath(cue.ParsePath("kind")).String()
	if err != nil {
		return &ClassificationError{Reason: "action reply has no kind", Err: err}
	}
	kind, err := action.ParseKind(kindStr)
	if err != nil {
		return &ClassificationError{Reason: "unknown kind", Err: err}
	}

	payload := data.LookupPath(cue.ParsePath("payload"))
	if !payload.Exists() || payload.IsNull() {
		return &ClassificationError{Reason: fmt.Sprintf("%s reply has no payload", kind)}
	}
	def := d.schema.LookupPath(cue.ParsePath(payloadDefs[kind]))
	if err := def.Unify(payload).Validate(cue.Concrete(true)); err != nil {
		return &ClassificationError{Reason: fmt.Sprintf("payload does not match %s shape", kind), Err: err}
	}
	return nil
}

type wireIntent struct {
	IsAction   bool            `json:"is_action"`
	Kind       *string         `json:"kind"`
	Confidence *float64        `json:"confidence"`
	Reason     *string         `json:"reason"`
	Payload    json.RawMessage `json:"payload"`
}

type wireLine struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"`
}

type wireSale struct {
	Items         []wireLine `json:"items"`
	PaymentMethod *string    `json:"payment_method"`
	Customer      *string    `json:"customer"`
}

type wireExpense struct {
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Category    *string `json:"category"`
}

type wireUpdate struct {
	Item     string   `json:"item"`
	DeltaQty *float64 `json:"delta_qty"`
	Price    *float64 `json:"price"`
}

type wireAdd struct {
	Item      string   `json:"item"`
	Quantity  *float64 `json:"quantity"`
	CostPrice *float64 `json:"cost_price"`
	Price     *float64 `json:"price"`
	Category  *string  `json:"category"`
}

// buildPayload converts the wire payload. Numbers are rounded here; their
// sign is left for the validator.
func buildPayload(kind action.Kind, raw json.RawMessage) (action.Payload, error) {
	fail := func(err error) error {
		return &ClassificationError{Reason: fmt.Sprintf("decode %s payload", kind), Err: err}
	}

	switch kind {
	case action.AddSale:
		var w wireSale
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, fail(err)
		}
		p := action.SalePayload{
			PaymentMethod: strings.TrimSpace(derefString(w.PaymentMethod)),
			Customer:      strings.TrimSpace(derefString(w.Customer)),
		}
		for _, l := range w.Items {
			qty, err := action.FromFloat(l.Quantity)
			if err != nil {
				return nil, fail(err)
			}
			price, err := action.FromFloat(l.Price)
			if err != nil {
				return nil, fail(err)
			}
			p.Items = append(p.Items, action.SaleLine{Name: strings.TrimSpace(l.Name), Quantity: qty, Price: price})
		}
		return p, nil

	case action.AddExpense:
		var w wireExpense
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, fail(err)
		}
		amount, err := action.FromFloat(w.Amount)
		if err != nil {
			return nil, fail(err)
		}
		return action.ExpensePayload{
			Amount:      amount,
			Description: strings.TrimSpace(w.Description),
			Category:    strings.TrimSpace(derefString(w.Category)),
		}, nil

	case action.UpdateInventory:
		var w wireUpdate
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, fail(err)
		}
		delta, err := optionalDecimal(w.DeltaQty)
		if err != nil {
			return nil, fail(err)
		}
		price, err := optionalDecimal(w.Price)
		if err != nil {
			return nil, fail(err)
		}
		return action.InventoryUpdatePayload{Item: strings.TrimSpace(w.Item), DeltaQty: delta, Price: price}, nil

	case action.AddInventory:
		var w wireAdd
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, fail(err)
		}
		p := action.InventoryAddPayload{
			Item:     strings.TrimSpace(w.Item),
			Category: strings.TrimSpace(derefString(w.Category)),
		}
		var err error
		if p.Quantity, err = optionalDecimal(w.Quantity); err != nil {
			return nil, fail(err)
		}
		if p.CostPrice, err = optionalDecimal(w.CostPrice); err != nil {
			return nil, fail(err)
		}
		if p.Price, err = optionalDecimal(w.Price); err != nil {
			return nil, fail(err)
		}
		return p, nil

	default:
		return nil, &ClassificationError{Reason: "unknown kind"}
	}
}

func optionalDecimal(v *float64) (*decimal.Decimal, error) {
	if v == nil {
		return nil, nil
	}
	d, err := action.FromFloat(*v)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// extractObject returns the outermost {...} span of raw.
func extractObject(raw []byte) ([]byte, bool) {
	s := string(raw)
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return nil, false
	}
	return []byte(s[start : end+1]), true
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
