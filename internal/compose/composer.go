package compose

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/roach88/tally/internal/action"
)

// Failure codes understood by Failure. They match the executor's codes.
const (
	CodeItemNotFound      = "ITEM_NOT_FOUND"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeDuplicateItem     = "DUPLICATE_ITEM"
	CodeStockChanged      = "STOCK_CHANGED"
	CodeInternal          = "INTERNAL"
)

// Summary carries the figures a success message reports.
type Summary struct {
	Kind     action.Kind
	Item     string
	Total    decimal.Decimal
	Amount   decimal.Decimal
	Category string
	OnHand   decimal.Decimal
}

// Problem describes an execution failure for Failure.
type Problem struct {
	Code      string
	Item      string
	Available decimal.Decimal
	Requested decimal.Decimal
}

// Composer renders localized messages. It is safe for concurrent use.
type Composer struct {
	matcher language.Matcher
	cat     catalog.Catalog
}

// New builds a Composer over the bundled translations.
func New() (*Composer, error) {
	cat, err := buildCatalog()
	if err != nil {
		return nil, fmt.Errorf("build message catalog: %w", err)
	}
	return &Composer{
		matcher: language.NewMatcher(Supported),
		cat:     cat,
	}, nil
}

// Match maps a requested locale ("hi", "te-IN", "en-GB", "") to one of
// Supported. Unknown or malformed locales resolve to English.
func (c *Composer) Match(locale string) language.Tag {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		return language.English
	}
	_, idx, conf := c.matcher.Match(tag)
	if conf == language.No {
		return language.English
	}
	return Supported[idx]
}

func (c *Composer) printer(locale string) *message.Printer {
	return message.NewPrinter(c.Match(locale), message.Catalog(c.cat))
}

// Preview renders the confirmation prompt for a staged payload.
func (c *Composer) Preview(p action.Payload, locale string) string {
	pr := c.printer(locale)
	var lines []string
	add := func(key string, args ...any) {
		lines = append(lines, pr.Sprintf(key, args...))
	}

	switch v := p.(type) {
	case action.SalePayload:
		add(keySaleHeader)
		for _, item := range v.Items {
			add(keySaleLine, action.CleanName(item.Name),
				action.FormatQuantity(item.Quantity),
				action.FormatMoney(item.Price),
				action.FormatMoney(item.Subtotal()))
		}
		add(keySaleTotal, action.FormatMoney(v.Total()))
		add(keySalePayment, orDefault(v.PaymentMethod, action.DefaultPaymentMethod))
		if strings.TrimSpace(v.Customer) != "" {
			add(keySaleCustomer, strings.TrimSpace(v.Customer))
		}

	case action.ExpensePayload:
		add(keyExpenseHeader)
		add(keyAmount, action.FormatMoney(v.Amount))
		add(keyCategory, strings.TrimSpace(v.Category))
		add(keyDescription, strings.TrimSpace(v.Description))

	case action.InventoryUpdatePayload:
		add(keyUpdateHeader, action.CleanName(v.Item))
		if v.DeltaQty != nil {
			add(keyUpdateChange, action.FormatDelta(*v.DeltaQty))
		}
		if v.Price != nil {
			add(keyUpdatePrice, action.FormatMoney(*v.Price))
		}

	case action.InventoryAddPayload:
		add(keyAddHeader, action.CleanName(v.Item))
		add(keyAddQuantity, action.FormatQuantity(action.OrZero(v.Quantity)))
		if v.CostPrice != nil {
			add(keyAddCost, action.FormatMoney(*v.CostPrice))
		}
		add(keyAddPrice, action.FormatMoney(action.OrZero(v.Price)))
		add(keyCategory, orDefault(v.Category, action.DefaultCategory))

	default:
		return pr.Sprintf(keyNotAction)
	}

	add(keyFooter)
	return strings.Join(lines, "\n")
}

// Success renders the message shown after an action is executed.
func (c *Composer) Success(locale string, s Summary) string {
	pr := c.printer(locale)
	switch s.Kind {
	case action.AddSale:
		return pr.Sprintf(keySaleDone, action.FormatMoney(s.Total))
	case action.AddExpense:
		return pr.Sprintf(keyExpenseDone, action.FormatMoney(s.Amount), s.Category)
	case action.UpdateInventory:
		return pr.Sprintf(keyUpdateDone, s.Item, action.FormatQuantity(s.OnHand))
	case action.AddInventory:
		return pr.Sprintf(keyAddDone, s.Item)
	default:
		return pr.Sprintf(keyInternal)
	}
}

// Failure renders the message for a failed execution. Unknown codes are
// reported as an internal failure.
func (c *Composer) Failure(locale string, p Problem) string {
	pr := c.printer(locale)
	switch p.Code {
	case CodeItemNotFound:
		return pr.Sprintf(keyItemNotFound, p.Item)
	case CodeInsufficientStock:
		return pr.Sprintf(keyNoStock, p.Item,
			action.FormatQuantity(p.Available), action.FormatQuantity(p.Requested))
	case CodeDuplicateItem:
		return pr.Sprintf(keyDuplicateItem, p.Item)
	case CodeStockChanged:
		return pr.Sprintf(keyStockChanged, p.Item)
	default:
		return pr.Sprintf(keyInternal)
	}
}

// Cancelled renders the acknowledgement of an explicit cancel.
func (c *Composer) Cancelled(locale string) string {
	return c.printer(locale).Sprintf(keyCancelled)
}

// NothingPending renders the answer to a resolve with no live action.
func (c *Composer) NothingPending(locale string) string {
	return c.printer(locale).Sprintf(keyNothingPending)
}

// Forbidden renders the answer to a resolve by someone other than the owner.
func (c *Composer) Forbidden(locale string) string {
	return c.printer(locale).Sprintf(keyForbidden)
}

// NotAction renders the answer to input that could not be staged.
func (c *Composer) NotAction(locale string) string {
	return c.printer(locale).Sprintf(keyNotAction)
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return def
}
