package compose

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message/catalog"
)

// Message keys.
const (
	keySaleHeader     = "preview.sale.header"
	keySaleLine       = "preview.sale.line"
	keySaleTotal      = "preview.sale.total"
	keySalePayment    = "preview.sale.payment"
	keySaleCustomer   = "preview.sale.customer"
	keyExpenseHeader  = "preview.expense.header"
	keyAmount         = "preview.amount"
	keyCategory       = "preview.category"
	keyDescription    = "preview.description"
	keyUpdateHeader   = "preview.update.header"
	keyUpdateChange   = "preview.update.change"
	keyUpdatePrice    = "preview.update.price"
	keyAddHeader      = "preview.add.header"
	keyAddQuantity    = "preview.add.quantity"
	keyAddCost        = "preview.add.cost"
	keyAddPrice       = "preview.add.price"
	keyFooter         = "preview.footer"
	keySaleDone       = "done.sale"
	keyExpenseDone    = "done.expense"
	keyUpdateDone     = "done.update"
	keyAddDone        = "done.add"
	keyItemNotFound   = "failed.item_not_found"
	keyNoStock        = "failed.insufficient_stock"
	keyDuplicateItem  = "failed.duplicate_item"
	keyStockChanged   = "failed.stock_changed"
	keyInternal       = "failed.internal"
	keyCancelled      = "status.cancelled"
	keyNothingPending = "status.nothing_pending"
	keyForbidden      = "status.forbidden"
	keyNotAction      = "status.not_action"
)

// Templates must not contain '$' or '{': the catalog treats them as
// substitution syntax.
var translations = map[language.Tag]map[string]string{
	language.English: {
		keySaleHeader:     "Confirm sale:",
		keySaleLine:       "- %s: %s x %s = %s",
		keySaleTotal:      "Total: %s",
		keySalePayment:    "Payment: %s",
		keySaleCustomer:   "Customer: %s",
		keyExpenseHeader:  "Confirm expense:",
		keyAmount:         "Amount: %s",
		keyCategory:       "Category: %s",
		keyDescription:    "Description: %s",
		keyUpdateHeader:   "Confirm stock update for %s:",
		keyUpdateChange:   "Change: %s",
		keyUpdatePrice:    "New price: %s",
		keyAddHeader:      "Confirm new item %s:",
		keyAddQuantity:    "Quantity: %s",
		keyAddCost:        "Cost price: %s",
		keyAddPrice:       "Selling price: %s",
		keyFooter:         "Reply yes to confirm or no to cancel.",
		keySaleDone:       "Sale recorded. Total: %s",
		keyExpenseDone:    "Expense of %s recorded under %s.",
		keyUpdateDone:     "Stock for %s updated. On hand: %s",
		keyAddDone:        "Added %s to your catalog.",
		keyItemNotFound:   "Item %s was not found in your catalog.",
		keyNoStock:        "Not enough stock for %s: %s available, %s requested.",
		keyDuplicateItem:  "Item %s is already in your catalog.",
		keyStockChanged:   "Stock for %s changed while recording. Please check it and try again.",
		keyInternal:       "Something went wrong. Please try again.",
		keyCancelled:      "Cancelled. Nothing was recorded.",
		keyNothingPending: "There is no pending action to confirm.",
		keyForbidden:      "This action belongs to someone else.",
		keyNotAction:      "I could not find anything to record in that message.",
	},
	language.Hindi: {
		keySaleHeader:     "बिक्री की पुष्टि करें:",
		keySaleLine:       "- %s: %s x %s = %s",
		keySaleTotal:      "कुल: %s",
		keySalePayment:    "भुगतान: %s",
		keySaleCustomer:   "ग्राहक: %s",
		keyExpenseHeader:  "खर्च की पुष्टि करें:",
		keyAmount:         "राशि: %s",
		keyCategory:       "श्रेणी: %s",
		keyDescription:    "विवरण: %s",
		keyUpdateHeader:   "%s के स्टॉक बदलाव की पुष्टि करें:",
		keyUpdateChange:   "बदलाव: %s",
		keyUpdatePrice:    "नई कीमत: %s",
		keyAddHeader:      "नई वस्तु %s की पुष्टि करें:",
		keyAddQuantity:    "मात्रा: %s",
		keyAddCost:        "लागत मूल्य: %s",
		keyAddPrice:       "बिक्री मूल्य: %s",
		keyFooter:         "पुष्टि के लिए yes या रद्द करने के लिए no लिखें।",
		keySaleDone:       "बिक्री दर्ज हो गई। कुल: %s",
		keyExpenseDone:    "%s का खर्च %s में दर्ज हो गया।",
		keyUpdateDone:     "%s का स्टॉक अपडेट हो गया। उपलब्ध: %s",
		keyAddDone:        "%s को आपकी सूची में जोड़ दिया गया।",
		keyItemNotFound:   "वस्तु %s आपकी सूची में नहीं मिली।",
		keyNoStock:        "%s का स्टॉक पर्याप्त नहीं है: %s उपलब्ध, %s माँगा गया।",
		keyDuplicateItem:  "वस्तु %s पहले से आपकी सूची में है।",
		keyStockChanged:   "%s का स्टॉक दर्ज करते समय बदल गया। कृपया जाँचें और फिर से प्रयास करें।",
		keyInternal:       "कुछ गलत हो गया। कृपया फिर से प्रयास करें।",
		keyCancelled:      "रद्द कर दिया गया। कुछ भी दर्ज नहीं हुआ।",
		keyNothingPending: "पुष्टि के लिए कोई लंबित कार्य नहीं है।",
		keyForbidden:      "यह कार्य किसी और का है।",
		keyNotAction:      "इस संदेश में दर्ज करने लायक कुछ नहीं मिला।",
	},
	language.Telugu: {
		keySaleHeader:     "అమ్మకాన్ని నిర్ధారించండి:",
		keySaleLine:       "- %s: %s x %s = %s",
		keySaleTotal:      "మొత్తం: %s",
		keySalePayment:    "చెల్లింపు: %s",
		keySaleCustomer:   "కస్టమర్: %s",
		keyExpenseHeader:  "ఖర్చును నిర్ధారించండి:",
		keyAmount:         "ఖర్చు మొత్తం: %s",
		keyCategory:       "వర్గం: %s",
		keyDescription:    "వివరణ: %s",
		keyUpdateHeader:   "%s స్టాక్ మార్పును నిర్ధారించండి:",
		keyUpdateChange:   "మార్పు: %s",
		keyUpdatePrice:    "కొత్త ధర: %s",
		keyAddHeader:      "కొత్త వస్తువు %s ను నిర్ధారించండి:",
		keyAddQuantity:    "పరిమాణం: %s",
		keyAddCost:        "కొనుగోలు ధర: %s",
		keyAddPrice:       "అమ్మకపు ధర: %s",
		keyFooter:         "నిర్ధారించడానికి yes లేదా రద్దు చేయడానికి no అని పంపండి.",
		keySaleDone:       "అమ్మకం నమోదైంది. మొత్తం: %s",
		keyExpenseDone:    "%s ఖర్చు %s కింద నమోదైంది.",
		keyUpdateDone:     "%s స్టాక్ నవీకరించబడింది. అందుబాటులో: %s",
		keyAddDone:        "%s ను మీ జాబితాలో చేర్చాము.",
		keyItemNotFound:   "%s మీ జాబితాలో లేదు.",
		keyNoStock:        "%s కు తగినంత స్టాక్ లేదు: %s అందుబాటులో, %s అడిగారు.",
		keyDuplicateItem:  "%s ఇప్పటికే మీ జాబితాలో ఉంది.",
		keyStockChanged:   "నమోదు చేస్తున్నప్పుడు %s నిల్వ మారింది. దయచేసి తనిఖీ చేసి మళ్లీ ప్రయత్నించండి.",
		keyInternal:       "ఏదో పొరపాటు జరిగింది. దయచేసి మళ్లీ ప్రయత్నించండి.",
		keyCancelled:      "రద్దు చేయబడింది. ఏదీ నమోదు కాలేదు.",
		keyNothingPending: "నిర్ధారించడానికి పెండింగ్ చర్య ఏదీ లేదు.",
		keyForbidden:      "ఈ చర్య వేరొకరిది.",
		keyNotAction:      "ఈ సందేశంలో నమోదు చేయదగినది ఏదీ కనబడలేదు.",
	},
}

// Supported lists the locales with a full translation, default first.
var Supported = []language.Tag{language.English, language.Hindi, language.Telugu}

func buildCatalog() (catalog.Catalog, error) {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, msgs := range translations {
		for key, msg := range msgs {
			if err := b.SetString(tag, key, msg); err != nil {
				return nil, err
			}
		}
	}
	return b, nil
}
