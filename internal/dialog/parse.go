package dialog

import (
	"regexp"
	"strconv"
	"strings"

	domain "github.com/nethra1406/whatsappbot/internal/entity"
)

// "Shirt x 2", "saree X1" — free text, literal x, integer quantity.
// Trailing text after the quantity ("Shirt x 2 please") is ignored.
var itemRe = regexp.MustCompile(`^(.+?)\s*[xX]\s*(\d+)`)

// ParseLineItem turns a customer message into a priced line item. A false
// result is a recognized outcome (the flow answers with a format hint), not
// a fault.
func ParseLineItem(text string, catalog domain.Catalog) (domain.LineItem, bool) {
	m := itemRe.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return domain.LineItem{}, false
	}
	name := strings.TrimSpace(m[1])
	qty, err := strconv.Atoi(m[2])
	if err != nil || qty < 1 {
		return domain.LineItem{}, false
	}
	price, ok := catalog.Resolve(name)
	if !ok {
		return domain.LineItem{}, false
	}
	return domain.LineItem{Name: name, Quantity: qty, UnitPrice: price}, true
}
