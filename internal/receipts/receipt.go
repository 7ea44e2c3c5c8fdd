// Package receipts renders completed transactions as printable text and HTML. Rendering is
// pure: no persistence and no side effects.
package receipts

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/Uptivity/justsell-pos-sub002/pkg/enums"
	"github.com/Uptivity/justsell-pos-sub002/pkg/money"
)

const (
	// Width is the column count of the text receipt.
	Width = 40
	// DefaultItemWidth is the column budget for an item name before it is truncated.
	DefaultItemWidth = 20
	ellipsis         = "..."
	dateLayout       = "2006-01-02 15:04"
)

// Store is the header block printed at the top of a receipt.
type Store struct {
	Name         string   `json:"name"`
	AddressLines []string `json:"address_lines,omitempty"`
	Phone        string   `json:"phone,omitempty"`
}

// Line is one sold item.
type Line struct {
	Name           string `json:"name"`
	SKU            string `json:"sku"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	LineTotalCents int64  `json:"line_total_cents"`
}

// Loyalty is the optional points summary.
type Loyalty struct {
	Earned   int64 `json:"earned"`
	Redeemed int64 `json:"redeemed"`
	Balance  int64 `json:"balance"`
}

// Input is everything printed on a receipt.
type Input struct {
	Store             Store               `json:"store"`
	ReceiptNumber     string              `json:"receipt_number"`
	CreatedAt         time.Time           `json:"created_at"`
	CashierName       string              `json:"cashier_name,omitempty"`
	CustomerName      string              `json:"customer_name,omitempty"`
	Lines             []Line              `json:"lines"`
	SubtotalCents     int64               `json:"subtotal_cents"`
	TaxRate           decimal.Decimal     `json:"tax_rate"`
	TaxCents          int64               `json:"tax_cents"`
	TotalCents        int64               `json:"total_cents"`
	PaymentMethod     enums.PaymentMethod `json:"payment_method"`
	CashTenderedCents *int64              `json:"cash_tendered_cents,omitempty"`
	ChangeCents       *int64              `json:"change_cents,omitempty"`
	Loyalty           *Loyalty            `json:"loyalty,omitempty"`
	Footer            string              `json:"footer,omitempty"`
}

// Receipt holds both renderings.
type Receipt struct {
	Text string
	HTML string
}

// Formatter renders receipts with a fixed item-name width.
type Formatter struct {
	itemWidth int
}

// NewFormatter builds a formatter. Widths outside (3, Width) fall back to the default.
func NewFormatter(itemWidth int) *Formatter {
	if itemWidth <= len(ellipsis) || itemWidth >= Width {
		itemWidth = DefaultItemWidth
	}
	return &Formatter{itemWidth: itemWidth}
}

// Format renders in as text and HTML.
func (f *Formatter) Format(in Input) (Receipt, error) {
	view := f.build(in)
	html, err := renderHTML(view)
	if err != nil {
		return Receipt{}, fmt.Errorf("render html receipt: %w", err)
	}
	return Receipt{Text: renderText(view), HTML: html}, nil
}

// Truncate shortens name to width runes, replacing the tail with an ellipsis.
func Truncate(name string, width int) string {
	if utf8.RuneCountInString(name) <= width {
		return name
	}
	if width <= len(ellipsis) {
		return string([]rune(name)[:width])
	}
	return string([]rune(name)[:width-len(ellipsis)]) + ellipsis
}

// FormatRate renders a fractional rate as a percentage, e.g. 0.0825 as "8.25%".
func FormatRate(rate decimal.Decimal) string {
	return rate.Mul(decimal.NewFromInt(100)).StringFixed(2) + "%"
}

type row struct {
	Label string
	Value string
}

type itemView struct {
	Name   string
	Detail string
	Total  string
}

type view struct {
	Store    Store
	Receipt  string
	Date     string
	Cashier  string
	Customer string
	Items    []itemView
	Totals   []row
	Payment  []row
	Loyalty  []row
	Footer   string
}

func (f *Formatter) build(in Input) view {
	v := view{
		Store:    in.Store,
		Receipt:  in.ReceiptNumber,
		Date:     in.CreatedAt.Format(dateLayout),
		Cashier:  in.CashierName,
		Customer: strings.TrimSpace(in.CustomerName),
		Footer:   in.Footer,
	}
	for _, line := range in.Lines {
		v.Items = append(v.Items, itemView{
			Name:   Truncate(line.Name, f.itemWidth),
			Detail: fmt.Sprintf("%d @ %s", line.Quantity, money.Cents(line.UnitPriceCents).Dollars()),
			Total:  money.Cents(line.LineTotalCents).Dollars(),
		})
	}
	v.Totals = []row{
		{"Subtotal", money.Cents(in.SubtotalCents).Dollars()},
		{"Tax (" + FormatRate(in.TaxRate) + ")", money.Cents(in.TaxCents).Dollars()},
		{"TOTAL", money.Cents(in.TotalCents).Dollars()},
	}
	v.Payment = []row{{"Payment", paymentLabel(in.PaymentMethod)}}
	if in.PaymentMethod == enums.PaymentMethodCash {
		if in.CashTenderedCents != nil {
			v.Payment = append(v.Payment, row{"Cash Tendered", money.Cents(*in.CashTenderedCents).Dollars()})
		}
		if in.ChangeCents != nil {
			v.Payment = append(v.Payment, row{"Change", money.Cents(*in.ChangeCents).Dollars()})
		}
	}
	if in.Loyalty != nil {
		v.Loyalty = []row{{"Points Earned", fmt.Sprintf("%d", in.Loyalty.Earned)}}
		if in.Loyalty.Redeemed > 0 {
			v.Loyalty = append(v.Loyalty, row{"Points Redeemed", fmt.Sprintf("%d", in.Loyalty.Redeemed)})
		}
		v.Loyalty = append(v.Loyalty, row{"Points Balance", fmt.Sprintf("%d", in.Loyalty.Balance)})
	}
	return v
}

func paymentLabel(m enums.PaymentMethod) string {
	switch m {
	case enums.PaymentMethodCash:
		return "Cash"
	case enums.PaymentMethodCard:
		return "Card"
	case enums.PaymentMethodGiftCard:
		return "Gift Card"
	default:
		return m.String()
	}
}
