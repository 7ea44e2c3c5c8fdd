package enums

// ReceiptFormat selects how a receipt is rendered.
type ReceiptFormat string

const (
	ReceiptFormatText ReceiptFormat = "text"
	ReceiptFormatHTML ReceiptFormat = "html"
	ReceiptFormatJSON ReceiptFormat = "json"
)

var validReceiptFormats = []ReceiptFormat{
	ReceiptFormatText,
	ReceiptFormatHTML,
	ReceiptFormatJSON,
}

func (f ReceiptFormat) String() string { return string(f) }

func (f ReceiptFormat) IsValid() bool { return isMember(validReceiptFormats, f) }

func ParseReceiptFormat(value string) (ReceiptFormat, error) {
	return parseMember(validReceiptFormats, value, "receipt format")
}
