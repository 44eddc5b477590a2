package domain

// ReceiptAnalysis is either a ReceiptSuccess or a ReceiptFailure.
// The unexported marker method keeps the set of variants closed.
type ReceiptAnalysis interface {
	isReceiptAnalysis()
}

// ReceiptItem is a single line item read from a receipt
type ReceiptItem struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// ReceiptSuccess holds the itemized contents of a receipt
type ReceiptSuccess struct {
	Items []ReceiptItem `json:"items"`
	Total float64       `json:"total"`
}

// ReceiptFailure reports why a receipt could not be analyzed
type ReceiptFailure struct {
	Message string `json:"error"`
}

func (ReceiptSuccess) isReceiptAnalysis() {}
func (ReceiptFailure) isReceiptAnalysis() {}

// InlineImage is raw image data sent to a vision model
type InlineImage struct {
	Data     []byte
	MIMEType string
}
