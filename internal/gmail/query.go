package gmail

import "strings"

// ReceiptQuery matches receipts, invoices, insurance and health paperwork
// that arrive with attachments.
const ReceiptQuery = `(subject:"your order" OR subject:receipts OR subject:receipt OR subject:invoice ` +
	`OR subject:invoices OR subject:"insurance" OR subject:"health report" ` +
	`OR category:purchases OR label:receipts OR label:invoices ` +
	`OR label:insurance OR label:health) has:attachment`

// BuildQuery returns ReceiptQuery narrowed to messages mentioning brand.
// An empty brand returns ReceiptQuery unchanged.
func BuildQuery(brand string) string {
	brand = strings.TrimSpace(brand)
	if brand == "" {
		return ReceiptQuery
	}
	brand = strings.ReplaceAll(brand, `"`, "")
	return ReceiptQuery + ` "` + brand + `"`
}
