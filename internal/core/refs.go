package core

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// Document reference formats carried over from the legacy dashboard:
//
//	invoice number:    INV-YYYYMMDD-NNNN  (NNNN = zero-padded purchase order id)
//	payment reference: PAY-YYYYMMDDHHMMSS-RRRR
//	transaction id:    TRX-YYYYMMDDHHMMSS-RRRR
//
// RRRR is a random 4-digit suffix. The legacy system never checked these for
// uniqueness; here the columns are UNIQUE so a collision surfaces as a
// constraint error instead of a silent duplicate.

// InvoiceNumber builds the invoice number for a purchase order.
func InvoiceNumber(orderDate time.Time, poID int) string {
	return fmt.Sprintf("INV-%s-%04d", orderDate.Format("20060102"), poID)
}

// PaymentReference builds a payment ledger reference for the given moment.
func PaymentReference(at time.Time) string {
	return fmt.Sprintf("PAY-%s-%04d", at.Format("20060102150405"), randSuffix())
}

// TransactionID builds a purchase-payment stub transaction id.
func TransactionID(at time.Time) string {
	return fmt.Sprintf("TRX-%s-%04d", at.Format("20060102150405"), randSuffix())
}

func randSuffix() int {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		// crypto/rand only fails if the OS entropy source is broken;
		// fall back to a clock-derived suffix rather than panic.
		return int(time.Now().UnixNano() % 10000)
	}
	return int(n.Int64())
}
