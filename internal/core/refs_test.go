package core

import (
	"regexp"
	"testing"
	"time"
)

func TestInvoiceNumber_Format(t *testing.T) {
	orderDate := time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)

	got := InvoiceNumber(orderDate, 42)
	want := "INV-20260307-0042"
	if got != want {
		t.Errorf("InvoiceNumber: expected %q, got %q", want, got)
	}

	// ids wider than four digits are not truncated
	got = InvoiceNumber(orderDate, 123456)
	want = "INV-20260307-123456"
	if got != want {
		t.Errorf("InvoiceNumber wide id: expected %q, got %q", want, got)
	}
}

func TestPaymentReference_Format(t *testing.T) {
	at := time.Date(2026, 3, 7, 14, 30, 5, 0, time.UTC)
	re := regexp.MustCompile(`^PAY-20260307143005-\d{4}$`)

	for i := 0; i < 10; i++ {
		if ref := PaymentReference(at); !re.MatchString(ref) {
			t.Fatalf("PaymentReference %q does not match %s", ref, re)
		}
	}
}

func TestTransactionID_Format(t *testing.T) {
	at := time.Date(2026, 12, 31, 23, 59, 59, 0, time.UTC)
	re := regexp.MustCompile(`^TRX-20261231235959-\d{4}$`)

	for i := 0; i < 10; i++ {
		if id := TransactionID(at); !re.MatchString(id) {
			t.Fatalf("TransactionID %q does not match %s", id, re)
		}
	}
}
