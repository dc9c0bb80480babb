package share

import (
	"fmt"
	"net/url"
)

// upiCurrency is fixed: UPI settles in INR only.
const upiCurrency = "INR"

// UPILink builds a upi://pay deep link requesting amount from friendName.
// Format: upi://pay?pa=VPA&pn=PAYEE&am=AMOUNT&cu=INR&tn=NOTE.
func UPILink(vpa, payeeName string, amount float64, description, friendName string) string {
	note := fmt.Sprintf("Payment for %s from %s", description, friendName)

	params := url.Values{}
	params.Set("pa", vpa)
	params.Set("pn", payeeName)
	params.Set("am", fmt.Sprintf("%.2f", amount))
	params.Set("cu", upiCurrency)
	params.Set("tn", note)

	return "upi://pay?" + params.Encode()
}
