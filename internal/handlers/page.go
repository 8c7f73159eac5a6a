package handlers

import (
	"encoding/json"
	"fmt"
	"html"

	"github.com/rawgroundbeef/openfacilitator/internal/models"
	"github.com/rawgroundbeef/openfacilitator/internal/x402"
	"github.com/rawgroundbeef/openfacilitator/pkg/chains"
)

// paymentPage renders the browser-facing payment page. The embedded JSON blob
// carries everything a wallet script needs to build and broadcast the payment
// without another round trip.
func paymentPage(res *models.PaidResource, req *x402.PaymentRequirements, facilitatorURL string, aux chains.AuxiliaryData) string {
	bootstrap, _ := json.Marshal(map[string]any{
		"paymentRequirements": []x402.PaymentRequirements{*req},
		"facilitatorUrl":      facilitatorURL,
		"chainAux":            aux,
		"completeUrl":         fmt.Sprintf("/pay/%s/complete", res.ID),
	})

	title := res.Description
	if title == "" {
		title = res.Slug
	}

	return fmt.Sprintf(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s</title>
</head>
<body>
<main>
<h1>%s</h1>
<p>Payment of <strong>%s</strong> atomic units of <code>%s</code> on <strong>%s</strong> is required.</p>
<p>Pay to: <code>%s</code></p>
<button id="x402-pay">Pay now</button>
<p id="x402-status"></p>
</main>
<script id="x402-config" type="application/json">%s</script>
</body>
</html>`,
		html.EscapeString(title),
		html.EscapeString(title),
		html.EscapeString(req.MaxAmountRequired),
		html.EscapeString(req.Asset),
		html.EscapeString(req.Network),
		html.EscapeString(req.PayTo),
		bootstrap,
	)
}

// alreadyPaidPage is shown to browsers holding a live access grant for a
// payment-kind resource, which has no target to redirect or proxy to.
func alreadyPaidPage(res *models.PaidResource) string {
	title := res.Description
	if title == "" {
		title = res.Slug
	}
	return fmt.Sprintf(`<!doctype html>
<html>
<head><meta charset="utf-8"><title>%s</title></head>
<body>
<main>
<h1>%s</h1>
<p>Your payment has been received. Access is active.</p>
</main>
</body>
</html>`, html.EscapeString(title), html.EscapeString(title))
}
