package dto

type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type SuccessResponse struct {
	OK   bool `json:"ok"`
	Data any  `json:"data,omitempty"`
}

// Role-scoped lists carry the count of the caller's opposite role so the
// client can badge both tabs from either response.

type SellingResponse struct {
	Negotiations any   `json:"negotiations"`
	BuyingCount  int64 `json:"buying_count"`
}

type BuyingResponse struct {
	Negotiations any   `json:"negotiations"`
	SellingCount int64 `json:"selling_count"`
}

type SalesResponse struct {
	Deals          any   `json:"deals"`
	PurchasesCount int64 `json:"purchases_count"`
}

type PurchasesResponse struct {
	Deals      any   `json:"deals"`
	SalesCount int64 `json:"sales_count"`
}
