package transport

type CheckoutItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Brand     string `json:"brand"`
	Price     int64  `json:"price"`
	Image     string `json:"image"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

type CheckoutRequest struct {
	Items []CheckoutItem `json:"items"`
}

type CheckoutResponse struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

type SyncRequest struct {
	Limit int `json:"limit"`
}

type SyncResponse struct {
	Success        bool     `json:"success"`
	Message        string   `json:"message"`
	Synced         int      `json:"synced"`
	Skipped        int      `json:"skipped"`
	Errors         []string `json:"errors"`
	TotalProcessed int      `json:"totalProcessed"`
}
