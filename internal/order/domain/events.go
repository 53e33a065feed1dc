package domain

type OrderCreated struct {
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Email    string `json:"email"`
	Status   Status `json:"status"`
}

type OrderStatusChanged struct {
	OrderID  string `json:"order_id"`
	Previous Status `json:"previous"`
	Status   Status `json:"status"`
}
