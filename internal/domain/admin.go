package domain

import "encoding/json"

// User is the upstream account record surfaced on the admin dashboard.
type User struct {
	ID       string  `json:"_id"`
	Fullname string  `json:"fullname"`
	Email    string  `json:"email"`
	Role     string  `json:"role"`
	Balance  float64 `json:"balance"`
}

// PlatformStats is the upstream /api/admin/stats payload. Kept loose beyond
// the headline numbers because the upstream adds fields without notice.
type PlatformStats struct {
	TotalRevenue    float64         `json:"totalRevenue"`
	TotalCommission float64         `json:"totalCommission"`
	ActiveUsers     int             `json:"activeUsers"`
	Extra           json.RawMessage `json:"extra,omitempty"`
}

// Transaction is a row from /api/admin/transactions.
type Transaction struct {
	ID        string  `json:"_id"`
	UserID    string  `json:"userId"`
	Amount    float64 `json:"amount"`
	Type      string  `json:"type"`
	Status    string  `json:"status"`
	CreatedAt string  `json:"createdAt"`
}

// Withdrawal is a row from /api/admin/withdrawals.
type Withdrawal struct {
	ID        string  `json:"_id"`
	UserID    string  `json:"userId"`
	Fullname  string  `json:"fullname"`
	Amount    float64 `json:"amount"`
	Method    string  `json:"method"`
	Status    string  `json:"status"`
	CreatedAt string  `json:"createdAt"`
}

// SessionUser is the frontend's cached account object (the localStorage
// "user" blob in the old dashboard), attached once per login and hydrated
// into request locals by the session middleware.
type SessionUser struct {
	ID       string `json:"_id"`
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}
