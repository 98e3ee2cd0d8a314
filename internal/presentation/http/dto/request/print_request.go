package request

// PrintRequest asks the relay to print one order's receipt. An empty
// order_name means the latest order for the given register/user.
type PrintRequest struct {
	OrderName  string `json:"order_name"`
	RegisterID int    `json:"register_id"`
	UserID     int    `json:"user_id"`
	Reprint    bool   `json:"reprint"`
}
