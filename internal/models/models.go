package models

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	Balance      int64     `db:"balance" json:"balance"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

const (
	CategoryVPS   = "vps"
	CategoryPanel = "pterodactyl_panel"
)

type Product struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Price       int64     `db:"price" json:"price"`
	Category    string    `db:"category" json:"category"`
	Stock       int       `db:"stock" json:"stock"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

const (
	OrderPendingPayment = "pending_payment"
	OrderPaid           = "paid"
	OrderProcessing     = "processing"
	OrderCompleted      = "completed"
	OrderCancelled      = "cancelled"
)

type Order struct {
	ID            string    `db:"id" json:"id"`
	UserID        string    `db:"user_id" json:"user_id"`
	ProductID     string    `db:"product_id" json:"product_id"`
	Quantity      int       `db:"quantity" json:"quantity"`
	TotalPrice    int64     `db:"total_price" json:"total_price"`
	PaymentMethod string    `db:"payment_method" json:"payment_method"`
	Status        string    `db:"status" json:"status"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// Deposit statuses follow the gateway vocabulary. A deposit moves from
// pending to exactly one terminal status and never transitions again.
const (
	DepositPending = "pending"
	DepositSuccess = "success"
	DepositFailed  = "failed"
	DepositExpired = "expired"
)

type Deposit struct {
	ID             string     `db:"id" json:"id"`
	UserID         string     `db:"user_id" json:"user_id"`
	ReffID         string     `db:"reff_id" json:"reff_id"`
	GatewayID      *string    `db:"gateway_id" json:"gateway_id,omitempty"`
	Method         string     `db:"method" json:"method"`
	Amount         int64      `db:"amount" json:"amount"`
	Fee            int64      `db:"fee" json:"fee"`
	CreditAmount   int64      `db:"credit_amount" json:"credit_amount"`
	QRImageURL     string     `db:"qr_image_url" json:"qr_image_url,omitempty"`
	QRImageString  string     `db:"qr_image_string" json:"qr_image_string,omitempty"`
	Status         string     `db:"status" json:"status"`
	BalanceApplied bool       `db:"balance_applied" json:"balance_applied"`
	ExpiredAt      *time.Time `db:"expired_at" json:"expired_at,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

// IsTerminal reports whether the deposit status can no longer change.
func (d Deposit) IsTerminal() bool {
	return d.Status == DepositSuccess || d.Status == DepositFailed || d.Status == DepositExpired
}

type LedgerEntry struct {
	ID            string    `db:"id" json:"id"`
	UserID        string    `db:"user_id" json:"user_id"`
	ReferenceType string    `db:"reference_type" json:"reference_type"`
	ReferenceID   string    `db:"reference_id" json:"reference_id"`
	Amount        int64     `db:"amount" json:"amount"`
	Description   string    `db:"description" json:"description"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
