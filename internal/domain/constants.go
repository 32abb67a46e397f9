package domain

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// Token transaction types. Credits are purchase/refund/bonus; usage is the
// only debit type.
const (
	TxTypePurchase = "purchase"
	TxTypeUsage    = "usage"
	TxTypeRefund   = "refund"
	TxTypeBonus    = "bonus"
)

const (
	PaymentStatusPending   = "PENDING"
	PaymentStatusCompleted = "COMPLETED"
	PaymentStatusFailed    = "FAILED"
	PaymentStatusExpired   = "EXPIRED"
)

const (
	GenerationStatusPending   = "PENDING"
	GenerationStatusRunning   = "RUNNING"
	GenerationStatusCompleted = "COMPLETED"
	GenerationStatusFailed    = "FAILED"
	GenerationStatusRefunded  = "REFUNDED"
)

const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

const (
	VisibilityPublic = "PUBLIC"
	VisibilityHidden = "HIDDEN"
)

// Usage stats timeframes
const (
	TimeframeWeek  = "week"
	TimeframeMonth = "month"
	TimeframeYear  = "year"
)
