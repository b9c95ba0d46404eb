package common

// AuthorizationHeaderName is the HTTP header carrying the bearer access token.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the token inside the Authorization header.
const BearerPrefix = "Bearer "

// Canonical contact statuses. The store accepts any string; these are the
// values the admin dashboard works with.
const (
	ContactStatusNew        = "new"
	ContactStatusInProgress = "in_progress"
	ContactStatusResolved   = "resolved"
)

// PaymentStatusPending is assigned to payments created without a status.
const PaymentStatusPending = "pending"

// DefaultCurrency is the only currency payments are recorded in.
const DefaultCurrency = "IDR"
