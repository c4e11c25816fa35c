package constants

type ContextKey string

const (
	PoolKey     ContextKey = "pool"
	TxKey       ContextKey = "tx"
	LoggerKey   ContextKey = "logger"
	IdentityKey ContextKey = "identity"
)
