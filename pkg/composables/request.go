package composables

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/orgkit/presence/pkg/constants"
	"github.com/orgkit/presence/pkg/types"
)

var (
	ErrNoIdentity = errors.New("identity not found in context")
)

// WithIdentity returns a new context carrying the resolved requester identity.
func WithIdentity(ctx context.Context, identity types.Identity) context.Context {
	return context.WithValue(ctx, constants.IdentityKey, identity)
}

// UseIdentity returns the requester identity from the context.
func UseIdentity(ctx context.Context) (types.Identity, error) {
	identity, ok := ctx.Value(constants.IdentityKey).(types.Identity)
	if !ok {
		return types.Identity{}, ErrNoIdentity
	}
	return identity, nil
}

func WithLogger(ctx context.Context, logger *logrus.Entry) context.Context {
	return context.WithValue(ctx, constants.LoggerKey, logger)
}

// UseLogger returns the request-scoped logger, falling back to the
// standard logger when none was attached.
func UseLogger(ctx context.Context) *logrus.Entry {
	logger, ok := ctx.Value(constants.LoggerKey).(*logrus.Entry)
	if !ok {
		return logrus.NewEntry(logrus.StandardLogger())
	}
	return logger
}
