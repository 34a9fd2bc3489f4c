package interceptor

import (
	"context"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/davidnhn/book-social-network/shared/auth"
)

// SessionVerifier resolves a bearer token into an identity.
type SessionVerifier interface {
	Verify(ctx context.Context, token string) (auth.Identity, error)
}

// NewJWTInterceptor attaches the caller identity to the context when the request
// carries a valid bearer token. Requests without one proceed unauthenticated and
// are left to the handler to reject.
func NewJWTInterceptor(
	verifier SessionVerifier,
	logger *zerolog.Logger,
	exemptMethods []string,
) grpc.UnaryServerInterceptor {
	exemptMap := make(map[string]bool)
	for _, method := range exemptMethods {
		exemptMap[method] = true
	}

	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		if exemptMap[info.FullMethod] {
			return handler(ctx, req)
		}

		if _, ok := auth.IdentityFromContext(ctx); ok {
			return handler(ctx, req)
		}

		token, ok := bearerFromMetadata(ctx)
		if !ok {
			return handler(ctx, req)
		}

		identity, err := verifier.Verify(ctx, token)
		if err != nil {
			logger.Debug().Err(err).Str("method", info.FullMethod).Msg("session verification failed")
			return handler(ctx, req)
		}

		return handler(auth.WithIdentity(ctx, identity), req)
	}
}

func bearerFromMetadata(ctx context.Context) (string, bool) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", false
	}

	authHeaders := md.Get("authorization")
	if len(authHeaders) == 0 {
		return "", false
	}

	return auth.BearerToken(authHeaders[0])
}
