package middleware

import "context"

type sinkKey struct{}

func withOwnerSink(ctx context.Context, owner *string) context.Context {
	return context.WithValue(ctx, sinkKey{}, owner)
}

func ownerSink(ctx context.Context) *string {
	s, _ := ctx.Value(sinkKey{}).(*string)
	return s
}
