package actorctx

import (
	"context"

	"github.com/geocoder89/staffhub/internal/session"
)

type ctxKey struct{}

func WithSession(ctx context.Context, sess *session.Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, sess)
}

func SessionFrom(ctx context.Context) (*session.Session, bool) {
	v, ok := ctx.Value(ctxKey{}).(*session.Session)

	return v, ok && v != nil
}

func UserIDFrom(ctx context.Context) (string, bool) {
	sess, ok := SessionFrom(ctx)
	if !ok || sess.UserID == "" {
		return "", false
	}
	return sess.UserID, true
}
