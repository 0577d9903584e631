package ctxstore

import (
	"context"
)

type userIDStruct struct {
	Name string
}

var userIDKey = &userIDStruct{Name: "user_id"}

func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func GetUserID(ctx context.Context) (int, bool) {
	val, ok := ctx.Value(userIDKey).(int)
	return val, ok
}
