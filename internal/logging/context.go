package logging

import "context"

type ctxArgsKey struct{}

// ContextWith returns a copy of ctx carrying key-value pairs that both
// backends add to every record logged with that context.
func ContextWith(ctx context.Context, args ...any) context.Context {
	prev, _ := ctx.Value(ctxArgsKey{}).([]any)
	merged := make([]any, 0, len(prev)+len(args))
	merged = append(merged, prev...)
	merged = append(merged, args...)
	return context.WithValue(ctx, ctxArgsKey{}, merged)
}

// withContextArgs prepends the pairs stored in ctx to args.
func withContextArgs(ctx context.Context, args []any) []any {
	if ctx == nil {
		return args
	}
	extra, _ := ctx.Value(ctxArgsKey{}).([]any)
	if len(extra) == 0 {
		return args
	}
	out := make([]any, 0, len(extra)+len(args))
	out = append(out, extra...)
	return append(out, args...)
}
