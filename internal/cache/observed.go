package cache

import "context"

// Observed reports every cache call to fn as (op, result). Results are hit, miss, ok or error.
type Observed struct {
	next Cache
	fn   func(op, result string)
}

func WithObserver(next Cache, fn func(op, result string)) Cache {
	if fn == nil {
		return next
	}
	return &Observed{next: next, fn: fn}
}

func (o *Observed) Get(ctx context.Context, key string, dst any) (bool, error) {
	hit, err := o.next.Get(ctx, key, dst)
	switch {
	case err != nil:
		o.fn("get", "error")
	case hit:
		o.fn("get", "hit")
	default:
		o.fn("get", "miss")
	}
	return hit, err
}

func (o *Observed) Set(ctx context.Context, key string, val any) error {
	err := o.next.Set(ctx, key, val)
	o.fn("set", result(err))
	return err
}

func (o *Observed) Delete(ctx context.Context, keys ...string) error {
	err := o.next.Delete(ctx, keys...)
	o.fn("delete", result(err))
	return err
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
