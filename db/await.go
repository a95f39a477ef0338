package db

import "context"

// AwaitOn takes a repository's result and error channels, as returned by the
// repository call itself, and yields a function that blocks on them until
// ctx is done:
//
//	patient, err := db.AwaitOn(repo.FindOneById(ctx, id))(ctx)
func AwaitOn[T any](resultChan chan T, errChan chan error) func(ctx context.Context) (T, error) {
	return func(ctx context.Context) (T, error) {
		var zero T
		select {
		case res := <-resultChan:
			return res, nil
		case err := <-errChan:
			return zero, err
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
}

// AwaitErr is AwaitOn for repository calls that only report an error.
func AwaitErr(ctx context.Context, errChan chan error) error {
	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func resultPair[T any]() (chan T, chan error) {
	return make(chan T, 1), make(chan error, 1)
}
