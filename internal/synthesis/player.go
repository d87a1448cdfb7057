package synthesis

import "context"

// Player consumes a finished artifact. It owns the file once Play is called.
type Player interface {
	Play(ctx context.Context, artifact string) error
}
