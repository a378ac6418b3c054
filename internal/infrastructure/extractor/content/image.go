package content

import "context"

func (e *Extractor) extractImage(ctx context.Context, path string) (string, error) {
	return e.recognize(ctx, path), nil
}
