package content

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// Reading stops well past the truncation limit so huge logs stay cheap.
const maxTextBytes = MaxTextChars * 8

func readText(_ context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open text: %w", err)
	}
	defer f.Close()

	raw, err := io.ReadAll(io.LimitReader(f, maxTextBytes))
	if err != nil {
		return "", fmt.Errorf("read text: %w", err)
	}
	return strings.ToValidUTF8(string(raw), ""), nil
}
