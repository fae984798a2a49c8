package policy

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// SplitPassages breaks a policy document into blank-line separated passages.
// Whitespace inside a passage is collapsed to single spaces.
func SplitPassages(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var out []string
	for _, block := range strings.Split(text, "\n\n") {
		p := strings.Join(strings.Fields(block), " ")
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// LoadDir indexes every .md and .txt file in dir, one source per file name.
// It returns the number of passages stored.
func LoadDir(ctx context.Context, pool *pgxpool.Pool, dir string, logger *zap.Logger) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read policy dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".md" && ext != ".txt") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	total := 0
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return total, fmt.Errorf("read %s: %w", name, err)
		}
		passages := SplitPassages(string(data))
		if err := InsertChunks(ctx, pool, name, passages); err != nil {
			return total, err
		}
		logger.Info("indexed policy document", zap.String("source", name), zap.Int("passages", len(passages)))
		total += len(passages)
	}
	return total, nil
}
