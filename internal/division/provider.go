package division

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
)

// Provider returns the externally configured division names.
type Provider interface {
	Load(ctx context.Context) ([]string, error)
}

// DefaultKey is the settings key holding the division list.
const DefaultKey = "app.divisions"

var nameSeparators = regexp.MustCompile(`[,\s]+`)

// FileProvider reads a key=value settings file such as
//
//	app.divisions=HR, Finance, IT
type FileProvider struct {
	Path string
	Key  string
}

// NewFileProvider returns a provider for path. An empty key means DefaultKey.
func NewFileProvider(path, key string) *FileProvider {
	if key == "" {
		key = DefaultKey
	}
	return &FileProvider{Path: path, Key: key}
}

// Load parses the settings file and returns the configured names.
func (p *FileProvider) Load(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	values, err := godotenv.Read(p.Path)
	if err != nil {
		return nil, fmt.Errorf("read division settings %s: %w", p.Path, err)
	}
	raw, ok := values[p.Key]
	if !ok {
		return nil, fmt.Errorf("division settings %s: key %q not found", p.Path, p.Key)
	}
	return ParseNames(raw), nil
}

// ParseNames splits a configured list on commas and whitespace runs.
func ParseNames(raw string) []string {
	var out []string
	for _, n := range nameSeparators.Split(strings.TrimSpace(raw), -1) {
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}

// StaticProvider serves a fixed list.
type StaticProvider []string

// Load returns the fixed list.
func (p StaticProvider) Load(context.Context) ([]string, error) {
	return []string(p), nil
}
