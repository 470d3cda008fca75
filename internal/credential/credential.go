// Package credential supplies the bearer token used for remote calls. An absent
// credential means the conversation runs in guest mode.
package credential

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Provider returns the current credential and whether one is present.
type Provider interface {
	Credential(ctx context.Context) (string, bool)
}

// Static always returns the same token; an empty token means absent.
type Static string

func (s Static) Credential(context.Context) (string, bool) {
	return string(s), s != ""
}

// File keeps the token in a single file readable only by the user.
type File struct {
	Path string
}

// DefaultPath is $XDG_CONFIG_HOME/friendbot/token (or the OS equivalent).
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "friendbot", "token"), nil
}

// NewFile returns a File provider for path, or DefaultPath when path is empty.
func NewFile(path string) (*File, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("resolve token path: %w", err)
		}
		path = p
	}
	return &File{Path: path}, nil
}

func (f *File) Credential(context.Context) (string, bool) {
	b, err := os.ReadFile(f.Path)
	if err != nil {
		return "", false
	}
	tok := strings.TrimSpace(string(b))
	return tok, tok != ""
}

// Save stores token, creating the parent directory.
func (f *File) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(f.Path, []byte(token+"\n"), 0o600)
}

// Clear removes the stored token. Clearing an absent token is not an error.
func (f *File) Clear() error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
