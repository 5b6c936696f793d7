package webdriver

import (
	"context"

	"github.com/odvcencio/wdrive/pkg/webdriver/command"
)

// InputSource is one W3C action sequence, e.g.
// {"type": "key", "id": "keyboard", "actions": [...]}. Elements may appear
// as pointer origins and are wrapped automatically.
type InputSource map[string]any

// PerformActions dispatches low-level input sequences. W3C only.
func (s *Session) PerformActions(ctx context.Context, sources ...InputSource) error {
	actions := make([]any, 0, len(sources))
	for _, src := range sources {
		actions = append(actions, map[string]any(src))
	}
	_, err := s.Execute(ctx, command.W3CActions, map[string]any{"actions": actions})
	return err
}

// ReleaseActions releases every key and button held by earlier actions.
func (s *Session) ReleaseActions(ctx context.Context) error {
	_, err := s.Execute(ctx, command.W3CClearActions, nil)
	return err
}
