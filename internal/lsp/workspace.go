package lsp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func (s *Server) workspaceDidChangeConfiguration(ctx *glsp.Context, params *protocol.DidChangeConfigurationParams) error {
	s.bind(ctx)
	values, err := decodeSettings(params.Settings)
	if err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	if len(values) == 0 {
		return nil
	}
	if _, err := s.settings.Merge(context.Background(), values); err != nil {
		return err
	}
	return nil
}

// workspaceExecuteCommand is the editor-facing settings surface:
// sectioncount.toggle <key> and sectioncount.set <key> <bool>. Both return
// the resulting settings.
func (s *Server) workspaceExecuteCommand(ctx *glsp.Context, params *protocol.ExecuteCommandParams) (any, error) {
	s.bind(ctx)

	key, err := stringArg(params.Arguments, 0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", params.Command, err)
	}

	switch params.Command {
	case CommandToggle:
		next, err := s.settings.Toggle(context.Background(), key)
		if err != nil {
			return nil, err
		}
		return next.ToMap(), nil

	case CommandSet:
		if len(params.Arguments) < 2 {
			return nil, fmt.Errorf("%s: missing value argument", params.Command)
		}
		value, ok := params.Arguments[1].(bool)
		if !ok {
			return nil, fmt.Errorf("%s: value must be a boolean, got %T", params.Command, params.Arguments[1])
		}
		next, err := s.settings.Set(context.Background(), key, value)
		if err != nil {
			return nil, err
		}
		return next.ToMap(), nil
	}
	return nil, fmt.Errorf("unknown command %q", params.Command)
}

func stringArg(args []any, i int) (string, error) {
	if i >= len(args) {
		return "", fmt.Errorf("missing argument %d", i)
	}
	s, ok := args[i].(string)
	if !ok {
		return "", fmt.Errorf("argument %d must be a string, got %T", i, args[i])
	}
	return s, nil
}

// decodeSettings reads a settings payload, either flat or nested under a
// "sectioncount" section. Non-boolean values are ignored.
func decodeSettings(raw any) (map[string]bool, error) {
	if raw == nil {
		return nil, nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	if nested, ok := fields[Name]; ok {
		fields = nil
		if err := json.Unmarshal(nested, &fields); err != nil {
			return nil, err
		}
	}

	values := make(map[string]bool, len(fields))
	for k, v := range fields {
		var b *bool
		if err := json.Unmarshal(v, &b); err == nil && b != nil {
			values[k] = *b
		}
	}
	return values, nil
}
