package webdriver

import (
	"context"

	"github.com/odvcencio/wdrive/pkg/webdriver/command"
)

// Alert is a user prompt: alert, confirm or prompt dialog.
type Alert struct {
	s *Session
}

func (a *Alert) Text(ctx context.Context) (string, error) {
	id := command.GetAlertText
	if a.s.W3C() {
		id = command.W3CGetAlertText
	}
	v, err := a.s.value(ctx, id, nil)
	if err != nil {
		return "", err
	}
	return asString(v)
}

func (a *Alert) Dismiss(ctx context.Context) error {
	id := command.DismissAlert
	if a.s.W3C() {
		id = command.W3CDismissAlert
	}
	_, err := a.s.Execute(ctx, id, nil)
	return err
}

func (a *Alert) Accept(ctx context.Context) error {
	id := command.AcceptAlert
	if a.s.W3C() {
		id = command.W3CAcceptAlert
	}
	_, err := a.s.Execute(ctx, id, nil)
	return err
}

// SendKeys types into a prompt dialog.
func (a *Alert) SendKeys(ctx context.Context, text string) error {
	if a.s.W3C() {
		_, err := a.s.Execute(ctx, command.W3CSetAlertValue, map[string]any{
			"value": keysToTyping(text),
			"text":  text,
		})
		return err
	}
	_, err := a.s.Execute(ctx, command.SetAlertValue, map[string]any{"text": text})
	return err
}
