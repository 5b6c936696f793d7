package webdriver

import (
	"context"
	"time"
)

// CommandEvent describes one finished command.
type CommandEvent struct {
	Command    string
	Method     string
	HTTPStatus int
	Redirects  int
	Duration   time.Duration
	Err        error
}

// Observer is notified around every executed command. Implementations must
// be safe for concurrent use.
type Observer interface {
	// CommandStarted may return a derived context that is used for the
	// transport call, for example one carrying a trace span.
	CommandStarted(ctx context.Context, command string) context.Context
	CommandFinished(ctx context.Context, ev CommandEvent)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	Started  func(ctx context.Context, command string) context.Context
	Finished func(ctx context.Context, ev CommandEvent)
}

func (o ObserverFuncs) CommandStarted(ctx context.Context, command string) context.Context {
	if o.Started == nil {
		return ctx
	}
	return o.Started(ctx, command)
}

func (o ObserverFuncs) CommandFinished(ctx context.Context, ev CommandEvent) {
	if o.Finished != nil {
		o.Finished(ctx, ev)
	}
}
