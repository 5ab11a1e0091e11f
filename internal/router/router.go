package router

import (
	"context"
	"fmt"

	"github.com/codestube/bot/internal/logger"
	"github.com/codestube/bot/internal/service"
	"github.com/codestube/bot/internal/session"
	"github.com/codestube/bot/internal/todoerror"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// A Router maps platform events to TodoStore operations and answers through a Responder.
type Router struct {
	todos    service.TodoStore
	sessions session.Manager
	log      logrus.FieldLogger
}

// New returns a new Router.
func New(todos service.TodoStore, sessions session.Manager, log logrus.FieldLogger) *Router {
	return &Router{
		todos:    todos,
		sessions: sessions,
		log:      log,
	}
}

// Dispatch handles the event. It never returns an error nor panics:
// failures are logged and reported to the requester when nothing was sent yet.
func (r *Router) Dispatch(ctx context.Context, e Event, rsp Responder) {
	log := r.log.WithFields(logrus.Fields{
		"user_id":  e.requester().UserID,
		"guild_id": e.requester().GuildID,
		"event":    fmt.Sprintf("%T", e),
	})

	if log.Logger.IsLevelEnabled(logrus.DebugLevel) {
		log.Debugf("dispatching %s", logger.Dump(e))
	}

	defer func() {
		if v := recover(); v != nil {
			r.fail(ctx, log, rsp, errors.Errorf("panic: %v", v))
		}
	}()

	if err := r.dispatch(ctx, e, rsp); err != nil {
		r.fail(ctx, log, rsp, err)
	}
}

func (r *Router) dispatch(ctx context.Context, e Event, rsp Responder) error {
	switch e := e.(type) {
	case CommandInvoked:
		return r.command(ctx, e, rsp)
	case FormSubmitted:
		return r.form(ctx, e, rsp)
	case OptionSelected:
		return r.option(ctx, e, rsp)
	default:
		return errors.Errorf("unsupported event %T", e)
	}
}

func (r *Router) command(ctx context.Context, e CommandInvoked, rsp Responder) error {
	if e.Command != CommandTodo {
		return rsp.Reply(ctx, Reply{Content: msgUnknown, Private: true})
	}

	switch e.Subcommand {
	case "add":
		return rsp.ShowForm(ctx, addForm())
	case "list":
		return r.list(ctx, e.Requester, rsp)
	case ActionDelete, ActionComplete:
		return r.menu(ctx, e.Requester, e.Subcommand, rsp)
	case "clear":
		return r.clear(ctx, e.Requester, rsp)
	default:
		return rsp.Reply(ctx, Reply{Content: msgUnknown, Private: true})
	}
}

func (r *Router) list(ctx context.Context, req Requester, rsp Responder) error {
	todos, err := r.todos.List(ctx, req.UserID, req.GuildID, service.DefaultListLimit)
	if err != nil {
		return err
	}

	if len(todos) == 0 {
		return rsp.Reply(ctx, Reply{Content: msgListEmpty, Private: true})
	}
	return rsp.Reply(ctx, Reply{Content: listing(todos)})
}

func (r *Router) menu(ctx context.Context, req Requester, action string, rsp Responder) error {
	text := menuTexts[action]

	todos, err := r.todos.List(ctx, req.UserID, req.GuildID, service.DefaultListLimit)
	if err != nil {
		return err
	}

	if len(todos) == 0 {
		return rsp.Reply(ctx, Reply{Content: text.empty, Private: true})
	}

	menu := &Menu{
		ID:          "todo:" + action,
		Placeholder: text.placeholder,
		Options:     make([]Option, 0, len(todos)),
	}
	for _, todo := range todos {
		token, err := r.sessions.Issue(ctx, session.Grant{
			Action:      action,
			RequesterID: req.UserID,
			GuildID:     req.GuildID,
			ItemID:      todo.ID,
		})
		if err != nil {
			return err
		}

		menu.Options = append(menu.Options, Option{
			Label:       displayName(todo),
			Description: optionDescription(todo),
			Value:       token,
		})
	}

	return rsp.Reply(ctx, Reply{Content: text.prompt, Menu: menu})
}

func (r *Router) clear(ctx context.Context, req Requester, rsp Responder) error {
	n, err := r.todos.ClearAll(ctx, req.UserID, req.GuildID)
	if err != nil {
		return err
	}

	if n == 0 {
		return rsp.Reply(ctx, Reply{Content: msgClearEmpty, Private: true})
	}
	return rsp.Reply(ctx, Reply{Content: cleared(n)})
}

func (r *Router) form(ctx context.Context, e FormSubmitted, rsp Responder) error {
	if e.FormID != FormAdd {
		return errors.Errorf("unknown form %q", e.FormID)
	}

	in := service.TodoInput{
		Name:        e.Fields[FieldName],
		Description: e.Fields[FieldDescription],
		Due:         e.Fields[FieldDue],
	}.Normalize()

	if _, err := r.todos.Create(ctx, e.UserID, e.GuildID, in.Name, in.Description, in.Due); err != nil {
		return err
	}

	return rsp.Reply(ctx, Reply{Content: added(in.Name, in.Description, in.Due)})
}

func (r *Router) option(ctx context.Context, e OptionSelected, rsp Responder) error {
	var action string
	switch e.MenuID {
	case MenuDelete:
		action = ActionDelete
	case MenuComplete:
		action = ActionComplete
	default:
		return errors.Errorf("unknown menu %q", e.MenuID)
	}
	text := menuTexts[action]

	if len(e.Values) == 0 {
		return rsp.Reply(ctx, Reply{Content: text.notFound, Private: true})
	}
	token := e.Values[0]

	grant, err := r.sessions.Resolve(ctx, token, action, e.UserID)
	switch todoerror.KindOf(err) {
	case todoerror.KindUnknown:
		if err != nil {
			return err
		}
	case todoerror.KindSessionExpired:
		return rsp.Reply(ctx, Reply{Content: expired(action), Private: true})
	case todoerror.KindForbidden:
		return rsp.Reply(ctx, Reply{Content: forbidden(action), Private: true})
	default:
		return err
	}

	var n int
	if action == ActionDelete {
		n, err = r.todos.DeleteByID(ctx, grant.RequesterID, grant.GuildID, grant.ItemID)
	} else {
		n, err = r.todos.Complete(ctx, grant.RequesterID, grant.GuildID, grant.ItemID)
	}
	if err != nil {
		return err
	}

	if n == 0 {
		return rsp.Reply(ctx, Reply{Content: text.notFound, Private: true})
	}

	if err := r.sessions.Revoke(ctx, token); err != nil {
		r.log.WithError(err).Warn("could not revoke menu token")
	}
	return rsp.Update(ctx, Reply{Content: text.done})
}

// fail logs err and tells the requester when possible.
func (r *Router) fail(ctx context.Context, log logrus.FieldLogger, rsp Responder, err error) {
	var te *todoerror.TodoError
	if errors.As(err, &te) && te.Kind == todoerror.KindValidation {
		log.WithField("field", te.Field).Debug(te.Message)
		if !rsp.Responded() {
			r.reply(ctx, log, rsp, te.Message)
		}
		return
	}

	log.WithError(err).Errorf("could not handle event: %+v", err)
	if !rsp.Responded() {
		r.reply(ctx, log, rsp, msgInternalError)
	}
}

func (r *Router) reply(ctx context.Context, log logrus.FieldLogger, rsp Responder, content string) {
	if err := rsp.Reply(ctx, Reply{Content: content, Private: true}); err != nil {
		log.WithError(err).Error("could not send error reply")
	}
}
