package router

import "context"

type (
	// A Responder sends the answer of one event back to the platform.
	Responder interface {
		// Reply sends a new message.
		Reply(ctx context.Context, r Reply) error
		// ShowForm opens a form to the requester.
		ShowForm(ctx context.Context, f Form) error
		// Update replaces the message holding the menu the event comes from.
		Update(ctx context.Context, r Reply) error
		// Responded returns true once something has been sent for the event.
		Responded() bool
	}

	// A Reply is a text message with an optional menu.
	// Private replies are only visible to the requester.
	Reply struct {
		Content string
		Private bool
		Menu    *Menu
	}

	// A Menu is a single choice select menu.
	Menu struct {
		ID          string
		Placeholder string
		Options     []Option
	}

	// An Option is one entry of a Menu, Value is sent back in OptionSelected.
	Option struct {
		Label       string
		Description string
		Value       string
	}

	// A Form is a modal dialog made of text fields.
	Form struct {
		ID     string
		Title  string
		Fields []FormField
	}

	// A FormField is a text input of a Form.
	FormField struct {
		ID        string
		Label     string
		Paragraph bool
		Required  bool
		MaxLength int
	}
)
