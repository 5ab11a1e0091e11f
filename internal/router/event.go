package router

type (
	// A Requester identifies who triggered an event and where.
	// GuildID is empty for direct messages.
	Requester struct {
		UserID  string
		GuildID string
	}

	// An Event is one of CommandInvoked, FormSubmitted or OptionSelected.
	Event interface {
		requester() Requester
		sealed()
	}

	// CommandInvoked is a `/todo <subcommand>` invocation.
	CommandInvoked struct {
		Requester
		Command    string
		Subcommand string
	}

	// FormSubmitted is the submission of a form shown by ShowForm.
	FormSubmitted struct {
		Requester
		FormID string
		Fields map[string]string
	}

	// OptionSelected is the selection of options in a menu.
	OptionSelected struct {
		Requester
		MenuID string
		Values []string
	}
)

func (r Requester) requester() Requester { return r }

func (CommandInvoked) sealed() {}
func (FormSubmitted) sealed()  {}
func (OptionSelected) sealed() {}
