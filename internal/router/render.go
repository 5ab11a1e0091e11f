package router

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/codestube/bot/internal/model"
)

// Identifiers of the components created by the router.
const (
	CommandTodo = "todo"

	FormAdd          = "todo-add-modal"
	FieldName        = "todo-name"
	FieldDescription = "todo-description"
	FieldDue         = "todo-due"

	ActionDelete   = "delete"
	ActionComplete = "complete"

	MenuDelete   = "todo:" + ActionDelete
	MenuComplete = "todo:" + ActionComplete
)

// OptionDescriptionMaxLength is the platform limit of a menu option description.
const OptionDescriptionMaxLength = 100

const (
	msgListEmpty     = "You have no to-do items yet. Use `/todo add` to create one."
	msgListHeader    = "Your to-do items:"
	msgClearEmpty    = "You had no to-do items to clear."
	msgInternalError = "Something went wrong with that /todo command."
	msgUnknown       = "Unknown /todo command."
)

// menuText holds the messages of a menu driven action.
type menuText struct {
	empty       string
	prompt      string
	placeholder string
	notFound    string
	done        string
}

var menuTexts = map[string]menuText{
	ActionDelete: {
		empty:       "You have no to-do items to delete.",
		prompt:      "Choose a task to delete:",
		placeholder: "Select a task to delete",
		notFound:    "That to-do item could not be found or deleted.",
		done:        "To-do item deleted.",
	},
	ActionComplete: {
		empty:       "You have no to-do items to complete.",
		prompt:      "Choose a task to mark as finished:",
		placeholder: "Select a task to complete",
		notFound:    "That to-do item could not be found or completed.",
		done:        "To-do item marked as finished.",
	},
}

func forbidden(action string) string {
	return fmt.Sprintf("This %s menu isn't for you.", action)
}

func expired(action string) string {
	return fmt.Sprintf("This menu has expired. Use `/todo %s` again.", action)
}

func cleared(n int) string {
	return fmt.Sprintf("Cleared %d to-do item(s).", n)
}

func addForm() Form {
	return Form{
		ID:    FormAdd,
		Title: "Add a to-do item",
		Fields: []FormField{
			{ID: FieldName, Label: "Task name", Required: true, MaxLength: model.TodoNameMaxLength},
			{ID: FieldDescription, Label: "Description (optional)", Paragraph: true, MaxLength: model.TodoDescriptionMaxLength},
			{ID: FieldDue, Label: "Due time (optional, e.g. 2025-11-30 18:00)", MaxLength: model.TodoDueMaxLength},
		},
	}
}

func added(name, description, due string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Added a new to-do **%s**", name)
	if due != "" {
		fmt.Fprintf(&b, " (due: %s)", due)
	}
	if description != "" {
		fmt.Fprintf(&b, "\n> Description: %s", description)
	}
	return b.String()
}

func listing(todos []*model.Todo) string {
	lines := make([]string, 0, len(todos)+1)
	lines = append(lines, msgListHeader)

	for i, todo := range todos {
		line := fmt.Sprintf("%d. **%s**", i+1, displayName(todo))
		if todo.Due != "" {
			line += fmt.Sprintf(" (due: %s)", todo.Due)
		}
		if todo.Description != "" {
			line += " — " + todo.Description
		}
		if todo.Completed {
			line += " finished!"
		}
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n")
}

func optionDescription(todo *model.Todo) string {
	var desc string
	if todo.Due != "" {
		desc = fmt.Sprintf("Due: %s. ", todo.Due)
	}
	if todo.Description != "" {
		desc += todo.Description
	} else {
		desc += "No description provided."
	}
	return truncate(desc, OptionDescriptionMaxLength)
}

func displayName(todo *model.Todo) string {
	if todo.Name == "" {
		return "(no name)"
	}
	return todo.Name
}

// truncate cuts s to at most max runes.
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
