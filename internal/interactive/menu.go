// Package interactive provides terminal user interface components
package interactive

import (
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/ethpandaops/query-validator/internal/testing/testdef"
)

// MenuOption represents a menu item with its associated action
type MenuOption struct {
	Name        string
	Description string
	Action      func() error
}

var (
	// ErrExit is returned when the user chooses to exit
	ErrExit = errors.New("exit")
	// ErrInvalidSelection is returned when an invalid menu option is selected
	ErrInvalidSelection = errors.New("invalid selection")
	// ErrNoTestsSelected is returned when the user picks no tests
	ErrNoTestsSelected = errors.New("no tests selected")
)

// ShowMainMenu displays the main menu and handles user selection
func ShowMainMenu(options []MenuOption) error {
	choices := make([]string, 0, len(options)+1)
	optionMap := make(map[string]MenuOption)

	for _, opt := range options {
		choice := fmt.Sprintf("%s - %s", opt.Name, opt.Description)
		choices = append(choices, choice)
		optionMap[choice] = opt
	}

	choices = append(choices, "Exit")

	var selected string
	prompt := &survey.Select{
		Message: "What would you like to do?",
		Options: choices,
	}

	if err := survey.AskOne(prompt, &selected); err != nil {
		return ErrExit
	}

	if selected == "Exit" {
		return ErrExit
	}

	if option, ok := optionMap[selected]; ok {
		return option.Action()
	}

	return ErrInvalidSelection
}

// SelectTests lets the user pick which definitions to run. All are
// preselected.
func SelectTests(defs []*testdef.TestDefinition) ([]*testdef.TestDefinition, error) {
	labels := testLabels(defs)

	var selected []string
	prompt := &survey.MultiSelect{
		Message:  "Select tests to run:",
		Options:  labels,
		Default:  labels,
		PageSize: 15,
	}

	if err := survey.AskOne(prompt, &selected); err != nil {
		return nil, ErrExit
	}

	chosen := pickByLabel(defs, selected)
	if len(chosen) == 0 {
		return nil, ErrNoTestsSelected
	}

	return chosen, nil
}

// PauseForEnter waits for the user to press Enter
func PauseForEnter() {
	fmt.Println("\nPress Enter to continue...")
	_, _ = fmt.Scanln()
}

// testLabels renders one unique option per definition.
func testLabels(defs []*testdef.TestDefinition) []string {
	labels := make([]string, len(defs))
	for i, def := range defs {
		labels[i] = label(i, def)
	}

	return labels
}

func label(i int, def *testdef.TestDefinition) string {
	return fmt.Sprintf("%d. %s", i+1, def.Name)
}

// pickByLabel returns the definitions whose labels were selected, keeping
// the original order.
func pickByLabel(defs []*testdef.TestDefinition, selected []string) []*testdef.TestDefinition {
	wanted := make(map[string]bool, len(selected))
	for _, s := range selected {
		wanted[s] = true
	}

	chosen := make([]*testdef.TestDefinition, 0, len(selected))
	for i, def := range defs {
		if wanted[label(i, def)] {
			chosen = append(chosen, def)
		}
	}

	return chosen
}
