package tools

import "fmt"

// Screens the terminal UI can show.
var screens = []string{"menu", "tabs", "transactions", "items", "inventory"}

func registerTerminal(r *Registry, deps Deps) error {
	err := r.Register(Definition{
		Name:        "navigate_to_screen",
		Description: "Switch the terminal display to another screen.",
		Parameters: Object{
			Type: "object",
			Properties: map[string]Property{
				"screen": {Type: "string", Enum: screens},
			},
			Required: []string{"screen"},
		},
	}, func(inv Invocation, args Args) (interface{}, error) {
		screen, verr := requiredString("navigate_to_screen", args, "screen")
		if verr != nil {
			return nil, verr
		}
		if deps.Navigate != nil {
			if err := deps.Navigate(inv.SessionID, screen); err != nil {
				return nil, Externalf("navigate_to_screen: %v", err)
			}
		}
		return map[string]interface{}{
			"message": fmt.Sprintf("Showing the %s screen.", screen),
			"screen":  screen,
		}, nil
	})
	if err != nil {
		return err
	}

	return r.Register(Definition{
		Name:        "terminate_session",
		Description: "End the voice session when the operator says goodbye.",
		Parameters:  Object{Type: "object"},
	}, func(inv Invocation, args Args) (interface{}, error) {
		if deps.Terminate != nil {
			if err := deps.Terminate(inv.SessionID); err != nil {
				return nil, Externalf("terminate_session: %v", err)
			}
		}
		return map[string]interface{}{"message": "Session ended. Goodbye."}, nil
	})
}
