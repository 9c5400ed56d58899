// Package tui provides the terminal user interface for weave.
//
// The screen is split into a terminal on the left (session log, spinner
// and query input) and a tabbed panel on the right showing the generated
// timeline, the agent cards, and the memory (preferences) form. A header
// shows the connection badge; a toast line and key hints sit at the bottom.
//
// The App renders a store.State and changes it only by dispatching
// store actions from Update. Background work reports back the same way:
//
//	program, app := tui.NewInteractiveProgram(st, tui.Options{AltScreen: true})
//	app.SetSubmitHandler(func(q string) { _ = sh.Submit(ctx, q) })
//
//	// from any goroutine
//	program.Send(store.ConnectionChanged{Connected: true})
//
// Handlers set on the App run as tea commands, so they may block on the
// network without freezing the UI.
package tui
