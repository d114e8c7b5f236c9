// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI is a small multi-view workflow over a [dashboard.Dashboard]:
//  1. [LoginView] : Username and password form, tab switches to registration
//  2. [RegisterView] : Same form targeting account creation
//  3. [DashboardView] : Recent uploads list beside the selected upload's statistics
//  4. [UploadView] : Path input for a CSV file to submit
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving results via the Msg union type.
// Login, registration and uploads run as commands off the render loop; a spinner is shown and keys are ignored
// until the result message arrives.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, u, x, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
