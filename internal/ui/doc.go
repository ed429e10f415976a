// Package ui implements an interactive terminal dashboard using bubbletea's Elm architecture.
//
// The TUI moves through three views:
//  1. [LoadingView] : Spinner while the sections load, each rendered as soon as it settles
//  2. [DashboardView] : Wrapped cards, top lists and the selected distribution chart
//  3. [LoggedOutView] : Shown after logout or when a token refresh fails
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the tasks Loader, so the spinner keeps running during the load.
//
// Switching chart views (g, a, t, A, tab) rebuilds the series from the loaded data without a network call.
// Contextual help is displayed via charmbracelet/bubbles/help.
package ui
