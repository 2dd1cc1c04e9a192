// Package tui fills forms from a terminal. A Session prompts each field with
// a PromptDriver (survey by default), routes answers through the controller
// as change and blur events and prints notifications through the Terminal
// view.
package tui
