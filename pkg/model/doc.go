// Package model defines the form state a controller owns: ordered fields with
// their current text value, declared constraints and recorded validity, plus
// the lifecycle phase of the whole form. Definitions describe a form
// declaratively (from YAML, JSON or an OpenAPI request body) and
// NewFormState turns them into a live FormState for one view.
package model
