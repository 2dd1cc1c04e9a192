package render

// Options carry per-request data renderers need beyond the form state.
type Options struct {
	// Action is the URL the rendered form posts to.
	Action string
	// Method defaults to POST.
	Method string
	// Hidden inputs emitted alongside the visible fields.
	Hidden []HiddenField
	// Locale selects translated chrome where a renderer has any.
	Locale string
}

// MethodOrDefault returns Method or POST.
func (o Options) MethodOrDefault() string {
	if o.Method == "" {
		return "POST"
	}
	return o.Method
}
