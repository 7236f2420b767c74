package routeerr

// Template defines the registered code and wording of a Kind.
type Template struct {
	Code       any
	Message    string
	Suggestion string
}

// registry maps kinds to their templates.
var registry = map[Kind]Template{
	KindNotFound: {
		Code:       404,
		Message:    "Page not found",
		Suggestion: "Check the route tree for a pattern matching this path, or configure a fallback route.",
	},
	KindRenderTargetMissing: {
		Code:       "OUTLET_MISSING",
		Message:    "Router outlet element not found",
		Suggestion: "Add a <u-outlet> element inside the router root element.",
	},
	KindContentLoadFailed: {
		Code:       "CONTENT_LOAD_FAILED",
		Message:    "Failed to load route content",
		Suggestion: "The route's content producer returned an error or no content.",
	},
	KindContentRenderFailed: {
		Code:       "CONTENT_RENDER_FAILED",
		Message:    "Failed to render route content",
		Suggestion: "The outlet rejected the produced content; check that it is a node, a vdom element or a template.",
	},
	KindUnknown: {
		Code:    500,
		Message: "Unexpected navigation error",
	},
}

// lookup returns the template for kind, falling back to KindUnknown.
func lookup(kind Kind) Template {
	if tmpl, ok := registry[kind]; ok {
		return tmpl
	}
	return registry[KindUnknown]
}

// Suggestion returns the registered fix hint for kind.
func Suggestion(kind Kind) string {
	return lookup(kind).Suggestion
}
