package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Config Errors (E120-E141)
	// ============================================

	"E120": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "The configuration file could not be read or parsed.",
		DocURL:   "https://vldom.dev/docs/errors/E120",
	},
	"E121": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A configuration field holds a value outside its allowed set.",
		DocURL:   "https://vldom.dev/docs/errors/E121",
	},
	"E141": {
		Category: CategoryConfig,
		Message:  "Configuration not found",
		Detail:   "No vldom.json or vldom.yaml was found in the project directory.",
		DocURL:   "https://vldom.dev/docs/errors/E141",
	},

	// ============================================
	// CLI Errors (E145-E149)
	// ============================================

	"E145": {
		Category: CategoryCLI,
		Message:  "Invalid arguments",
		Detail:   "The command was called with missing or malformed arguments.",
		DocURL:   "https://vldom.dev/docs/errors/E145",
	},
	"E146": {
		Category: CategoryCLI,
		Message:  "State store unavailable",
		Detail:   "The navigation history database could not be opened.",
		DocURL:   "https://vldom.dev/docs/errors/E146",
	},

	// ============================================
	// Export Errors (E150-E159)
	// ============================================

	"E150": {
		Category: CategoryExport,
		Message:  "Export failed",
		Detail:   "A rendered page could not be written to the export target.",
		DocURL:   "https://vldom.dev/docs/errors/E150",
	},
	"E151": {
		Category: CategoryExport,
		Message:  "Page did not settle",
		Detail:   "Rendering did not finish before the deadline.",
		DocURL:   "https://vldom.dev/docs/errors/E151",
	},

	// ============================================
	// Routing Errors (E200, E203-E204)
	// ============================================

	"E200": {
		Category: CategoryRouting,
		Message:  "Invalid route",
		Detail:   "No registered route matches the requested path.",
		DocURL:   "https://vldom.dev/docs/errors/E200",
	},
	"E203": {
		Category: CategoryRouting,
		Message:  "Unknown route parameter",
		Detail:   "The parameter is not declared by the component's route template.",
		DocURL:   "https://vldom.dev/docs/errors/E203",
	},
	"E204": {
		Category: CategoryRouting,
		Message:  "Invalid route table",
		Detail:   "A route table entry is malformed.",
		DocURL:   "https://vldom.dev/docs/errors/E204",
	},

	// ============================================
	// Lifecycle Errors (E201-E202)
	// ============================================

	"E201": {
		Category: CategoryLifecycle,
		Message:  "Component load failed",
		Detail:   "The component's load hook returned an error; its error content is shown instead.",
		DocURL:   "https://vldom.dev/docs/errors/E201",
	},
	"E202": {
		Category: CategoryLifecycle,
		Message:  "Component render panicked",
		Detail:   "The component's render method panicked; its error content is shown instead.",
		DocURL:   "https://vldom.dev/docs/errors/E202",
	},

	// ============================================
	// Navigation Errors (E205-E206)
	// ============================================

	"E205": {
		Category: CategoryNavigation,
		Message:  "Invalid navigation path",
		Detail:   "The navigation target could not be canonicalized.",
		DocURL:   "https://vldom.dev/docs/errors/E205",
	},
	"E206": {
		Category: CategoryNavigation,
		Message:  "Component not attached",
		Detail:   "The component is not part of a committed route chain, so it cannot navigate relative to itself.",
		DocURL:   "https://vldom.dev/docs/errors/E206",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
