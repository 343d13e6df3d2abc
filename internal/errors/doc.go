// Package errors provides structured, coded error messages for vldom.
//
// Every error raised by the route compiler, the reconciler, the router and
// the tooling carries a short code (e.g. "E200") registered in a central
// table with a message, a longer explanation and a documentation link.
//
// # Error Categories
//
//   - routing: route table and path matching errors
//   - lifecycle: component load and render failures
//   - navigation: navigation requests that cannot be honoured
//   - config: configuration file errors
//   - cli: command line errors
//   - export: static export errors
//
// # Usage
//
//	err := errors.New("E200").
//	    WithDetail(`no route matches "/other"`).
//	    WithSuggestion("Register a route for the path or a not-found component").
//	    Wrap(router.ErrInvalidRoute)
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E200: Invalid route
//	//
//	//   no route matches "/other"
//	//
//	//   Hint: Register a route for the path or a not-found component
//	//
//	//   Learn more: https://vldom.dev/docs/errors/E200
//
// Errors compare by code with errors.Is, and unwrap to the error they wrap.
package errors
