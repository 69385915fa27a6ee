// Package httperror defines request errors that carry an HTTP status hint.
//
// Handlers and modifiers report failures as ordinary Go errors. When such an
// error reaches the error handler, the engine derives the response status
// from the first *Error found in the unwrap chain, defaulting to 500
// Internal Server Error for plain errors. Wrapping keeps the cause available
// to errors.Is and errors.As:
//
//	if err := store.Delete(id); err != nil {
//	    return app.Output{}, httperror.Wrap(http.StatusConflict, err)
//	}
//
// Message resolves the text shown to the client. Plain errors resolve to
// the bare status text, so internal details never reach a response body
// unless placed in an Error explicitly.
package httperror
