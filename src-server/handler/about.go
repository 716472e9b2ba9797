// This package contains the Discord handlers of the community bot:
// verification, welcome messages, the admin panel and ping. The ticket
// workflow lives in ticket_handler.
//
// There should be 2 functions per handler, one for adding the handler &
// information to send to Discord (public), and one for handling the
// interaction (private).
//
// Only return errors when it's the backend's fault, nil if user's fault.
package handler
