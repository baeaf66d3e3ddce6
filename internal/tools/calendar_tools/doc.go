// Package calendar_tools defines the calendar tool catalogue the agent can
// invoke: availability checks, event creation, updates, deletion, search,
// listing and a current-time source.
//
// The catalogue is bound per request to a Gateway (normally a calendar.Client
// authorized with the request's credential) and produced as agent tool
// definitions. The same catalogue is also exposed over MCP for clients that
// speak the Model Context Protocol instead of the chat endpoint.
package calendar_tools
