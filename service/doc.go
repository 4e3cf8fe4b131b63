// Package service implements the request handlers of the server and wires
// them into a router.Router.
package service
