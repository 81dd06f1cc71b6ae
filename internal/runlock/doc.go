// Package runlock keeps two transfers from writing into the same outgoing
// root at once.
package runlock
