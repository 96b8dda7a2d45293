// Package verification builds the registration status page reached from an
// emailed link. Link parameters are checked before the backend is called.
package verification
