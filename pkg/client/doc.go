// Package client talks to the forms backend through one generic call
// primitive, Invoker. Service wraps it with typed actions; HTTPInvoker and
// MemoryInvoker are the two transports.
package client
