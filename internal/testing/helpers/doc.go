// Package helpers contains shared test utilities: an HTTP request builder,
// problem-details and record-existence assertions, and Ptr for taking the
// address of a literal (notify := helpers.Ptr(false)).
package helpers
