// Package rules holds the textual conventions of the policy language that the
// dashboard relies on without validating: the rule separator ":-", the body
// literal separator ")," and the table qualifier ":".
//
// Parsing here is deliberately textual. Format splits on separators and
// ParseHead reads the first parenthesised argument list; neither understands
// nested terms or quoted strings.
package rules
