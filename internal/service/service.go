// Package service contains the business logic.
//
// It sits between the handler layer and the outbound integrations.
// It receives validated data from the handler, performs
// business operations, and calls the Vapi client to place calls
package service
