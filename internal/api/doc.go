// Package api contains the HTTP handlers for the booking platform: auth,
// orders, gift cards, special offers, apartments, subscriptions and the
// service catalog. Handlers decode and validate requests, call the service
// layer, and translate service errors into sanitized HTTP responses.
package api
