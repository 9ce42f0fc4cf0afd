// Package models defines the request payloads sent to the AgriSense backend
// and the response schemas decoded from it.
//
// Response fields the backend may omit are pointers or zero-valued strings;
// the defaulting rules for them live in the Normalize methods and nowhere
// else. Callers should Normalize once after decoding.
package models
