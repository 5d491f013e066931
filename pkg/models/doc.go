// Package models contains the typed records returned by Helix endpoints.
//
// Each type is a flat mirror of one upstream JSON entity. Records carry no
// identity beyond their fields and are owned by the caller after decoding.
package models
