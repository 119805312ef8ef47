// Package domain models shared map lists and the locations recovered from them.
//
// # Data Source
//
// A shared list is a public Google Maps page (https://www.google.com/maps/...) or a
// short link to one (https://maps.app.goo.gl/...). The page does not expose its
// places through a documented API. Instead the list is serialized into one of the
// inline <script> blocks as a deeply nested array literal, itself embedded inside a
// JavaScript string, so every quote and backslash carries one extra escaping layer.
//
// # Payload Conventions
//
// The array carries no field names. Each place contributes four independent signals
// that sit at varying depths inside its entry:
//
//	Name:        a plain string, e.g. "Example Cafe", sometimes prefixed with a
//	             plus code: "7JVW+9M8 Example Cafe".
//	Coordinates: a four-element group [null,null,<lat>,<lng>].
//	Identifier:  a pair of 15–25 digit strings ["<feature id>","<cid>"]; the second
//	             element is the place CID and may arrive as a negative signed 64-bit
//	             value, e.g. "-4611686018427381467" for CID 13835058055282170149.
//	Knowledge graph ids ("/g/11b6...") appear throughout the entries; their count
//	is what identifies the script block holding the list.
//
// # Canonical URLs
//
// Imported rows store a canonical external URL. With a CID the URL is
// https://maps.google.com/?cid=<cid>; without one it falls back to a coordinate
// search URL. The CID form is the stronger dedup key: two rows within one collection
// never share it, and no two rows sit within ~1 m (1e-5 degrees) of each other.
package domain
