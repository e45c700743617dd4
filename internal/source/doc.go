// Package source reads shipper records from input files. The only
// supported format is CSV with a header row; the columns holding the
// shipper name and address are configurable because manifests from
// different forwarders label them differently.
package source
