// Package boltsource is a JSON document store on bbolt that implements
// record.Source.
//
// Each record.Type maps to a bucket named by Type.Table. Documents are keyed
// by time-ordered UUIDv7 identities, so bucket order is insertion order.
// Insert stamps every document with its creation instant in RFC 3339 form;
// attribute reads go through gjson paths, so nested fields such as
// "owner.name" can be matched directly.
package boltsource
