// Package canonical encodes JSON values in RFC 8785 canonical form and
// computes domain-separated digests over that encoding.
//
// Two values that are equal as JSON encode to the same bytes: object keys are
// sorted by UTF-16 code units, strings are NFC normalized, HTML characters are
// left unescaped and numbers use the shortest round-trip form.
package canonical
