// Package classifier turns raw roster rows into normalized records grouped by category.
//
// # Rules
//
// Each row yields exactly one [models.Record] in exactly one category:
//
//  1. Email passes through unchanged.
//  2. First and last names delivered as raw bytes are decoded with a single legacy 8-bit
//     encoding (ISO-8859-1 unless configured otherwise). Text names pass through.
//  3. The national ID is reduced to ASCII digits, left-padded with zeros to 11 characters,
//     and the first 6 characters are kept. An absent ID becomes "000000".
//  4. The role is compared case-insensitively, whole string, against "docente" (faculty)
//     and "discente" (student). Everything else lands in other.
//
// Note that rule 3 keeps a prefix of the padded value: "42" becomes "000000", not "000042".
//
// Any error aborts the whole batch; no partial result is returned.
package classifier
