// Package naming renders proposed destination file names from the movie and
// tv templates.
//
// Tokens are substituted literally in one pass, so a value that happens to
// contain "{year}" is never expanded again. Afterwards whitespace is
// collapsed, bracket padding is trimmed, and empty "[ ]" and "( )" groups
// are dropped. With naming.sanitize set unsafe characters are removed, and
// the result is bounded to naming.max_filename_len runes with the extension
// kept intact.
//
// Judgement flags (triage markers such as REPLACE_SOON or OK) are never
// written into names.
package naming
