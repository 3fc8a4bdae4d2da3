// Package parsers maps classified file kinds to the closed set of
// source parsers. Parsers delimit text-bearing payload regions; they
// never decode text themselves.
package parsers
