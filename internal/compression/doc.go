// Package compression implements the byte-aligned variable-length integer
// and length-prefixed string codec used throughout compiled dictionaries.
//
// Varint layout (1-4 bytes, big-endian value bits):
//
//	First byte  Length  Range
//	----------  ------  ------------------------
//	00xxxxxx    1       value < 0x40
//	01xxxxxx    2       value < 0x4000
//	10xxxxxx    3       value < 0x400000
//	11xxxxxx    4       value < 0x40000000
//
// Strings are a varint length followed by one varint per UTF-16 code unit.
package compression
