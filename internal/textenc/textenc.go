// Package textenc maps the recognized encoding names to golang.org/x/text
// codecs and performs strict decoding and encoding of CSV payloads.
//
// Names are matched exactly against a fixed allow-list; a name that is not
// listed is rejected before any file is touched.
package textenc

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
)

// Errors returned by this package.
var (
	ErrUnknownEncoding = errors.New("unknown encoding")
	ErrDecode          = errors.New("file cannot be read in this encoding")
	ErrEncode          = errors.New("text cannot be written in this encoding")
)

// Default is the encoding used when none is configured.
const Default = "utf-8"

type family int

const (
	familyCharmap family = iota
	familyUTF8
	familyASCII
)

// entry is one allow-listed codec. UTF-8 entries carry an enc only when the
// payload has a byte order mark.
type entry struct {
	enc    encoding.Encoding
	family family
}

var (
	utf16Native = unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	utf16BE     = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	utf16LE     = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	utf32Native = utf32.UTF32(utf32.LittleEndian, utf32.UseBOM)
	utf32BE     = utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM)
	utf32LE     = utf32.UTF32(utf32.LittleEndian, utf32.IgnoreBOM)
)

var registry = map[string]entry{
	"ascii":        {family: familyASCII},
	"big5":         {enc: traditionalchinese.Big5},
	"cp037":        {enc: charmap.CodePage037},
	"cp437":        {enc: charmap.CodePage437},
	"cp850":        {enc: charmap.CodePage850},
	"cp852":        {enc: charmap.CodePage852},
	"cp855":        {enc: charmap.CodePage855},
	"cp858":        {enc: charmap.CodePage858},
	"cp860":        {enc: charmap.CodePage860},
	"cp862":        {enc: charmap.CodePage862},
	"cp863":        {enc: charmap.CodePage863},
	"cp865":        {enc: charmap.CodePage865},
	"cp866":        {enc: charmap.CodePage866},
	"cp874":        {enc: charmap.Windows874},
	"cp932":        {enc: japanese.ShiftJIS},
	"cp949":        {enc: korean.EUCKR},
	"cp950":        {enc: traditionalchinese.Big5},
	"cp1140":       {enc: charmap.CodePage1140},
	"cp1250":       {enc: charmap.Windows1250},
	"cp1251":       {enc: charmap.Windows1251},
	"cp1252":       {enc: charmap.Windows1252},
	"cp1253":       {enc: charmap.Windows1253},
	"cp1254":       {enc: charmap.Windows1254},
	"cp1255":       {enc: charmap.Windows1255},
	"cp1256":       {enc: charmap.Windows1256},
	"cp1257":       {enc: charmap.Windows1257},
	"cp1258":       {enc: charmap.Windows1258},
	"euc_jp":       {enc: japanese.EUCJP},
	"euc_kr":       {enc: korean.EUCKR},
	"gb2312":       {enc: simplifiedchinese.GBK},
	"gbk":          {enc: simplifiedchinese.GBK},
	"gb18030":      {enc: simplifiedchinese.GB18030},
	"hz":           {enc: simplifiedchinese.HZGB2312},
	"iso2022_jp":   {enc: japanese.ISO2022JP},
	"latin_1":      {enc: charmap.ISO8859_1},
	"iso8859_2":    {enc: charmap.ISO8859_2},
	"iso8859_3":    {enc: charmap.ISO8859_3},
	"iso8859_4":    {enc: charmap.ISO8859_4},
	"iso8859_5":    {enc: charmap.ISO8859_5},
	"iso8859_6":    {enc: charmap.ISO8859_6},
	"iso8859_7":    {enc: charmap.ISO8859_7},
	"iso8859_8":    {enc: charmap.ISO8859_8},
	"iso8859_9":    {enc: charmap.ISO8859_9},
	"iso8859_10":   {enc: charmap.ISO8859_10},
	"iso8859_13":   {enc: charmap.ISO8859_13},
	"iso8859_14":   {enc: charmap.ISO8859_14},
	"iso8859_15":   {enc: charmap.ISO8859_15},
	"iso8859_16":   {enc: charmap.ISO8859_16},
	"koi8_r":       {enc: charmap.KOI8R},
	"koi8_u":       {enc: charmap.KOI8U},
	"mac_cyrillic": {enc: charmap.MacintoshCyrillic},
	"mac_roman":    {enc: charmap.Macintosh},
	"shift_jis":    {enc: japanese.ShiftJIS},
	"utf_32":       {enc: utf32Native},
	"utf_32_be":    {enc: utf32BE},
	"utf_32_le":    {enc: utf32LE},
	"utf_16":       {enc: utf16Native},
	"utf_16_be":    {enc: utf16BE},
	"utf_16_le":    {enc: utf16LE},
	"utf_8":        {family: familyUTF8},
	"utf_8_sig":    {family: familyUTF8, enc: unicode.UTF8BOM},
	"utf-8":        {family: familyUTF8},
	"utf8":         {family: familyUTF8},
	"utf8sig":      {family: familyUTF8, enc: unicode.UTF8BOM},
	"utf-16":       {enc: utf16Native},
	"utf16":        {enc: utf16Native},
	"utf16le":      {enc: utf16LE},
	"utf16be":      {enc: utf16BE},
	"utf-32":       {enc: utf32Native},
	"utf32":        {enc: utf32Native},
	"utf32be":      {enc: utf32BE},
	"utf32le":      {enc: utf32LE},
}

// Encoding is a validated entry of the allow-list.
type Encoding struct {
	name string
	e    entry
}

// Names returns the recognized encoding names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Known reports whether name is on the allow-list.
func Known(name string) bool {
	_, ok := registry[name]
	return ok
}

// Lookup validates name against the allow-list.
func Lookup(name string) (*Encoding, error) {
	e, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
	return &Encoding{name: name, e: e}, nil
}

// Name returns the allow-list name.
func (e *Encoding) Name() string { return e.name }

// Decode converts raw bytes to UTF-8 text. Bytes that have no mapping in the
// encoding fail with ErrDecode instead of being replaced.
func (e *Encoding) Decode(b []byte) (string, error) {
	switch e.e.family {
	case familyASCII:
		for i, c := range b {
			if c >= utf8.RuneSelf {
				return "", fmt.Errorf("%w: byte 0x%02x at offset %d is not %s", ErrDecode, c, i, e.name)
			}
		}
		return string(b), nil
	case familyUTF8:
		if !utf8.Valid(b) {
			return "", fmt.Errorf("%w: invalid %s sequence", ErrDecode, e.name)
		}
		if e.e.enc == nil {
			return string(b), nil
		}
		out, err := e.e.enc.NewDecoder().Bytes(b)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrDecode, err)
		}
		return string(out), nil
	}

	out, err := e.e.enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	// x/text decoders substitute U+FFFD for unmapped input.
	if bytes.ContainsRune(out, utf8.RuneError) {
		return "", fmt.Errorf("%w: unmapped bytes for %s", ErrDecode, e.name)
	}
	return string(out), nil
}

// Encode converts UTF-8 text to the encoding. Runes the encoding cannot
// represent fail with ErrEncode.
func (e *Encoding) Encode(s string) ([]byte, error) {
	switch e.e.family {
	case familyASCII:
		for _, r := range s {
			if r >= utf8.RuneSelf {
				return nil, fmt.Errorf("%w: %q is not %s", ErrEncode, r, e.name)
			}
		}
		return []byte(s), nil
	case familyUTF8:
		if e.e.enc == nil {
			return []byte(s), nil
		}
	}

	out, err := e.e.enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return out, nil
}
