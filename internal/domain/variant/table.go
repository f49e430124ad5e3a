package variant

// confusables maps a base Latin letter to visually-similar code points drawn
// from the Cyrillic, Greek and accented-Latin blocks. Both cases are present
// as keys; lookup is case-sensitive on the key and candidate lists are
// ordered. Candidates are written as escapes rather than glyphs; most of
// them are indistinguishable from their Latin lookalikes in an editor.
var confusables = map[rune][]rune{
	'a': {'\u0430', '\u0101', '\u0103', '\u0105', '\u03AC', '\u03B1', '\u0430'}, // а ā ă ą ά α а
	'e': {'\u0435', '\u0113', '\u0117', '\u0119', '\u03AD', '\u03B5', '\u0435'}, // е ē ė ę έ ε е
	'i': {'\u0456', '\u012B', '\u012F', '\u03AF', '\u03B9', '\u0456'}, // і ī į ί ι і
	'o': {'\u043E', '\u014D', '\u0151', '\u03CC', '\u03BF', '\u043E'}, // о ō ő ό ο о
	'u': {'\u03C5', '\u016B', '\u0173', '\u03CD', '\u03C5'}, // υ ū ų ύ υ
	'c': {'\u0441', '\u0107', '\u010D', '\u010B', '\u0441'}, // с ć č ċ с
	'p': {'\u0440', '\u03C1', '\u0440'}, // р ρ р
	'x': {'\u0445', '\u03C7', '\u0445'}, // х χ х
	'y': {'\u0443', '\u00FD', '\u00FF', '\u0443'}, // у ý ÿ у
	's': {'\u0455', '\u015B', '\u0161', '\u0219', '\u0455'}, // ѕ ś š ș ѕ
	'n': {'\u0578', '\u00F1', '\u0144', '\u0148'}, // ո ñ ń ň
	'h': {'\u04BB', '\u045B', '\u04BB'}, // һ ћ һ
	'j': {'\u0458', '\u0458'}, // ј ј
	'k': {'\u03BA', '\u0137', '\u0138'}, // κ ķ ĸ
	'l': {'\u04CF', '\u013A', '\u013C', '\u013E'}, // ӏ ĺ ļ ľ
	'm': {'\u043C', '\u1E41', '\u043C'}, // м ṁ м
	't': {'\u03C4', '\u0163', '\u0165'}, // τ ţ ť
	'w': {'\u03C9', '\u0175', '\u1E81', '\u1E83'}, // ω ŵ ẁ ẃ
	'z': {'\u03B6', '\u017A', '\u017C', '\u017E'}, // ζ ź ż ž
	'A': {'\u0391', '\u0410', '\u0100', '\u0102', '\u0410'}, // Α А Ā Ă А
	'B': {'\u0412', '\u0392', '\u0412'}, // В Β В
	'C': {'\u0421', '\u03F9', '\u0421'}, // С Ϲ С
	'E': {'\u0415', '\u0395', '\u0112', '\u0415'}, // Е Ε Ē Е
	'H': {'\u0397', '\u041D', '\u04A2', '\u041D'}, // Η Н Ң Н
	'I': {'\u0399', '\u0406', '\u04C0', '\u0406'}, // Ι І Ӏ І
	'J': {'\u0408', '\u0408'}, // Ј Ј
	'K': {'\u039A', '\u041A', '\u0136', '\u041A'}, // Κ К Ķ К
	'M': {'\u041C', '\u039C', '\u041C'}, // М Μ М
	'N': {'\u039D', '\u039D'}, // Ν Ν
	'O': {'\u039F', '\u041E', '\u014C', '\u041E'}, // Ο О Ō О
	'P': {'\u03A1', '\u0420', '\u0420'}, // Ρ Р Р
	'S': {'\u0405', '\u015A', '\u0405'}, // Ѕ Ś Ѕ
	'T': {'\u03A4', '\u0422', '\u0422'}, // Τ Т Т
	'X': {'\u03A7', '\u0425', '\u0425'}, // Χ Х Х
	'Y': {'\u03A5', '\u04AE', '\u04EE'}, // Υ Ү Ӯ
	'Z': {'\u0396', '\u0179', '\u017B'}, // Ζ Ź Ż
}

// zeroWidthChars are invisible code points usable inside an email local part.
// Order matters: the mixed strategy only uses the first two.
var zeroWidthChars = []rune{
	'\u200B', // zero width space
	'\u200C', // zero width non-joiner
	'\u200D', // zero width joiner
	'\u2060', // word joiner
	'\uFEFF', // zero width no-break space
}
