package emit

import "strings"

// computeFoldLength chooses how much of foldStart (of logical length
// lineLength) to include in the next folded segment, porting the
// windowed transition-search of the original implementation
// (original_source/src/tools/linguist.c's compute_fold_length) rune for
// rune: prefer folding at a whitespace-to-non-whitespace transition as
// close as possible to targetLength, falling back to the nearest
// non-semicolon position when the whole window is semicolons and folding
// before a semicolon is disallowed.
func computeFoldLength(foldStart []rune, lineLength, targetLength, window int, allowFoldBeforeSemi bool) int {
	if lineLength <= targetLength+window {
		return lineLength
	}

	bestCategory := 0
	bestDiff := -(window + 1)

	category := func(prevWasSpace bool, c rune) int {
		if !allowFoldBeforeSemi && c == ';' {
			return 0
		}
		isSpace := c == ' ' || c == '\t'
		v := 0
		if prevWasSpace {
			v += 2
		}
		if !isSpace {
			v++
		}
		return v
	}

	thisChar := foldStart[targetLength-(window+1)]
	isSpace := thisChar == ' ' || thisChar == '\t'

	diff := -window
	for ; diff != 0; diff++ {
		wasSpace := isSpace
		thisChar = foldStart[targetLength+diff]
		isSpace = thisChar == ' ' || thisChar == '\t'
		cat := category(wasSpace, thisChar)
		if cat >= bestCategory {
			bestDiff = diff
			bestCategory = cat
		}
	}

	for ; diff <= window; diff++ {
		wasSpace := isSpace
		thisChar = foldStart[targetLength+diff]
		isSpace = thisChar == ' ' || thisChar == '\t'
		cat := category(wasSpace, thisChar)
		if cat == 3 {
			bestDiff = diff
			break
		} else if cat > bestCategory {
			bestDiff = diff
			bestCategory = cat
		} else if cat == bestCategory && diff <= -bestDiff {
			bestDiff = diff
			bestCategory = cat
		}
	}

	if bestCategory != 0 {
		return targetLength + bestDiff
	}

	best := targetLength - (window + 1)
	for best > 0 && foldStart[best] == ';' {
		best--
	}
	return best
}

// buildTextField renders text as a CIF semicolon text field, including
// the leading "\n;" and trailing ";" delimiters, applying line-folding
// and/or text-prefixing per spec.md §4.5's protocol-opening line and the
// folding algorithm above. Ported from print_text_field in
// original_source/src/tools/linguist.c.
func buildTextField(text string, doFold, doPrefix bool, maxFoldLength, foldWindow int) string {
	var b strings.Builder
	b.WriteString("\n;")

	if !doFold && !doPrefix {
		b.WriteString(text)
		b.WriteString("\n;")
		return b.String()
	}

	if doPrefix {
		b.WriteString(textPrefix + `\`)
	}
	if doFold {
		b.WriteString(`\`)
	}
	b.WriteString("\n")

	prefixLen := 0
	if doPrefix {
		prefixLen = len(textPrefix)
	}

	for _, logicalLine := range splitKeepingLineBreaks(text) {
		line := []rune(logicalLine)

		if !doFold {
			if doPrefix {
				b.WriteString(textPrefix)
			}
			b.WriteString(string(line))
			b.WriteString("\n")
			continue
		}

		foldStart := 0
		for {
			limit := len(line) - foldStart
			target := maxFoldLength - foldWindow - prefixLen
			foldLen := computeFoldLength(line[foldStart:], limit, target, foldWindow, doPrefix)
			segment := line[foldStart : foldStart+foldLen]

			if foldLen == limit {
				protect := foldLen > 0 && isProtectedTrailer(segment[foldLen-1])
				if doPrefix {
					b.WriteString(textPrefix)
				}
				b.WriteString(string(segment))
				if protect {
					b.WriteString(`\` + "\n")
				} else {
					b.WriteString("\n")
				}
			} else {
				if doPrefix {
					b.WriteString(textPrefix)
				}
				b.WriteString(string(segment))
				b.WriteString(`\` + "\n")
			}

			foldStart += foldLen
			if foldStart >= len(line) {
				break
			}
		}
	}

	b.WriteString(";")
	return b.String()
}

// textPrefix is the text-prefixing marker, spec.md §4.5 / original PREFIX.
const textPrefix = "> "

func isProtectedTrailer(r rune) bool {
	return r == ' ' || r == '\t' || r == '\\'
}

// splitKeepingLineBreaks splits text into logical lines the way
// print_text_field's line_start/line_end scan does: on "\n" or "\r\n",
// without retaining the terminator itself.
func splitKeepingLineBreaks(text string) []string {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(normalized, "\n")
}
