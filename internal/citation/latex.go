package citation

import "strings"

// accents covers the accent commands common in author names. Braces are
// removed before these are applied, so {\'e} arrives as \'e.
var accents = strings.NewReplacer(
	`\'a`, "á", `\'e`, "é", `\'i`, "í", `\'o`, "ó", `\'u`, "ú",
	`\'A`, "Á", `\'E`, "É", `\'I`, "Í", `\'O`, "Ó", `\'U`, "Ú",
	"\\`a", "à", "\\`e", "è", "\\`A", "À",
	`\^a`, "â", `\^e`, "ê", `\^o`, "ô",
	`\~a`, "ã", `\~o`, "õ", `\~n`, "ñ", `\~A`, "Ã", `\~O`, "Õ",
	`\"a`, "ä", `\"o`, "ö", `\"u`, "ü", `\"A`, "Ä", `\"O`, "Ö", `\"U`, "Ü",
	`\c c`, "ç", `\cc`, "ç", `\c C`, "Ç",
	`\&`, "&", `\%`, "%", `\$`, "$", `\#`, "#", `\_`, "_",
	"---", "—", "--", "–",
	"~", " ",
)

// CleanLaTeX strips grouping braces and common escapes for display.
func CleanLaTeX(s string) string {
	if s == "" {
		return ""
	}
	s = strings.NewReplacer("{", "", "}", "").Replace(s)
	s = accents.Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
