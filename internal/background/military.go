package background

import "strings"

// academyAliases maps spellings of the federal service academies to a short code.
var academyAliases = map[string]string{
	"usafa":                                 "usafa",
	"air force academy":                     "usafa",
	"us air force academy":                  "usafa",
	"u.s. air force academy":                "usafa",
	"united states air force academy":       "usafa",
	"usma":                                  "usma",
	"west point":                            "usma",
	"united states military academy":        "usma",
	"us military academy":                   "usma",
	"u.s. military academy":                 "usma",
	"usna":                                  "usna",
	"naval academy":                         "usna",
	"us naval academy":                      "usna",
	"u.s. naval academy":                    "usna",
	"united states naval academy":           "usna",
	"uscga":                                 "uscga",
	"coast guard academy":                   "uscga",
	"us coast guard academy":                "uscga",
	"united states coast guard academy":     "uscga",
	"usmma":                                 "usmma",
	"merchant marine academy":               "usmma",
	"us merchant marine academy":            "usmma",
	"united states merchant marine academy": "usmma",
}

// AcademyAliases returns every known academy spelling with its code.
func AcademyAliases() map[string]string {
	out := make(map[string]string, len(academyAliases))
	for alias, code := range academyAliases {
		out[alias] = code
	}
	return out
}

// Academy resolves a service academy name to its code.
func Academy(name string) (string, bool) {
	key := Normalize(name)
	key = strings.TrimPrefix(key, "the ")
	code, ok := academyAliases[key]
	return code, ok
}
