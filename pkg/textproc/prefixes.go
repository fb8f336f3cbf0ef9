/*
Copyright 2025 The llm-d Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package textproc

import (
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"
)

// nonBreakingPrefixes lists, per language, the words that do not end a
// sentence when followed by a period. Single letters are always treated as
// initials.
var nonBreakingPrefixes = map[string]sets.Set[string]{
	"en": sets.New(
		"Adj", "Adm", "Adv", "Asst", "Bart", "Bldg", "Brig", "Bros", "Capt", "Cmdr", "Col",
		"Comdr", "Con", "Corp", "Cpl", "DR", "Dr", "Drs", "Ens", "Gen", "Gov", "Hon", "Hr",
		"Hosp", "Insp", "Lt", "MM", "MR", "MRS", "MS", "Maj", "Messrs", "Mlle", "Mme", "Mr",
		"Mrs", "Ms", "Msgr", "Op", "Ord", "Pfc", "Ph", "Prof", "Pvt", "Rep", "Reps", "Res",
		"Rev", "Rt", "Sen", "Sens", "Sfc", "Sgt", "Sr", "St", "Supt", "Surg", "Jr", "Inc",
		"Ltd", "Co", "vs", "etc", "esp", "approx", "dept", "fig", "figs", "no", "No", "nos",
		"Nos", "Art", "pp", "Jan", "Feb", "Mar", "Apr", "Jun", "Jul", "Aug", "Sep", "Sept",
		"Oct", "Nov", "Dec", "e.g", "i.e", "al",
	),
	"de": sets.New(
		"Abs", "Abt", "Adr", "Ausg", "Bd", "Bsp", "bzw", "ca", "Chr", "d.h", "Dr", "evtl",
		"Fa", "Fr", "geb", "gegr", "ggf", "Hr", "Hrn", "i.A", "inkl", "Jh", "Kap", "Mio",
		"Mrd", "Nr", "Prof", "Str", "Tel", "u.a", "usw", "vgl", "z.B", "z.T", "zzgl",
	),
	"fr": sets.New(
		"M", "MM", "Mme", "Mmes", "Mlle", "Mlles", "Dr", "Pr", "Me", "Mgr", "St", "Ste",
		"av", "bd", "cf", "chap", "env", "etc", "ex", "fig", "hab", "p", "pp", "vol", "vs",
	),
	"es": sets.New(
		"Sr", "Sra", "Srta", "Sres", "Dr", "Dra", "Ud", "Uds", "Vd", "Vds", "aprox", "av",
		"etc", "pág", "págs", "tel", "vol",
	),
}

// NonBreakingPrefixes returns the non-breaking prefixes of lang, falling back
// to English for unknown languages.
func NonBreakingPrefixes(lang string) sets.Set[string] {
	if prefixes, ok := nonBreakingPrefixes[baseLanguage(lang)]; ok {
		return prefixes
	}
	return nonBreakingPrefixes["en"]
}

// baseLanguage reduces a language code such as "en-US" to "en".
func baseLanguage(lang string) string {
	lang = strings.ToLower(lang)
	if i := strings.IndexAny(lang, "-_"); i >= 0 {
		lang = lang[:i]
	}
	return lang
}
