package genre

// canonicalAliases maps common spelling variations to canonical slugs.
// Keys are slugified, so "R&B", "r&b" and "RnB" all arrive as their slug.
var canonicalAliases = map[string][]string{
	// Rock
	"rock-n-roll":   {"rock-and-roll"},
	"rock-roll":     {"rock-and-roll"},
	"rocknroll":     {"rock-and-roll"},
	"classic-rock":  {"rock"},
	"prog-rock":     {"progressive-rock"},
	"prog":          {"progressive-rock"},
	"psych-rock":    {"psychedelic-rock"},
	"alt-rock":      {"alternative-rock"},
	"alternative":   {"alternative-rock"},
	"indie":         {"indie-rock"},
	"garage":        {"garage-rock"},
	"post-punk":     {"post-punk"},
	"new-wave":      {"new-wave"},
	"heavy-metal":   {"metal"},
	"hard-rock":     {"hard-rock"},

	// Jazz
	"bebop":       {"bop"},
	"be-bop":      {"bop"},
	"hardbop":     {"hard-bop"},
	"cool":        {"cool-jazz"},
	"free":        {"free-jazz"},
	"fusion":      {"jazz-fusion"},
	"jazz-funk":   {"jazz-fusion", "funk"},
	"modal":       {"modal-jazz"},
	"big-band":    {"swing"},

	// Electronic
	"electronica":   {"electronic"},
	"edm":           {"electronic"},
	"idm":           {"electronic"},
	"d-n-b":         {"drum-and-bass"},
	"dnb":           {"drum-and-bass"},
	"drum-n-bass":   {"drum-and-bass"},
	"jungle":        {"drum-and-bass"},
	"techno-house":  {"techno", "house"},
	"synthpop":      {"synth-pop"},
	"electro-pop":   {"synth-pop"},

	// Hip hop
	"hiphop":     {"hip-hop"},
	"hip-hop-rap": {"hip-hop"},
	"rap":        {"hip-hop"},
	"trip-hop":   {"trip-hop"},

	// Soul / R&B
	"r-b":            {"rhythm-and-blues"},
	"rnb":            {"rhythm-and-blues"},
	"rhythm-blues":   {"rhythm-and-blues"},
	"northern-soul":  {"soul"},
	"neo-soul":       {"soul"},
	"motown":         {"soul"},

	// Classical
	"classic":       {"classical"},
	"orchestral":    {"classical"},
	"early-music":   {"baroque"},
	"contemporary-classical": {"modern-classical"},

	// Folk / country
	"folk-rock":       {"folk", "rock"},
	"singer-songwriter": {"folk"},
	"americana":       {"country"},
	"bluegrass":       {"bluegrass"},
	"c-w":             {"country"},

	// Latin / world
	"latin-jazz": {"latin", "jazz"},
	"bossanova":  {"bossa-nova"},
	"afrobeat":   {"afrobeat"},
	"world":      {"world-music"},

	// Blues
	"delta-blues":   {"blues"},
	"chicago-blues": {"blues"},
	"electric-blues": {"blues"},

	// Reggae
	"ska-reggae": {"ska", "reggae"},
	"dub":        {"dub"},
	"rocksteady": {"reggae"},
}

// NormalizeToSlugs takes a raw genre string and returns canonical slug(s).
// Returns the slugified input if no specific mapping is found.
func NormalizeToSlugs(raw string) []string {
	slug := Slugify(raw)
	if slug == "" {
		return nil
	}
	if canonical, ok := canonicalAliases[slug]; ok {
		return canonical
	}
	return []string{slug}
}

// Normalize maps raw genre names to canonical slugs, deduplicated and in
// input order.
func Normalize(raw []string) []string {
	if len(raw) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))
	for _, name := range raw {
		for _, slug := range NormalizeToSlugs(name) {
			if seen[slug] {
				continue
			}
			seen[slug] = true
			out = append(out, slug)
		}
	}
	return out
}
