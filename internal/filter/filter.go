// Package filter rejects discovery candidates that are not viable SMB
// prospects: large chains, real-estate agencies, government bodies, press
// sites, franchise listing pages and businesses outside the target region.
package filter

import (
	"net/url"
	"strings"
)

// Domains of large platforms and chains whose listing pages surface in
// discovery results but never represent an independent local business.
var excludedDomains = []string{
	"accor.com", "booking.com", "expedia.com", "tripadvisor.com",
	"airbnb.com", "trivago.com", "agoda.com", "hotels.com",
	"groupon.com", "uber.com", "deliveroo.com", "justeat.com",
}

// URL path patterns that indicate a franchise page hosted on a larger
// platform's site rather than the business's own site.
var excludedPathPatterns = []string{
	"/restaurant-", "/hotel-", "/shop-", "/store-", "/location-",
	".accor.com", ".booking.", ".expedia.", ".tripadvisor.",
	"/fr/restaurant", "/fr/hotel", "/en/restaurant", "/en/hotel",
}

var realEstateKeywords = []string{
	"immobilier", "real estate", "agence immobilière",
	"homegate", "immoscout", "immoweb",
}

var largeChainKeywords = []string{
	"coop", "migros", "denner", "aldi", "lidl", "manor", "globus",
	"galaxus", "digitec", "amazon", "booking", "trivago", "expedia",
	"comparis", "ricardo", "anibis", "homegate", "immoscout", "immoweb",
	"accor", "tripadvisor", "airbnb", "hotels.com",
	"marriott", "hilton", "hyatt", "novotel", "ibis", "mercure", "sofitel",
	"mcdonald", "burger king", "kfc", "subway", "pizza hut", "domino",
	"starbucks", "nespresso", "pret a manger",
	"zara", "h&m", "mango", "bershka", "pull & bear", "stradivarius",
	"c&a", "primark", "new look", "river island",
	"ikea", "conforama", "pfister", "micasa", "möbel pfister",
	"media markt", "fnac", "saturn", "boulanger.com", "darty",
	"ubs", "credit suisse", "raiffeisen", "postfinance", "swisscom",
	"sunrise", "orange", "salt", "telecom",
	"nike", "adidas", "puma", "decathlon", "interdiscount", "interio",
	"filiale", "succursale", "branch", "subsidiary",
}

var governmentKeywords = []string{
	"ville-", "commune-", "administration", "canton",
	"ge.ch", "admin.ch", ".gov",
}

var mediaKeywords = []string{
	"rts.ch", "24heures.ch", "lematin.ch", "20min.ch", "letemps.ch",
	"tdg.ch", "blick.ch", "srf.ch", "nzz.ch",
	"rts", "24heures", "20 minutes",
}

// tldRegions maps website TLD suffixes to the region they imply. Longer
// suffixes are checked first so ".qc.ca" wins over ".ca".
var tldRegions = []struct {
	suffix string
	region string
}{
	{".qc.ca", "québec"},
	{".co.uk", "royaume-uni"},
	{".ca", "canada"},
	{".ch", "suisse"},
	{".fr", "france"},
	{".be", "belgique"},
	{".de", "allemagne"},
	{".it", "italie"},
	{".at", "autriche"},
	{".es", "espagne"},
}

// cityRegions maps well-known city and region names to the region they
// imply, used when the TLD is inconclusive (.com and similar). Listed
// in priority order: when a text names cities from several regions,
// the earliest entry decides, so the verdict is stable across calls.
var cityRegions = []struct {
	city   string
	region string
}{
	{"genève", "suisse"}, {"geneve", "suisse"}, {"lausanne", "suisse"},
	{"zurich", "suisse"}, {"zürich", "suisse"}, {"berne", "suisse"},
	{"paris", "france"}, {"lyon", "france"}, {"marseille", "france"},
	{"bordeaux", "france"}, {"toulouse", "france"},
	{"montréal", "québec"}, {"montreal", "québec"}, {"laval", "québec"},
	{"gatineau", "québec"}, {"sherbrooke", "québec"},
	{"toronto", "canada"}, {"vancouver", "canada"}, {"ottawa", "canada"},
	{"calgary", "canada"}, {"edmonton", "canada"},
	{"bruxelles", "belgique"}, {"berlin", "allemagne"}, {"munich", "allemagne"},
}

// countryAliases normalizes configured target country names.
var countryAliases = map[string]string{
	"suisse": "suisse", "switzerland": "suisse", "schweiz": "suisse",
	"france": "france",
	"canada": "canada",
	"québec": "québec", "quebec": "québec",
	"belgique": "belgique", "belgium": "belgique",
	"allemagne": "allemagne", "germany": "allemagne",
}

// Filter classifies candidates as relevant or not for a target region.
type Filter struct {
	targetRegion string
}

// New builds a filter for the configured target country or region.
func New(targetCountry string) *Filter {
	normalized := strings.ToLower(strings.TrimSpace(targetCountry))
	if alias, ok := countryAliases[normalized]; ok {
		normalized = alias
	}
	return &Filter{targetRegion: normalized}
}

// IsIrrelevant reports whether the candidate should be rejected. Matching
// is case-insensitive substring matching; the function is pure and has no
// side effects.
func (f *Filter) IsIrrelevant(name, website string) bool {
	nameLower := strings.ToLower(name)
	siteLower := strings.ToLower(website)
	fullText := nameLower + " " + siteLower

	for _, domain := range excludedDomains {
		if strings.Contains(siteLower, domain) {
			return true
		}
	}
	for _, pattern := range excludedPathPatterns {
		if strings.Contains(siteLower, pattern) {
			return true
		}
	}
	if containsAny(fullText, realEstateKeywords) {
		return true
	}
	if containsAny(fullText, largeChainKeywords) {
		return true
	}
	if containsAny(fullText, governmentKeywords) {
		return true
	}
	if containsAny(fullText, mediaKeywords) {
		return true
	}

	return f.conflictsWithTarget(fullText, siteLower)
}

// conflictsWithTarget rejects candidates whose inferred region disagrees
// with the configured target. Inference failure means accept: missing
// information is never grounds for rejection.
func (f *Filter) conflictsWithTarget(fullText, site string) bool {
	if f.targetRegion == "" {
		return false
	}
	inferred := InferRegion(site, fullText)
	if inferred == "" || inferred == f.targetRegion {
		return false
	}
	// Québec is inside Canada, so a Québec business is in scope when the
	// whole country is targeted. The reverse does not hold: a generic
	// Canadian signal is too broad when the campaign targets Québec only.
	if f.targetRegion == "canada" && inferred == "québec" {
		return false
	}
	return true
}

// InferRegion guesses the region of a business from its website TLD, then
// from city and region names in the surrounding text. Returns "" when no
// signal is found.
func InferRegion(website, text string) string {
	if host := hostOf(website); host != "" {
		for _, t := range tldRegions {
			if strings.HasSuffix(host, t.suffix) {
				return t.region
			}
		}
	}
	for _, c := range cityRegions {
		if strings.Contains(text, c.city) {
			return c.region
		}
	}
	return ""
}

func hostOf(raw string) string {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return ""
	}
	return strings.TrimPrefix(parsed.Host, "www.")
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
