// Package scoring ranks prospects on a 0-100 scale from the enrichment
// signals, with weights adapted to the service being sold.
package scoring

import (
	"strings"

	"github.com/octobees/prospect-agent/internal/entity"
)

// Score categories used for prioritization.
const (
	CategoryExcellent = "excellent"
	CategoryGood      = "bon"
	CategoryAverage   = "moyen"
	CategoryWeak      = "faible"
)

var (
	webServiceKeywords       = []string{"site web", "website", "internet", "web", "développement", "développeur", "création site"}
	marketingServiceKeywords = []string{"marketing", "communication", "publicité", "seo", "réseaux sociaux", "visibilité"}
	consultingKeywords       = []string{"conseil", "consulting", "accompagnement", "audit"}
	ecommerceKeywords        = []string{"commerce", "e-commerce", "boutique", "vente"}

	legacyCMS    = []string{"wordpress", "joomla", "drupal", "prestashop"}
	modernStacks = []string{"react", "vue", "angular", "next.js"}
)

// weights caps the contribution of each signal.
type weights struct {
	email        float64
	phone        float64
	linkedin     float64
	website      float64
	rating       float64
	reviews      float64
	companySize  float64
	industry     float64
	technologies float64
}

var defaultWeights = weights{
	email:        20,
	phone:        15,
	linkedin:     10,
	website:      10,
	rating:       10,
	reviews:      5,
	companySize:  10,
	industry:     15,
	technologies: 5,
}

// Engine computes prospect scores for one configured service offering.
type Engine struct {
	service string
	weights weights
}

// NewEngine selects the weight table matching the offered service.
func NewEngine(serviceOffered string) *Engine {
	service := strings.ToLower(strings.TrimSpace(serviceOffered))
	w := defaultWeights

	switch {
	case containsAny(service, webServiceKeywords):
		// A missing or outdated website is the whole sales pitch.
		w.website = 15
		w.technologies = 15
		w.email = 18
		w.rating = 8
	case containsAny(service, marketingServiceKeywords):
		w.rating = 20
		w.reviews = 15
		w.linkedin = 15
		w.email = 20
	case containsAny(service, consultingKeywords):
		w.linkedin = 25
		w.companySize = 20
		w.industry = 20
		w.email = 18
	case containsAny(service, ecommerceKeywords):
		w.rating = 20
		w.reviews = 15
		w.phone = 18
		w.website = 12
	}

	return &Engine{service: service, weights: w}
}

// Score computes the prospect's suitability score, clamped to [0,100].
// Each signal is evaluated independently so one malformed field never
// suppresses the rest.
func (e *Engine) Score(p *entity.Prospect) int {
	total := 0.0

	total += e.emailSignal(p)
	if p.Phone != nil && *p.Phone != "" {
		total += e.weights.phone
	}
	if p.LinkedInURL != nil && *p.LinkedInURL != "" {
		total += e.weights.linkedin
	}
	total += e.websiteSignal(p)
	total += e.ratingSignal(p)
	total += e.reviewsSignal(p)
	total += e.companySizeSignal(p)
	total += e.industrySignal(p)
	total += e.technologySignal(p)

	if total > 100 {
		total = 100
	}
	if total < 0 {
		total = 0
	}
	return int(total)
}

// Category buckets a score for prioritization.
func Category(score int) string {
	switch {
	case score >= 80:
		return CategoryExcellent
	case score >= 60:
		return CategoryGood
	case score >= 40:
		return CategoryAverage
	default:
		return CategoryWeak
	}
}

func (e *Engine) emailSignal(p *entity.Prospect) float64 {
	if p.Email == nil || *p.Email == "" {
		return 0
	}
	if p.EmailStatus != nil {
		switch *p.EmailStatus {
		case entity.EmailStatusValid:
			return e.weights.email
		case entity.EmailStatusCatchAll:
			return e.weights.email * 0.7
		}
	}
	// Present but unverified or inconclusive.
	return e.weights.email * 0.5
}

func (e *Engine) websiteSignal(p *entity.Prospect) float64 {
	site := p.WebsiteOrEmpty()
	hasSite := strings.HasPrefix(site, "http")
	webService := containsAny(e.service, webServiceKeywords)

	if !hasSite {
		if webService {
			// No website at all is the strongest opening for a web offer.
			return e.weights.website + 10
		}
		return 0
	}

	score := e.weights.website
	techs := lowered(p.Technologies)

	if webService {
		switch {
		case anyIn(techs, legacyCMS):
			score += 8
		case anyIn(techs, modernStacks):
			score += 2
		case len(techs) == 0:
			score += 5
		}
	} else if containsAny(e.service, marketingServiceKeywords) {
		switch {
		case anyIn(techs, modernStacks):
			score += 4
		case len(techs) > 0:
			score += 3
		default:
			score += 2
		}
	}
	return score
}

func (e *Engine) ratingSignal(p *entity.Prospect) float64 {
	if p.Rating == nil {
		return 0
	}
	switch rating := *p.Rating; {
	case rating >= 4.5:
		return e.weights.rating
	case rating >= 4.0:
		return e.weights.rating * 0.8
	case rating >= 3.5:
		return e.weights.rating * 0.6
	default:
		return e.weights.rating * 0.4
	}
}

func (e *Engine) reviewsSignal(p *entity.Prospect) float64 {
	if p.Reviews == nil {
		return 0
	}
	switch count := *p.Reviews; {
	case count >= 50:
		return e.weights.reviews
	case count >= 20:
		return e.weights.reviews * 0.8
	case count >= 10:
		return e.weights.reviews * 0.6
	default:
		return e.weights.reviews * 0.4
	}
}

func (e *Engine) companySizeSignal(p *entity.Prospect) float64 {
	if p.CompanySize == nil {
		return 0
	}
	size := strings.ToLower(*p.CompanySize)
	switch {
	case containsAny(size, []string{"11-50", "51-200", "201-500"}):
		return e.weights.companySize
	case containsAny(size, []string{"1-10", "2-10"}):
		return e.weights.companySize * 0.8
	case containsAny(size, []string{"501-1000", "1001-5000"}):
		return e.weights.companySize * 0.7
	default:
		return e.weights.companySize * 0.6
	}
}

func (e *Engine) industrySignal(p *entity.Prospect) float64 {
	if p.Industry == nil || *p.Industry == "" {
		return 0
	}
	industry := strings.ToLower(*p.Industry)
	switch {
	case containsAny(e.service, webServiceKeywords):
		if containsAny(industry, []string{"commerce", "retail", "restaurant", "hotel", "service"}) {
			return e.weights.industry
		}
		return e.weights.industry * 0.7
	case containsAny(e.service, marketingServiceKeywords):
		if containsAny(industry, []string{"commerce", "retail", "restaurant", "service", "professional"}) {
			return e.weights.industry
		}
		return e.weights.industry * 0.8
	default:
		return e.weights.industry * 0.9
	}
}

func (e *Engine) technologySignal(p *entity.Prospect) float64 {
	techs := lowered(p.Technologies)
	if len(techs) == 0 {
		return 0
	}
	if containsAny(e.service, webServiceKeywords) {
		switch {
		case anyIn(techs, legacyCMS):
			// Legacy CMS means a concrete modernization pitch.
			return e.weights.technologies
		case anyIn(techs, []string{"react", "vue", "angular"}):
			return e.weights.technologies * 0.6
		default:
			return e.weights.technologies * 0.8
		}
	}
	return e.weights.technologies * 0.9
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func anyIn(values, wanted []string) bool {
	for _, v := range values {
		for _, w := range wanted {
			if v == w {
				return true
			}
		}
	}
	return false
}

func lowered(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
